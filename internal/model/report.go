package model

import "time"

// Report is the complete outcome of reviewing one claim document.
// Everything the surrounding display layer needs is carried here as plain
// structured values: extracted text, image paths, classification, verdict,
// justification and latency.
type Report struct {
	Document   ClaimDocument `json:"document"`
	ReviewedAt time.Time     `json:"reviewed_at"`

	Variant           QuestionVariant `json:"variant"`
	NarrativeOverride bool            `json:"narrative_override"` // Whether the reviewer replaced the extracted FNOL text

	Classifications []Classification `json:"classifications,omitempty"` // One per readable incident image
	Primary         *Classification  `json:"primary,omitempty"`         // Highest-confidence classification, fed into the prompt

	Prompt   string             `json:"prompt"`   // Exact instruction block sent to the oracle
	Provider string             `json:"provider"` // Oracle provider name
	Model    string             `json:"model"`    // Oracle model name
	Result   AdjudicationResult `json:"result"`

	Warnings []string `json:"warnings,omitempty"` // Non-fatal issues (e.g. an unreadable image)
}
