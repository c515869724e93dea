package model

// Verdict is the reduced decision extracted from the oracle's free text
type Verdict string

const (
	VerdictYes     Verdict = "yes"
	VerdictNo      Verdict = "no"
	VerdictUnknown Verdict = "unknown" // Response did not begin with a recognizable Yes/No token
)

// QuestionVariant selects which question the oracle is asked
type QuestionVariant string

const (
	// VariantPlausibility asks whether the reported incident is plausible
	// given the photos, comparing the stated aircraft category against the
	// detected one.
	VariantPlausibility QuestionVariant = "plausibility"

	// VariantCoverage asks whether the stated cause of loss is covered by
	// the contract terms.
	VariantCoverage QuestionVariant = "coverage"
)

// AdjudicationResult is the structured outcome of one oracle consultation
type AdjudicationResult struct {
	Verdict       Verdict `json:"verdict"`
	Justification string  `json:"justification"` // Full trimmed oracle text, kept verbatim for the reviewer
	LatencyMs     int64   `json:"latency_ms"`
}
