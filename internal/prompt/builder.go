// Package prompt renders the decision prompt sent to the adjudication
// oracle. Build is a pure function: identical inputs produce a
// byte-identical prompt, which is what the golden tests pin down.
package prompt

import (
	"fmt"
	"strings"

	"github.com/pveilleux/claimsift/internal/model"
)

const (
	roleDeclaration = "You are an assistant specialized in assessing insurance claims based on textual and visual evidence."

	taskObjective = "Your task is to verify the reported incident by comparing the incident details (FNOL text) and the insurance contract with the incident images provided."

	guidelines = `Guidelines:
- Look for inconsistencies or missing information in relation to the incident's description.
- Base your assessment only on the evidence given below.
- Begin your answer with a single word, Yes or No, then explain your reasoning.`

	noImagesPlaceholder = "No images available."
)

// BuildInput carries everything the prompt depends on
type BuildInput struct {
	NarrativeText  string
	ContractText   string
	ImagePaths     []string
	Classification *model.Classification // nil when no incident image could be classified
	Variant        model.QuestionVariant
}

// Build deterministically assembles the instruction block in a fixed
// section order: role, objective, guidelines, narrative, contract,
// detected category, image listing, question. The full narrative and
// contract text are inlined verbatim, no truncation.
func Build(in BuildInput) string {
	var b strings.Builder

	b.WriteString(roleDeclaration)
	b.WriteString("\n")
	b.WriteString(taskObjective)
	b.WriteString("\n\n")
	b.WriteString(guidelines)
	b.WriteString("\n\n")

	b.WriteString("Incident Text:\n")
	b.WriteString(in.NarrativeText)
	b.WriteString("\n\n")

	b.WriteString("Contract Text:\n")
	b.WriteString(in.ContractText)
	b.WriteString("\n\n")

	b.WriteString("Image Analysis:\n")
	b.WriteString(classificationLine(in.Classification))
	b.WriteString("\n\n")

	b.WriteString("Images:\n")
	if len(in.ImagePaths) == 0 {
		b.WriteString(noImagesPlaceholder)
	} else {
		b.WriteString(strings.Join(in.ImagePaths, "\n"))
	}
	b.WriteString("\n\n")

	b.WriteString("Question:\n")
	b.WriteString(question(in.Variant, in.Classification))
	b.WriteString("\n")

	return b.String()
}

// classificationLine renders the detected-category block. Classification
// metadata goes into every variant, not just the plausibility check.
func classificationLine(c *model.Classification) string {
	if c == nil {
		return "Predicted category: unavailable (no readable incident image)."
	}
	return fmt.Sprintf("Predicted category: %s (confidence %.2f).", c.Category, c.Confidence)
}

func question(variant model.QuestionVariant, c *model.Classification) string {
	switch variant {
	case model.VariantCoverage:
		return "Does the stated cause of loss align with the terms of the insurance contract? Is the incident covered?"
	default:
		category := "unavailable"
		if c != nil {
			category = string(c.Category)
		}
		return fmt.Sprintf("Can you assess the plausibility of the reported incident based on the provided information and images? In particular, does the aircraft category stated in the incident text match the detected category %q?", category)
	}
}
