// Package verdict reduces the oracle's free-text answer to a structured
// verdict. Parsing is a total function: any input string, including empty,
// yields a result, and the full trimmed text is always retained as the
// justification so a reviewer sees the complete oracle explanation.
package verdict

import (
	"strings"

	"github.com/pveilleux/claimsift/internal/model"
)

// Parse classifies the first whitespace-delimited token of the trimmed
// response, case-insensitively and with trailing punctuation stripped, as
// Yes or No. Anything else maps to Unknown.
func Parse(raw string) model.AdjudicationResult {
	trimmed := strings.TrimSpace(raw)

	return model.AdjudicationResult{
		Verdict:       classify(trimmed),
		Justification: trimmed,
	}
}

func classify(trimmed string) model.Verdict {
	if trimmed == "" {
		return model.VerdictUnknown
	}

	fields := strings.Fields(trimmed)
	token := strings.TrimRight(fields[0], ".,;:!?*\"')")

	switch strings.ToLower(token) {
	case "yes":
		return model.VerdictYes
	case "no":
		return model.VerdictNo
	default:
		return model.VerdictUnknown
	}
}
