package model

// Category is the closed vocabulary for incident image classification
type Category string

const (
	CategoryHelicopter Category = "helicopter"
	CategoryAirplane   Category = "airplane"
	CategoryGlider     Category = "glider"

	// CategoryIndeterminate is reported when the best score falls below
	// the configured confidence threshold. It is not part of the scored
	// vocabulary.
	CategoryIndeterminate Category = "indeterminate"
)

// Categories returns the scored vocabulary in its fixed order.
// The order must match the prompt list given to the scorer: score i
// belongs to category i.
func Categories() []Category {
	return []Category{CategoryHelicopter, CategoryAirplane, CategoryGlider}
}

// Classification is the zero-shot result for one incident image
type Classification struct {
	Image      ImageRef  `json:"image"`
	Category   Category  `json:"category"`
	Confidence float64   `json:"confidence"`       // Softmax probability of the arg-max category, in [0,1]
	Scores     []float64 `json:"scores,omitempty"` // Full distribution over Categories(), sums to 1
}
