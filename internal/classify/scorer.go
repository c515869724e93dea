package classify

import "context"

// Scorer is the zero-shot similarity port: raw similarity of one image
// against an ordered list of text prompts, via a shared text/image
// embedding model. Scores come back unnormalized; the classifier owns the
// softmax.
type Scorer interface {
	// Name returns the scorer name
	Name() string

	// Score returns one raw similarity per prompt, in prompt order
	Score(ctx context.Context, image []byte, prompts []string) ([]float64, error)

	// IsAvailable checks if the scorer backend is reachable
	IsAvailable(ctx context.Context) bool
}
