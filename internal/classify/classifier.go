// Package classify assigns each incident image a category from a closed
// vocabulary using a zero-shot text/image similarity model.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"math"
	"os"
	"time"

	// Decoders for the formats claim PDFs embed
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pveilleux/claimsift/internal/cache"
	"github.com/pveilleux/claimsift/internal/model"
)

// Classifier scores incident images against the fixed category prompt set.
// Stored images are immutable (content-hashed filenames), so results are
// cached by storage path across invocations.
type Classifier struct {
	scorer        Scorer
	cache         cache.Cache // nil disables caching
	cacheTTL      time.Duration
	minConfidence float64
	prompts       []string
}

// NewClassifier creates a new classifier
func NewClassifier(scorer Scorer, resultCache cache.Cache, cfg model.ClassifierConfig, cacheTTL time.Duration) *Classifier {
	return &Classifier{
		scorer:        scorer,
		cache:         resultCache,
		cacheTTL:      cacheTTL,
		minConfidence: cfg.MinConfidence,
		prompts:       CategoryPrompts(),
	}
}

// CategoryPrompts returns the fixed, ordered prompt set. Prompt i scores
// category i of model.Categories().
func CategoryPrompts() []string {
	categories := model.Categories()
	prompts := make([]string, len(categories))
	for i, c := range categories {
		prompts[i] = fmt.Sprintf("a photo of a %s", c)
	}
	return prompts
}

// Classify assigns ref's image a category with a confidence score. The
// three category probabilities come from a single softmax over the raw
// similarities and sum to 1; the arg-max category is reported unless its
// probability falls below the configured threshold, in which case the
// category is indeterminate.
func (c *Classifier) Classify(ctx context.Context, ref model.ImageRef) (model.Classification, error) {
	if cached, ok := c.cachedResult(ref); ok {
		return cached, nil
	}

	data, err := os.ReadFile(ref.StoragePath)
	if err != nil {
		return model.Classification{}, fmt.Errorf("%w: %s: %v", model.ErrImageUnreadable, ref.StoragePath, err)
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return model.Classification{}, fmt.Errorf("%w: %s: decode: %v", model.ErrImageUnreadable, ref.StoragePath, err)
	}

	raw, err := c.scorer.Score(ctx, data, c.prompts)
	if err != nil {
		return model.Classification{}, fmt.Errorf("%w: score %s: %v", model.ErrOracleUnavailable, ref.StoragePath, err)
	}

	probs := softmax(raw)
	best := argmax(probs)

	result := model.Classification{
		Image:      ref,
		Category:   model.Categories()[best],
		Confidence: probs[best],
		Scores:     probs,
	}
	if result.Confidence < c.minConfidence {
		result.Category = model.CategoryIndeterminate
	}

	c.storeResult(ref, result)
	return result, nil
}

func (c *Classifier) cachedResult(ref model.ImageRef) (model.Classification, bool) {
	if c.cache == nil {
		return model.Classification{}, false
	}

	data, found := c.cache.Get(cache.Key(ref.StoragePath))
	if !found {
		return model.Classification{}, false
	}

	var result model.Classification
	if err := json.Unmarshal(data, &result); err != nil {
		return model.Classification{}, false
	}
	result.Image = ref
	return result, true
}

func (c *Classifier) storeResult(ref model.ImageRef, result model.Classification) {
	if c.cache == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	_ = c.cache.Set(cache.Key(ref.StoragePath), data, c.cacheTTL)
}

// softmax converts raw similarities to a probability distribution.
// Shifted by the max score for numerical stability.
func softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}

	probs := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		probs[i] = math.Exp(s - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
