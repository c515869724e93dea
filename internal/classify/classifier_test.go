package classify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pveilleux/claimsift/internal/cache"
	"github.com/pveilleux/claimsift/internal/model"
)

// fakeScorer implements Scorer with canned similarities
type fakeScorer struct {
	scores []float64
	err    error
	calls  int
}

func (f *fakeScorer) Name() string { return "fake" }

func (f *fakeScorer) Score(ctx context.Context, image []byte, prompts []string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.scores, nil
}

func (f *fakeScorer) IsAvailable(ctx context.Context) bool { return true }

// pngFile writes a minimal valid PNG and returns its path
func pngFile(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	path := filepath.Join(t.TempDir(), "incident.png")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	return path
}

func testRef(path string) model.ImageRef {
	return model.ImageRef{DocumentID: "doc", SequenceIndex: 0, StoragePath: path}
}

func newTestClassifier(scorer Scorer, resultCache cache.Cache, minConfidence float64) *Classifier {
	cfg := model.ClassifierConfig{MinConfidence: minConfidence}
	return NewClassifier(scorer, resultCache, cfg, time.Hour)
}

func TestClassify_ArgmaxAndDistribution(t *testing.T) {
	scorer := &fakeScorer{scores: []float64{1.0, 3.0, 2.0}}
	classifier := newTestClassifier(scorer, nil, 0.1)

	result, err := classifier.Classify(context.Background(), testRef(pngFile(t)))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	// Index 1 of the fixed category order is airplane
	if result.Category != model.CategoryAirplane {
		t.Errorf("Category = %s, want airplane", result.Category)
	}

	if result.Confidence < 0 || result.Confidence > 1 {
		t.Errorf("Confidence %f outside [0,1]", result.Confidence)
	}

	var sum float64
	for _, p := range result.Scores {
		if p < 0 || p > 1 {
			t.Errorf("probability %f outside [0,1]", p)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("probabilities sum to %f, want 1", sum)
	}

	if result.Confidence != result.Scores[1] {
		t.Errorf("Confidence %f != arg-max probability %f", result.Confidence, result.Scores[1])
	}
}

func TestClassify_AlwaysOneOfVocabulary(t *testing.T) {
	tests := []struct {
		scores []float64
		want   model.Category
	}{
		{[]float64{5.0, 1.0, 1.0}, model.CategoryHelicopter},
		{[]float64{1.0, 5.0, 1.0}, model.CategoryAirplane},
		{[]float64{1.0, 1.0, 5.0}, model.CategoryGlider},
	}

	for _, tt := range tests {
		scorer := &fakeScorer{scores: tt.scores}
		classifier := newTestClassifier(scorer, nil, 0.1)

		result, err := classifier.Classify(context.Background(), testRef(pngFile(t)))
		if err != nil {
			t.Fatalf("Classify failed: %v", err)
		}
		if result.Category != tt.want {
			t.Errorf("scores %v: Category = %s, want %s", tt.scores, result.Category, tt.want)
		}
	}
}

func TestClassify_LowConfidenceIndeterminate(t *testing.T) {
	// Equal similarities: each probability is 1/3, below the 0.5 threshold
	scorer := &fakeScorer{scores: []float64{1.0, 1.0, 1.0}}
	classifier := newTestClassifier(scorer, nil, 0.5)

	result, err := classifier.Classify(context.Background(), testRef(pngFile(t)))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if result.Category != model.CategoryIndeterminate {
		t.Errorf("Category = %s, want indeterminate", result.Category)
	}
	if math.Abs(result.Confidence-1.0/3.0) > 1e-9 {
		t.Errorf("Confidence = %f, want 1/3", result.Confidence)
	}
}

func TestClassify_MissingImage(t *testing.T) {
	scorer := &fakeScorer{scores: []float64{1, 2, 3}}
	classifier := newTestClassifier(scorer, nil, 0.1)

	_, err := classifier.Classify(context.Background(), testRef("does/not/exist.png"))
	if err == nil {
		t.Fatal("expected error for missing image")
	}
	if !errors.Is(err, model.ErrImageUnreadable) {
		t.Errorf("expected ErrImageUnreadable, got %v", err)
	}
	if scorer.calls != 0 {
		t.Error("scorer should not be called for an unreadable image")
	}
}

func TestClassify_UndecodableImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.png")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	classifier := newTestClassifier(&fakeScorer{scores: []float64{1, 2, 3}}, nil, 0.1)

	_, err := classifier.Classify(context.Background(), testRef(path))
	if !errors.Is(err, model.ErrImageUnreadable) {
		t.Errorf("expected ErrImageUnreadable, got %v", err)
	}
}

func TestClassify_ScorerFailure(t *testing.T) {
	scorer := &fakeScorer{err: fmt.Errorf("connection refused")}
	classifier := newTestClassifier(scorer, nil, 0.1)

	_, err := classifier.Classify(context.Background(), testRef(pngFile(t)))
	if !errors.Is(err, model.ErrOracleUnavailable) {
		t.Errorf("expected ErrOracleUnavailable, got %v", err)
	}
}

func TestClassify_CachedResult(t *testing.T) {
	scorer := &fakeScorer{scores: []float64{1.0, 3.0, 2.0}}
	resultCache := cache.NewMemoryCache(time.Hour, time.Hour)
	classifier := newTestClassifier(scorer, resultCache, 0.1)

	ref := testRef(pngFile(t))

	first, err := classifier.Classify(context.Background(), ref)
	if err != nil {
		t.Fatalf("first Classify failed: %v", err)
	}
	second, err := classifier.Classify(context.Background(), ref)
	if err != nil {
		t.Fatalf("second Classify failed: %v", err)
	}

	if scorer.calls != 1 {
		t.Errorf("scorer called %d times, want 1 (second hit should come from cache)", scorer.calls)
	}
	if first.Category != second.Category || first.Confidence != second.Confidence {
		t.Error("cached result differs from original")
	}
}

func TestCategoryPrompts_Order(t *testing.T) {
	prompts := CategoryPrompts()
	want := []string{
		"a photo of a helicopter",
		"a photo of a airplane",
		"a photo of a glider",
	}
	if len(prompts) != len(want) {
		t.Fatalf("got %d prompts, want %d", len(prompts), len(want))
	}
	for i := range want {
		if prompts[i] != want[i] {
			t.Errorf("prompt %d = %q, want %q", i, prompts[i], want[i])
		}
	}
}
