package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/pveilleux/claimsift/internal/cache"
	"github.com/pveilleux/claimsift/internal/classify"
	"github.com/pveilleux/claimsift/internal/extract"
	"github.com/pveilleux/claimsift/internal/llm"
	"github.com/pveilleux/claimsift/internal/model"
)

// fakeSource is an in-memory three-section claim document
type fakeSource struct {
	texts  []string
	images [][]extract.SectionImage
}

func (f *fakeSource) NumSections() int { return len(f.texts) }

func (f *fakeSource) SectionText(i int) (string, error) {
	if i < 0 || i >= len(f.texts) {
		return "", fmt.Errorf("no section %d", i)
	}
	return f.texts[i], nil
}

func (f *fakeSource) SectionImages(i int) ([]extract.SectionImage, error) {
	if i < 0 || i >= len(f.images) {
		return nil, nil
	}
	return f.images[i], nil
}

func (f *fakeSource) Close() error { return nil }

// fakeScorer returns fixed raw similarities for every image
type fakeScorer struct {
	scores []float64
	err    error
}

func (f *fakeScorer) Name() string { return "fake-clip" }

func (f *fakeScorer) IsAvailable(ctx context.Context) bool { return true }

func (f *fakeScorer) Score(ctx context.Context, image []byte, prompts []string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.scores, nil
}

// fakeOracle records the request it receives and returns a scripted answer
type fakeOracle struct {
	text    string
	err     error
	lastReq llm.GenerateRequest
}

func (f *fakeOracle) Name() string { return "fake-oracle" }

func (f *fakeOracle) IsAvailable(ctx context.Context) bool { return true }

func (f *fakeOracle) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerateResponse{Text: f.text, Model: "fake-model"}, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 128, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newTestPipeline(t *testing.T, source *fakeSource, scorer classify.Scorer, oracle llm.Provider) *Pipeline {
	t.Helper()

	cfg := model.DefaultConfig()
	cfg.Store.ImageDir = t.TempDir()
	cfg.Store.NoCache = true

	opener := func(path string) (extract.SectionSource, error) {
		return source, nil
	}
	extractor := extract.NewDocumentExtractor(opener, cache.NewImageStore(cfg.Store.ImageDir), cfg.Sections)
	classifier := classify.NewClassifier(scorer, nil, cfg.Classifier, 0)
	adjudicator := llm.NewAdjudicatorWithProvider(oracle, llm.Config{Timeout: 5, RatePerSecond: 100})

	return New(extractor, classifier, adjudicator, cfg)
}

func TestPipeline_ReviewDocument(t *testing.T) {
	source := &fakeSource{
		texts: []string{
			"The insured helicopter suffered a hard landing near Grenoble.",
			"",
			"Coverage applies to rotary-wing aircraft only.",
		},
		images: [][]extract.SectionImage{
			nil,
			{{Data: pngBytes(t), FileType: "png"}},
			nil,
		},
	}
	scorer := &fakeScorer{scores: []float64{1, 3, 2}} // airplane wins
	oracle := &fakeOracle{text: "No - the photographed aircraft is a fixed-wing airplane, not a helicopter."}

	p := newTestPipeline(t, source, scorer, oracle)

	report, err := p.ReviewDocument(context.Background(), "/claims/claim-071.pdf", ReviewOptions{})
	if err != nil {
		t.Fatalf("ReviewDocument failed: %v", err)
	}

	if report.Result.Verdict != model.VerdictNo {
		t.Errorf("Expected verdict no, got %s", report.Result.Verdict)
	}
	if report.Document.ID != "claim-071" {
		t.Errorf("Unexpected document ID: %s", report.Document.ID)
	}
	if len(report.Classifications) != 1 {
		t.Fatalf("Expected 1 classification, got %d", len(report.Classifications))
	}
	if report.Classifications[0].Category != model.CategoryAirplane {
		t.Errorf("Expected airplane, got %s", report.Classifications[0].Category)
	}
	if report.Primary == nil || report.Primary.Category != model.CategoryAirplane {
		t.Error("Expected primary classification to be the airplane result")
	}
	if report.Variant != model.VariantPlausibility {
		t.Errorf("Expected default plausibility variant, got %s", report.Variant)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", report.Warnings)
	}

	// The oracle must have seen the narrative, the contract, the predicted
	// category and the stored image path
	if !strings.Contains(oracle.lastReq.Prompt, "hard landing near Grenoble") {
		t.Error("Expected prompt to contain the incident narrative")
	}
	if !strings.Contains(oracle.lastReq.Prompt, "rotary-wing aircraft only") {
		t.Error("Expected prompt to contain the contract text")
	}
	if !strings.Contains(oracle.lastReq.Prompt, "Predicted category: airplane") {
		t.Error("Expected prompt to carry the classification")
	}
	if len(oracle.lastReq.ImagePaths) != 1 {
		t.Fatalf("Expected 1 image attached to the oracle call, got %d", len(oracle.lastReq.ImagePaths))
	}
	if oracle.lastReq.ImagePaths[0] != report.Document.Images[0].StoragePath {
		t.Error("Expected the stored image path to be attached")
	}
}

func TestPipeline_ReviewDocument_NarrativeOverride(t *testing.T) {
	source := &fakeSource{
		texts:  []string{"original narrative", "", "contract"},
		images: [][]extract.SectionImage{nil, nil, nil},
	}
	oracle := &fakeOracle{text: "Yes."}

	p := newTestPipeline(t, source, &fakeScorer{scores: []float64{1, 0, 0}}, oracle)

	report, err := p.ReviewDocument(context.Background(), "/claims/claim.pdf", ReviewOptions{
		Variant:           model.VariantCoverage,
		NarrativeOverride: "corrected narrative from the reviewer",
	})
	if err != nil {
		t.Fatalf("ReviewDocument failed: %v", err)
	}

	if !report.NarrativeOverride {
		t.Error("Expected NarrativeOverride flag to be set")
	}
	if report.Variant != model.VariantCoverage {
		t.Errorf("Expected coverage variant, got %s", report.Variant)
	}
	if !strings.Contains(oracle.lastReq.Prompt, "corrected narrative from the reviewer") {
		t.Error("Expected prompt to use the override narrative")
	}
	if strings.Contains(oracle.lastReq.Prompt, "original narrative") {
		t.Error("Expected extracted narrative to be replaced")
	}
}

func TestPipeline_ReviewDocument_UnreadableImageIsWarning(t *testing.T) {
	source := &fakeSource{
		texts: []string{"narrative", "", "contract"},
		images: [][]extract.SectionImage{
			nil,
			{
				{Data: []byte("not an image"), FileType: "png"},
				{Data: pngBytes(t), FileType: "png"},
			},
			nil,
		},
	}
	oracle := &fakeOracle{text: "Unknown"}

	p := newTestPipeline(t, source, &fakeScorer{scores: []float64{3, 1, 1}}, oracle)

	report, err := p.ReviewDocument(context.Background(), "/claims/claim.pdf", ReviewOptions{})
	if err != nil {
		t.Fatalf("ReviewDocument failed: %v", err)
	}

	if len(report.Warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(report.Warnings))
	}
	if len(report.Classifications) != 1 {
		t.Errorf("Expected the readable image to still be classified, got %d", len(report.Classifications))
	}
	if report.Result.Verdict != model.VerdictUnknown {
		t.Errorf("Expected verdict unknown, got %s", report.Result.Verdict)
	}
}

func TestPipeline_ReviewDocument_ScorerFailureAborts(t *testing.T) {
	source := &fakeSource{
		texts:  []string{"narrative", "", "contract"},
		images: [][]extract.SectionImage{nil, {{Data: pngBytes(t), FileType: "png"}}, nil},
	}

	p := newTestPipeline(t, source, &fakeScorer{err: errors.New("scorer down")}, &fakeOracle{text: "Yes."})

	_, err := p.ReviewDocument(context.Background(), "/claims/claim.pdf", ReviewOptions{})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !errors.Is(err, model.ErrOracleUnavailable) {
		t.Errorf("Expected ErrOracleUnavailable, got %v", err)
	}
}

func TestPipeline_ReviewDocument_OracleFailure(t *testing.T) {
	source := &fakeSource{
		texts:  []string{"narrative", "", "contract"},
		images: [][]extract.SectionImage{nil, nil, nil},
	}
	oracle := &fakeOracle{err: fmt.Errorf("API error (500): overloaded")}

	p := newTestPipeline(t, source, &fakeScorer{scores: []float64{1, 0, 0}}, oracle)

	_, err := p.ReviewDocument(context.Background(), "/claims/claim.pdf", ReviewOptions{})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !errors.Is(err, model.ErrOracleUnavailable) {
		t.Errorf("Expected ErrOracleUnavailable, got %v", err)
	}
}

func TestPrimaryClassification(t *testing.T) {
	if got := primaryClassification(nil); got != nil {
		t.Errorf("Expected nil for no classifications, got %v", got)
	}

	cs := []model.Classification{
		{Category: model.CategoryHelicopter, Confidence: 0.4},
		{Category: model.CategoryGlider, Confidence: 0.8},
		{Category: model.CategoryAirplane, Confidence: 0.8},
	}
	got := primaryClassification(cs)
	if got == nil || got.Category != model.CategoryGlider {
		t.Errorf("Expected highest-confidence glider (earlier tie winner), got %v", got)
	}
}
