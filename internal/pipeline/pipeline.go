package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pveilleux/claimsift/internal/cache"
	"github.com/pveilleux/claimsift/internal/classify"
	"github.com/pveilleux/claimsift/internal/extract"
	"github.com/pveilleux/claimsift/internal/llm"
	"github.com/pveilleux/claimsift/internal/model"
	"github.com/pveilleux/claimsift/internal/pdfdoc"
	"github.com/pveilleux/claimsift/internal/prompt"
	"github.com/pveilleux/claimsift/internal/verdict"
)

// Pipeline orchestrates one claim review: extract, classify, build prompt,
// invoke the oracle, parse the verdict. Stages run sequentially for one
// document at a time; collaborators are constructor-injected so tests can
// substitute fakes.
type Pipeline struct {
	extractor   *extract.DocumentExtractor
	classifier  *classify.Classifier
	adjudicator *llm.Adjudicator
	renderer    *Renderer
	config      *model.Config
}

// NewPipeline wires the production collaborators from configuration
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	store := cache.NewImageStore(cfg.Store.ImageDir)
	extractor := extract.NewDocumentExtractor(pdfdoc.Opener, store, cfg.Sections)

	var resultCache cache.Cache
	if !cfg.Store.NoCache {
		resultCache = cache.NewLayeredCache(cfg.Store.CacheTTL, cfg.Store.CacheDir, cfg.Store.CacheTTL)
	}
	scorer := classify.NewCLIPScorer(cfg.Classifier)
	classifier := classify.NewClassifier(scorer, resultCache, cfg.Classifier, cfg.Store.CacheTTL)

	adjudicator, err := llm.NewAdjudicator(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("initialize oracle: %w", err)
	}

	return New(extractor, classifier, adjudicator, cfg), nil
}

// New assembles a pipeline from explicit collaborators
func New(extractor *extract.DocumentExtractor, classifier *classify.Classifier, adjudicator *llm.Adjudicator, cfg *model.Config) *Pipeline {
	return &Pipeline{
		extractor:   extractor,
		classifier:  classifier,
		adjudicator: adjudicator,
		renderer:    NewRenderer(cfg.Output.IncludeFooter),
		config:      cfg,
	}
}

// ReviewOptions selects the question variant and optional narrative override
type ReviewOptions struct {
	Variant model.QuestionVariant

	// NarrativeOverride, when non-empty, replaces the extracted FNOL text.
	// The surrounding UI lets the reviewer correct the narrative; the
	// pipeline treats it as just an alternate input string.
	NarrativeOverride string
}

// ReviewDocument runs the full review sequence for one claim PDF
func (p *Pipeline) ReviewDocument(ctx context.Context, path string, opts ReviewOptions) (*model.Report, error) {
	// 1. Extract typed fields
	doc, err := p.extractor.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	narrative := doc.IncidentText
	if opts.NarrativeOverride != "" {
		narrative = opts.NarrativeOverride
	}

	variant := opts.Variant
	if variant == "" {
		variant = model.VariantPlausibility
	}

	// 2. Classify every readable incident image. An unreadable image only
	// loses that image; a scorer failure aborts the review.
	var classifications []model.Classification
	var warnings []string
	for _, ref := range doc.Images {
		c, err := p.classifier.Classify(ctx, ref)
		if err != nil {
			if errors.Is(err, model.ErrImageUnreadable) {
				warnings = append(warnings, err.Error())
				continue
			}
			return nil, fmt.Errorf("classify: %w", err)
		}
		classifications = append(classifications, c)
	}
	primary := primaryClassification(classifications)

	// 3. Build the decision prompt
	imagePaths := make([]string, 0, len(doc.Images))
	for _, ref := range doc.Images {
		imagePaths = append(imagePaths, ref.StoragePath)
	}
	promptText := prompt.Build(prompt.BuildInput{
		NarrativeText:  narrative,
		ContractText:   doc.ContractText,
		ImagePaths:     imagePaths,
		Classification: primary,
		Variant:        variant,
	})

	// 4. Consult the oracle
	resp, latencyMs, err := p.adjudicator.Invoke(ctx, llm.GenerateRequest{
		Prompt:     promptText,
		ImagePaths: imagePaths,
	})
	if err != nil {
		return nil, fmt.Errorf("adjudicate: %w", err)
	}

	// 5. Parse the verdict
	result := verdict.Parse(resp.Text)
	result.LatencyMs = latencyMs

	return &model.Report{
		Document:          *doc,
		ReviewedAt:        time.Now().UTC(),
		Variant:           variant,
		NarrativeOverride: opts.NarrativeOverride != "",
		Classifications:   classifications,
		Primary:           primary,
		Prompt:            promptText,
		Provider:          p.adjudicator.ProviderName(),
		Model:             resp.Model,
		Result:            result,
		Warnings:          warnings,
	}, nil
}

// primaryClassification picks the highest-confidence classification to
// feed into the prompt. Ties keep the earlier image.
func primaryClassification(cs []model.Classification) *model.Classification {
	if len(cs) == 0 {
		return nil
	}
	best := 0
	for i, c := range cs {
		if c.Confidence > cs[best].Confidence {
			best = i
		}
	}
	return &cs[best]
}
