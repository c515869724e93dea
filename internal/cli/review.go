package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pveilleux/claimsift/internal/model"
	"github.com/pveilleux/claimsift/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON       string
	outMD         string
	reviewTimeout time.Duration
	question      string
	narrativeFile string
	imageDir      string
	noCache       bool
	noFooter      bool
	clipURL       string
	minConfidence float64
	llmProvider   string
	llmModel      string
	llmBaseURL    string
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review <claim.pdf>",
	Short: "Review a single claim document and generate a verdict report",
	Long: `Review runs the full adjudication pipeline on one claim PDF:
- Extract the FNOL narrative, incident photos and contract terms
- Classify each photo against the aircraft vocabulary (zero-shot)
- Assemble the decision prompt for the selected question
- Consult the generative-model oracle
- Reduce the answer to a Yes/No/Unknown verdict with full justification

Example:
  claimsift review claims/fnol_ANC23LA011.pdf
  claimsift review claim.pdf --question coverage --json report.json
  claimsift review claim.pdf --narrative-file corrected_fnol.txt
  claimsift review claim.pdf --llm-provider openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	// Output flags
	reviewCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	reviewCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	reviewCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Pipeline flags
	reviewCmd.Flags().DurationVar(&reviewTimeout, "timeout", 5*time.Minute, "overall review timeout")
	reviewCmd.Flags().StringVar(&question, "question", "plausibility", "question variant (plausibility, coverage)")
	reviewCmd.Flags().StringVar(&narrativeFile, "narrative-file", "", "replace the extracted FNOL text with this file's contents")
	reviewCmd.Flags().StringVar(&imageDir, "image-dir", "images", "directory for extracted incident images")
	reviewCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the classification cache (force fresh scoring)")

	// Classifier flags
	reviewCmd.Flags().StringVar(&clipURL, "clip-url", "", "CLIP scorer endpoint (default: http://localhost:8765)")
	reviewCmd.Flags().Float64Var(&minConfidence, "min-confidence", 0.5, "confidence below which the category is indeterminate")

	// Oracle flags
	reviewCmd.Flags().StringVar(&llmProvider, "llm-provider", "ollama", "oracle provider (ollama, openai, anthropic)")
	reviewCmd.Flags().StringVar(&llmModel, "llm-model", "llava-phi3", "oracle model name")
	reviewCmd.Flags().StringVar(&llmBaseURL, "llm-url", "", "oracle base URL (e.g. a remote Ollama instance)")
}

func runReview(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), reviewTimeout)
	defer cancel()

	cfg, opts, err := buildReviewConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Reviewing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Question: %s\n", opts.Variant)
		fmt.Fprintf(os.Stderr, "Oracle: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	report, err := p.ReviewDocument(ctx, path, opts)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d incident images\n", len(report.Document.Images))
		if report.Primary != nil {
			fmt.Fprintf(os.Stderr, "✓ Detected category: %s (%.2f)\n", report.Primary.Category, report.Primary.Confidence)
		}
		fmt.Fprintf(os.Stderr, "✓ Oracle answered in %d ms\n", report.Result.LatencyMs)
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// buildReviewConfig assembles configuration and review options from flags
// and environment, shared by the review and batch commands
func buildReviewConfig() (*model.Config, pipeline.ReviewOptions, error) {
	cfg := model.DefaultConfig()
	cfg.Store.ImageDir = imageDir
	cfg.Store.NoCache = noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter
	cfg.Classifier.MinConfidence = minConfidence
	if clipURL != "" {
		cfg.Classifier.BaseURL = clipURL
	}

	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel
	if llmBaseURL != "" {
		cfg.LLM.BaseURL = llmBaseURL
	}

	// Get API keys from environment
	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, pipeline.ReviewOptions{}, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, pipeline.ReviewOptions{}, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && llmBaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	variant, err := parseVariant(question)
	if err != nil {
		return nil, pipeline.ReviewOptions{}, err
	}

	opts := pipeline.ReviewOptions{Variant: variant}
	if narrativeFile != "" {
		data, err := os.ReadFile(narrativeFile)
		if err != nil {
			return nil, pipeline.ReviewOptions{}, fmt.Errorf("read narrative file: %w", err)
		}
		opts.NarrativeOverride = string(data)
	}

	return cfg, opts, nil
}

func parseVariant(s string) (model.QuestionVariant, error) {
	switch s {
	case "plausibility", "":
		return model.VariantPlausibility, nil
	case "coverage":
		return model.VariantCoverage, nil
	default:
		return "", fmt.Errorf("unknown question variant: %s (supported: plausibility, coverage)", s)
	}
}
