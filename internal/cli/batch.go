package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pveilleux/claimsift/internal/pipeline"
	"github.com/pveilleux/claimsift/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Review every claim PDF in a directory in parallel",
	Long: `Batch reviews all claim PDFs in a directory:
- Discover *.pdf files in the directory
- Review documents in parallel with a configurable worker count
- Oracle invocations are rate limited across the whole batch
- Generate one JSON and one Markdown report per document

Example:
  claimsift batch claims/
  claimsift batch claims/ --concurrency 4 --output-dir ./reports
  claimsift batch claims/ --question coverage --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent reviews")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./claimsift-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	// Shared pipeline flags
	batchCmd.Flags().StringVar(&question, "question", "plausibility", "question variant (plausibility, coverage)")
	batchCmd.Flags().StringVar(&imageDir, "image-dir", "images", "directory for extracted incident images")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the classification cache (force fresh scoring)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().StringVar(&clipURL, "clip-url", "", "CLIP scorer endpoint (default: http://localhost:8765)")
	batchCmd.Flags().Float64Var(&minConfidence, "min-confidence", 0.5, "confidence below which the category is indeterminate")

	// Oracle flags
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "ollama", "oracle provider (ollama, openai, anthropic)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "llava-phi3", "oracle model name")
	batchCmd.Flags().StringVar(&llmBaseURL, "llm-url", "", "oracle base URL (e.g. a remote Ollama instance)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, opts, err := buildReviewConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	paths, err := worker.ListClaimPDFs(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no claim PDFs found in %s", dir)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Reviewing %d claims with %d workers\n\n", len(paths), concurrency)
	}

	processor := worker.NewBatchProcessor(p, concurrency)
	results := processor.ProcessPaths(ctx, paths, opts)

	failed := 0
	for _, result := range results {
		if result.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		base := result.Report.Document.ID
		jsonPath := filepath.Join(outputDir, base+".json")
		mdPath := filepath.Join(outputDir, base+".md")
		if err := p.RenderReport(result.Report, jsonPath, mdPath, verbose); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: render: %v\n", result.Path, err)
		}
	}

	fmt.Printf("\n%d reviewed, %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d reviews failed", failed, len(results))
	}
	return nil
}
