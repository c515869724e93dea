package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pveilleux/claimsift/internal/model"
	"github.com/pveilleux/claimsift/internal/pipeline"
)

// Reviewer defines the interface for reviewing one claim document
type Reviewer interface {
	ReviewDocument(ctx context.Context, path string, opts pipeline.ReviewOptions) (*model.Report, error)
}

// ReviewJob reviews a single claim PDF
type ReviewJob struct {
	Path     string
	Opts     pipeline.ReviewOptions
	Reviewer Reviewer
}

// Execute executes the review job
func (j *ReviewJob) Execute(ctx context.Context) Result {
	report, err := j.Reviewer.ReviewDocument(ctx, j.Path, j.Opts)
	return &ReviewResult{
		Path:   j.Path,
		Report: report,
		Error:  err,
	}
}

// ReviewResult represents the result of a review job
type ReviewResult struct {
	Path   string
	Report *model.Report
	Error  error
}

// GetError returns the error from the review result
func (r *ReviewResult) GetError() error {
	return r.Error
}

// BatchProcessor reviews multiple claim documents concurrently. A failed
// document is reported in its result, never fatal to the batch.
type BatchProcessor struct {
	reviewer    Reviewer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(reviewer Reviewer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		reviewer:    reviewer,
		concurrency: concurrency,
	}
}

// ProcessPaths reviews the given documents concurrently
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string, opts pipeline.ReviewOptions) []*ReviewResult {
	if len(paths) == 0 {
		return []*ReviewResult{}
	}

	pool := NewPoolWithCapacity(b.concurrency, len(paths))
	pool.Start()

	for _, path := range paths {
		pool.Submit(&ReviewJob{
			Path:     path,
			Opts:     opts,
			Reviewer: b.reviewer,
		})
	}

	results := pool.Wait()

	reviewResults := make([]*ReviewResult, len(results))
	for i, result := range results {
		reviewResults[i] = result.(*ReviewResult)
	}

	return reviewResults
}

// ProcessDir reviews every claim PDF in a directory
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir string, opts pipeline.ReviewOptions) ([]*ReviewResult, error) {
	paths, err := ListClaimPDFs(dir)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	return b.ProcessPaths(ctx, paths, opts), nil
}

// ListClaimPDFs returns the PDF files in dir, sorted by name
func ListClaimPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(paths)
	return paths, nil
}
