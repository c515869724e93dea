package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pveilleux/claimsift/internal/model"
)

// Renderer writes review reports as JSON and Markdown and prints the
// stdout summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Claim Review: %s\n\n", report.Document.ID)
	fmt.Fprintf(&b, "- **Reviewed:** %s\n", report.ReviewedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Question:** %s\n", report.Variant)
	fmt.Fprintf(&b, "- **Oracle:** %s/%s\n", report.Provider, report.Model)
	fmt.Fprintf(&b, "- **Latency:** %d ms\n\n", report.Result.LatencyMs)

	fmt.Fprintf(&b, "## Verdict: %s\n\n", strings.ToUpper(string(report.Result.Verdict)))
	fmt.Fprintf(&b, "%s\n\n", report.Result.Justification)

	if report.Primary != nil {
		fmt.Fprintf(&b, "## Image Classification\n\n")
		for _, c := range report.Classifications {
			fmt.Fprintf(&b, "- `%s`: %s (confidence %.2f)\n", c.Image.StoragePath, c.Category, c.Confidence)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Incident Text\n\n%s\n\n", report.Document.IncidentText)
	fmt.Fprintf(&b, "## Contract Text\n\n%s\n\n", report.Document.ContractText)

	if len(report.Warnings) > 0 {
		fmt.Fprintf(&b, "## Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n")
		b.WriteString("Generated by claimsift. The verdict is advisory; a human reviewer owns the decision.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	return nil
}

// RenderSummary prints a short summary to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Printf("\n%s: %s\n", report.Document.ID, strings.ToUpper(string(report.Result.Verdict)))
	if report.Primary != nil {
		fmt.Printf("  Detected: %s (confidence %.2f)\n", report.Primary.Category, report.Primary.Confidence)
	}
	fmt.Printf("  Images: %d  Latency: %d ms\n", len(report.Document.Images), report.Result.LatencyMs)

	justification := report.Result.Justification
	if len(justification) > 300 {
		justification = justification[:300] + "…"
	}
	if justification != "" {
		fmt.Printf("  %s\n", justification)
	}
}

// RenderReport renders the report to the configured outputs
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(report)

	return nil
}
