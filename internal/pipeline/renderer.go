package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/nomos/internal/model"
)

// Renderer writes ask results as JSON, Markdown, and terminal output
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the caller-facing response shape to a file
func (r *Renderer) RenderJSON(result *AskResult, path string) error {
	return r.RenderResponse(result.Response, path)
}

// RenderResponse writes a bare wire response to a file. Batch processing
// uses this form because outcomes carry only the response shape.
func (r *Renderer) RenderResponse(resp model.Response, path string) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// RenderMarkdown writes the full result as a Markdown report
func (r *Renderer) RenderMarkdown(result *AskResult, path string) error {
	var b strings.Builder

	b.WriteString("# Compliance Answer\n\n")
	fmt.Fprintf(&b, "**Question:** %s\n\n", result.Query.Text)
	fmt.Fprintf(&b, "**Class:** %s (%s)\n\n", result.Decision.Class, result.Decision.Rule)
	fmt.Fprintf(&b, "**Confidence:** %.2f\n\n", result.Answer.OverallConfidence)
	fmt.Fprintf(&b, "**Elapsed:** %s\n\n", result.Elapsed.Round(time.Millisecond))

	if result.Answer.StalenessWarning != "" {
		fmt.Fprintf(&b, "> ⚠ %s\n\n", result.Answer.StalenessWarning)
	}

	b.WriteString("## Answer\n\n")
	if result.Answer.AnswerText != "" {
		b.WriteString(result.Answer.AnswerText)
		b.WriteString("\n\n")
	} else {
		b.WriteString("_No generated answer; consult the cited sources below._\n\n")
	}

	b.WriteString("## Sources\n\n")
	b.WriteString("| # | Source | Authority | Date | Locator |\n")
	b.WriteString("|---|--------|-----------|------|---------|\n")
	for i, c := range result.Answer.Citations {
		date := "undated"
		if !c.DatePublished.IsZero() {
			date = c.DatePublished.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			i+1, c.SourceName, c.Authority, date, c.Locator)
	}
	b.WriteString("\n")

	if notes := collectNotes(result); len(notes) > 0 {
		b.WriteString("## Notes\n\n")
		for _, note := range notes {
			fmt.Fprintf(&b, "- %s\n", note)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Generated by nomos. General guidance only, not professional tax advice._\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// RenderSummary prints a human-readable summary to stdout
func (r *Renderer) RenderSummary(result *AskResult) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println("  Answer")
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println()

	if result.Answer.AnswerText != "" {
		fmt.Printf("%s\n\n", result.Answer.AnswerText)
	} else {
		fmt.Printf("No generated answer. Consult the sources below.\n\n")
	}

	if result.Answer.StalenessWarning != "" {
		fmt.Printf("⚠ %s\n\n", result.Answer.StalenessWarning)
	}

	fmt.Println("Sources:")
	for i, c := range result.Answer.Citations {
		date := "undated"
		if !c.DatePublished.IsZero() {
			date = c.DatePublished.Format("2006-01-02")
		}
		fmt.Printf("  [%d] %s (%s, %s) %s\n", i+1, c.SourceName, c.Authority, date, c.Locator)
	}
	fmt.Println()

	fmt.Printf("Confidence: %.2f · Class: %s · Elapsed: %s\n",
		result.Answer.OverallConfidence,
		result.Decision.Class,
		result.Elapsed.Round(time.Millisecond))

	for _, w := range result.Answer.Warnings {
		fmt.Printf("⚠ %s\n", w)
	}
	fmt.Println()
}

// collectNotes flattens resolution signals and answer warnings into
// report notes, most severe first
func collectNotes(result *AskResult) []string {
	var critical, warning, info []string

	for _, s := range result.Resolution.Signals {
		note := fmt.Sprintf("**%s** (%s): %s", s.Severity, s.Type, s.Description)
		switch s.Severity {
		case model.SeverityCritical:
			critical = append(critical, note)
		case model.SeverityWarning:
			warning = append(warning, note)
		default:
			info = append(info, note)
		}
	}

	for _, w := range result.Answer.Warnings {
		warning = append(warning, fmt.Sprintf("**warning**: %s", w))
	}

	notes := make([]string, 0, len(critical)+len(warning)+len(info))
	notes = append(notes, critical...)
	notes = append(notes, warning...)
	notes = append(notes, info...)
	return notes
}
