package export

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

// Export exports a transcript document to Markdown format
func (e *MarkdownExporter) Export(doc *Document, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# Transcript %s\n\n", doc.SessionID)

	if doc.Title != "" {
		_, _ = fmt.Fprintf(w, "**Title:** %s  \n", doc.Title)
	}
	if doc.WorkPath != "" {
		_, _ = fmt.Fprintf(w, "**Work path:** %s  \n", doc.WorkPath)
	}
	_, _ = fmt.Fprintf(w, "**Rounds:** %d\n\n", len(doc.Rounds))

	for _, round := range doc.Rounds {
		if round.Iteration != nil {
			_, _ = fmt.Fprintf(w, "---\n\n## Round %d\n\n", *round.Iteration+1)
		}
		for _, step := range round.Steps {
			label := step.Category
			if step.Tool != "" {
				label = fmt.Sprintf("%s (%s)", step.Category, step.Tool)
			}
			if step.Failed {
				label += " (failed)"
			}
			_, _ = fmt.Fprintf(w, "**%s:**\n\n%s\n\n", label, fenceContent(step))
		}
	}

	if doc.Patches != nil {
		_, _ = fmt.Fprintf(w, "---\n\n## Files changed\n\n")
		for _, file := range doc.Patches.Files {
			_, _ = fmt.Fprintf(w, "- %s +%d/-%d\n", file.Path, file.Added, file.Removed)
		}
	}

	return nil
}

// fenceContent wraps tool output in a code fence; prose categories pass
// through as markdown.
func fenceContent(step StepRecord) string {
	content := strings.TrimRight(step.Content, "\n")
	if content == "" {
		return "_(empty)_"
	}
	if step.Category == "tool" {
		return "```\n" + content + "\n```"
	}
	return content
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
