package export

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONLExporter exports transcripts in JSONL format (one step per line)
type JSONLExporter struct{}

// Export exports a transcript document to JSONL format
func (e *JSONLExporter) Export(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, round := range doc.Rounds {
		for _, step := range round.Steps {
			obj := map[string]interface{}{
				"type":     step.Type,
				"category": step.Category,
				"content":  step.Content,
			}
			if round.Iteration != nil {
				obj["iteration"] = *round.Iteration
			}
			if step.Tool != "" {
				obj["tool"] = step.Tool
			}
			if step.Failed {
				obj["failed"] = true
			}

			if err := enc.Encode(obj); err != nil {
				return fmt.Errorf("failed to encode step: %w", err)
			}
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
