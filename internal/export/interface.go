package export

import (
	"fmt"
	"io"

	"github.com/iksnae/agent-transcript/internal"
)

// Document is the serializable form of an assembled transcript.
type Document struct {
	SessionID string  `json:"session_id" yaml:"session_id"`
	Title     string  `json:"title,omitempty" yaml:"title,omitempty"`
	WorkPath  string  `json:"work_path,omitempty" yaml:"work_path,omitempty"`
	Rounds    []Round `json:"rounds" yaml:"rounds"`
	Patches   *Patch  `json:"patches,omitempty" yaml:"patches,omitempty"`
}

// Round is one reasoning round of the transcript.
type Round struct {
	Iteration *int         `json:"iteration,omitempty" yaml:"iteration,omitempty"`
	Steps     []StepRecord `json:"steps" yaml:"steps"`
}

// StepRecord is one decorated step flattened for serialization.
type StepRecord struct {
	Type     string `json:"type" yaml:"type"`
	Category string `json:"category" yaml:"category"`
	Tool     string `json:"tool,omitempty" yaml:"tool,omitempty"`
	Format   string `json:"format,omitempty" yaml:"format,omitempty"`
	Content  string `json:"content" yaml:"content"`
	Failed   bool   `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Patch is the transcript-wide patch roll-up.
type Patch struct {
	Files       []FileTotal `json:"files" yaml:"files"`
	RevertPatch string      `json:"revert_patch,omitempty" yaml:"revert_patch,omitempty"`
}

// FileTotal is one file's accumulated added/removed counts.
type FileTotal struct {
	Path    string `json:"path" yaml:"path"`
	Added   int    `json:"added" yaml:"added"`
	Removed int    `json:"removed" yaml:"removed"`
}

// BuildDocument flattens an assembled transcript view for export.
func BuildDocument(info *internal.SessionInfo, view *internal.TranscriptView) *Document {
	doc := &Document{SessionID: view.SessionID}
	if info != nil {
		doc.Title = info.Title
		doc.WorkPath = info.WorkPath
	}

	for _, group := range view.Groups {
		round := Round{Iteration: group.Iteration}
		for _, sv := range group.Steps {
			round.Steps = append(round.Steps, StepRecord{
				Type:     string(sv.Step.Type),
				Category: string(sv.Category),
				Tool:     sv.Step.ToolName(),
				Format:   string(sv.Format),
				Content:  sv.DisplayContent,
				Failed:   sv.Failed,
			})
		}
		doc.Rounds = append(doc.Rounds, round)
	}

	if view.Aggregate != nil {
		patch := &Patch{RevertPatch: view.Aggregate.RevertPatch}
		for _, path := range view.Aggregate.Order {
			totals := view.Aggregate.PerFile[path]
			patch.Files = append(patch.Files, FileTotal{
				Path:    path,
				Added:   totals.Added,
				Removed: totals.Removed,
			})
		}
		doc.Patches = patch
	}

	return doc
}

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}
