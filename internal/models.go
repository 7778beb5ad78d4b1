package internal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StepType identifies the kind of record a streaming agent emitted.
type StepType string

const (
	StepThought         StepType = "thought"
	StepThoughtDelta    StepType = "thought_delta"
	StepAction          StepType = "action"
	StepActionDelta     StepType = "action_delta"
	StepObservation     StepType = "observation"
	StepAnswer          StepType = "answer"
	StepAnswerDelta     StepType = "answer_delta"
	StepError           StepType = "error"
	StepContextEstimate StepType = "context_estimate"
)

// Step represents one record in an agent transcript. Steps are immutable
// once loaded and are only ever appended to a transcript.
type Step struct {
	Key       string                 `json:"key"`
	Type      StepType               `json:"type"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Sequence  int                    `json:"sequence"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// NewStep builds a step with a stable key. The key is taken from the
// metadata stream_key or call_key when the agent supplied one, otherwise a
// fresh UUID is assigned so the presentation layer can track per-step state.
func NewStep(stepType StepType, content string, metadata map[string]interface{}) Step {
	step := Step{
		Type:     stepType,
		Content:  content,
		Metadata: metadata,
	}
	step.Key = stepKey(metadata)
	return step
}

func stepKey(metadata map[string]interface{}) string {
	for _, field := range []string{"stream_key", "call_key"} {
		if v, ok := metadata[field].(string); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// ToolName returns the tool identifier attached to an observation step, or
// an empty string when the step carries none.
func (s Step) ToolName() string {
	if v, ok := s.Metadata["tool"].(string); ok {
		return v
	}
	return ""
}

// Iteration returns the reasoning-round index from the step metadata.
// Numeric values and numeric strings are accepted; anything else yields nil.
func (s Step) Iteration() *int {
	raw, ok := s.Metadata["iteration"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case int:
		return &v
	case int64:
		n := int(v)
		return &n
	case float64:
		n := int(v)
		return &n
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		n := int(f)
		return &n
	case string:
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err != nil {
			return nil
		}
		n := int(f)
		return &n
	default:
		return nil
	}
}

// ParseStepMetadata decodes the metadata JSON column of an agent_steps row.
// A missing or malformed column yields an empty map, never an error: a step
// with broken metadata still renders as plain text.
func ParseStepMetadata(raw string) map[string]interface{} {
	if raw == "" {
		return map[string]interface{}{}
	}
	var metadata map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		LogDebug("Failed to parse step metadata: %v", err)
		return map[string]interface{}{}
	}
	return metadata
}

// PermissionRequest represents a pending tool-permission row surfaced
// alongside the transcript.
type PermissionRequest struct {
	Path   string `json:"path"`
	Reason string `json:"reason,omitempty"`
}

// SessionInfo represents a chat session row from the agent database.
type SessionInfo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	WorkPath     string `json:"work_path,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
	MessageCount int    `json:"message_count"`
}

// GetCreatedAt returns the session creation time, or the zero time when the
// stored value is absent or unparseable.
func (si SessionInfo) GetCreatedAt() time.Time {
	return parseSessionTime(si.CreatedAt)
}

// GetUpdatedAt returns the last-update time, falling back to the creation
// time when the column was never written.
func (si SessionInfo) GetUpdatedAt() time.Time {
	if si.UpdatedAt == "" {
		return si.GetCreatedAt()
	}
	return parseSessionTime(si.UpdatedAt)
}

func parseSessionTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Transcript is an ordered, append-only step sequence for one session.
type Transcript struct {
	SessionID string
	WorkPath  string
	Steps     []Step
	Pending   []PermissionRequest
	Streaming bool
}

// Append adds steps to the end of the transcript. Existing steps are never
// reordered or mutated.
func (t *Transcript) Append(steps ...Step) {
	t.Steps = append(t.Steps, steps...)
}
