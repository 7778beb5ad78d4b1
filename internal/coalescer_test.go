package internal

import (
	"testing"
)

func deltaStep(stepType StepType, content, streamKey string) Step {
	return NewStep(stepType, content, map[string]interface{}{"stream_key": streamKey})
}

func TestCoalesceMergesDeltaRun(t *testing.T) {
	coalescer := NewCoalescer()
	steps := []Step{
		deltaStep(StepThoughtDelta, "I should ", "sk-1"),
		deltaStep(StepThoughtDelta, "read the ", "sk-1"),
		deltaStep(StepThoughtDelta, "config first.", "sk-1"),
	}

	out := coalescer.Coalesce(steps)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Type != StepThought {
		t.Errorf("Type = %v, want thought", out[0].Type)
	}
	if out[0].Content != "I should read the config first." {
		t.Errorf("Content = %q, want concatenation", out[0].Content)
	}
}

func TestCoalesceFullStepSupersedesDeltas(t *testing.T) {
	coalescer := NewCoalescer()
	steps := []Step{
		deltaStep(StepAnswerDelta, "partial", "sk-2"),
		deltaStep(StepAnswerDelta, " text", "sk-2"),
		deltaStep(StepAnswer, "the complete final text", "sk-2"),
	}

	out := coalescer.Coalesce(steps)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Content != "the complete final text" {
		t.Errorf("Content = %q, want the re-sent complete text", out[0].Content)
	}
}

func TestCoalesceDistinctStreamsStaySeparate(t *testing.T) {
	coalescer := NewCoalescer()
	steps := []Step{
		deltaStep(StepThoughtDelta, "a", "sk-1"),
		deltaStep(StepThoughtDelta, "b", "sk-2"),
	}

	out := coalescer.Coalesce(steps)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
}

func TestCoalescePassThrough(t *testing.T) {
	coalescer := NewCoalescer()
	observation := NewStep(StepObservation, "output", map[string]interface{}{"tool": "shell"})
	keyless := NewStep(StepThoughtDelta, "no key", map[string]interface{}{})
	steps := []Step{observation, keyless}

	out := coalescer.Coalesce(steps)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	if out[0].Content != "output" || out[1].Content != "no key" {
		t.Errorf("out = %+v, want unchanged pass-through", out)
	}
	if out[1].Type != StepThoughtDelta {
		t.Errorf("keyless delta Type = %v, want untouched thought_delta", out[1].Type)
	}
}

func TestCoalesceInterruptedRun(t *testing.T) {
	// An unrelated step splits a delta run; the two halves stay separate.
	coalescer := NewCoalescer()
	steps := []Step{
		deltaStep(StepThoughtDelta, "first ", "sk-1"),
		NewStep(StepObservation, "interrupt", map[string]interface{}{"tool": "shell"}),
		deltaStep(StepThoughtDelta, "second", "sk-1"),
	}

	out := coalescer.Coalesce(steps)
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	if out[0].Content != "first " || out[2].Content != "second" {
		t.Errorf("out = %+v, want split runs preserved", out)
	}
}
