package internal

import "strings"

// Coalescer merges runs of streaming delta steps before assembly. The
// processing core treats delta steps as independent entries; folding them
// into their full step is an upstream concern, and the CLI loader is that
// upstream.
type Coalescer struct{}

// NewCoalescer creates a new Coalescer.
func NewCoalescer() *Coalescer {
	return &Coalescer{}
}

var deltaTargets = map[StepType]StepType{
	StepThoughtDelta: StepThought,
	StepActionDelta:  StepAction,
	StepAnswerDelta:  StepAnswer,
}

// Coalesce folds adjacent delta steps sharing a stream_key into a single
// step of the corresponding full type, concatenating their content in
// order. A full step with the same stream_key absorbs the deltas that
// preceded it (the agent re-sends the complete text at stream end).
// Non-delta steps and deltas without a stream key pass through unchanged.
func (c *Coalescer) Coalesce(steps []Step) []Step {
	var out []Step

	for _, step := range steps {
		target, isDelta := deltaTargets[step.Type]
		key := streamKeyOf(step)

		if !isDelta {
			// A completed step supersedes the delta run it streamed as.
			if key != "" && len(out) > 0 {
				last := out[len(out)-1]
				if streamKeyOf(last) == key && last.Type == step.Type {
					out[len(out)-1] = step
					continue
				}
			}
			out = append(out, step)
			continue
		}

		if key == "" {
			out = append(out, step)
			continue
		}

		if len(out) > 0 {
			last := out[len(out)-1]
			if last.Type == target && streamKeyOf(last) == key {
				merged := last
				merged.Content = last.Content + step.Content
				out[len(out)-1] = merged
				continue
			}
		}

		full := step
		full.Type = target
		out = append(out, full)
	}

	return out
}

func streamKeyOf(step Step) string {
	if v, ok := step.Metadata["stream_key"].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
