package internal

// Category is the display bucket a step type maps to.
type Category string

const (
	CategoryThought Category = "thought"
	CategoryTool    Category = "tool"
	CategoryFinal   Category = "final"
	CategoryError   Category = "error"
	CategoryOther   Category = "other"
)

var stepCategories = map[StepType]Category{
	StepThought:      CategoryThought,
	StepThoughtDelta: CategoryThought,
	StepAction:       CategoryTool,
	StepActionDelta:  CategoryTool,
	StepObservation:  CategoryTool,
	StepAnswer:       CategoryFinal,
	StepAnswerDelta:  CategoryFinal,
	StepError:        CategoryError,
}

// Categorize maps a step type to its display category. The mapping is total:
// unrecognized types (including context_estimate) fall through to CategoryOther.
func Categorize(stepType StepType) Category {
	if category, ok := stepCategories[stepType]; ok {
		return category
	}
	return CategoryOther
}

// IterationGroup is a contiguous run of steps sharing a reasoning round.
// Iteration is nil for steps that carry no usable iteration metadata.
type IterationGroup struct {
	Iteration *int
	Steps     []Step
}

// GroupIterations clusters steps into contiguous reasoning rounds, keeping
// the original order. Adjacent steps with the same non-nil iteration share a
// group; a step without an iteration always forms a singleton group and
// terminates the run before it. Flattening the returned groups reproduces
// the input sequence exactly.
func GroupIterations(steps []Step) []IterationGroup {
	var groups []IterationGroup
	current := -1

	for _, step := range steps {
		iteration := step.Iteration()
		if iteration == nil {
			groups = append(groups, IterationGroup{Steps: []Step{step}})
			current = -1
			continue
		}
		if current >= 0 && groups[current].Iteration != nil && *groups[current].Iteration == *iteration {
			groups[current].Steps = append(groups[current].Steps, step)
			continue
		}
		groups = append(groups, IterationGroup{Iteration: iteration, Steps: []Step{step}})
		current = len(groups) - 1
	}

	return groups
}
