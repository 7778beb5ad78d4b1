package internal

import "strings"

// FallbackDiffPath labels diff content that could not be attributed to a
// specific file.
const FallbackDiffPath = "(patch)"

// PatchAggregate is the transcript-wide roll-up of all successful
// apply-patch calls.
type PatchAggregate struct {
	// Order lists touched paths in first-seen order across the transcript.
	Order []string
	// PerFile holds running added/removed totals per path.
	PerFile map[string]FileChange
	// DiffChunks holds the per-file diff text fragments per path.
	DiffChunks map[string][]string
	// RevertPatch is the concatenation of each call's revert segment in
	// reverse chronological order, so applying it sequentially undoes
	// changes last-applied-first.
	RevertPatch string
}

// PatchAggregator merges successful apply-patch results across a transcript.
// Totals only ever accumulate; a failed result contributes nothing.
type PatchAggregator struct {
	order          []string
	totals         map[string]FileChange
	chunks         map[string][]string
	revertSegments []string
	applied        int
}

// NewPatchAggregator creates an empty aggregator.
func NewPatchAggregator() *PatchAggregator {
	return &PatchAggregator{
		totals: make(map[string]FileChange),
		chunks: make(map[string][]string),
	}
}

// Add folds one apply-patch result into the aggregate. Results with ok=false
// are ignored here; their error belongs to the individual step only.
func (pa *PatchAggregator) Add(result *PatchResult) {
	if result == nil || !result.OK {
		return
	}
	pa.applied++

	for _, change := range result.Summary {
		totals, seen := pa.totals[change.Path]
		if !seen {
			pa.order = append(pa.order, change.Path)
			totals = FileChange{Path: change.Path}
		}
		totals.Added += change.Added
		totals.Removed += change.Removed
		pa.totals[change.Path] = totals
	}

	for path, chunk := range SplitDiffByFile(result.Diff, result.Summary) {
		pa.chunks[path] = append(pa.chunks[path], chunk...)
	}

	if result.RevertPatch != "" {
		pa.revertSegments = append([]string{result.RevertPatch}, pa.revertSegments...)
	}
}

// AppliedCalls reports how many successful results have been folded in.
func (pa *PatchAggregator) AppliedCalls() int {
	return pa.applied
}

// Aggregate snapshots the current totals. The snapshot owns its own slices
// and maps, so later Add calls do not mutate it.
func (pa *PatchAggregator) Aggregate() *PatchAggregate {
	if pa.applied == 0 {
		return nil
	}

	aggregate := &PatchAggregate{
		Order:       append([]string(nil), pa.order...),
		PerFile:     make(map[string]FileChange, len(pa.totals)),
		DiffChunks:  make(map[string][]string, len(pa.chunks)),
		RevertPatch: strings.Join(pa.revertSegments, "\n"),
	}
	for path, totals := range pa.totals {
		aggregate.PerFile[path] = totals
	}
	for path, chunks := range pa.chunks {
		aggregate.DiffChunks[path] = append([]string(nil), chunks...)
	}
	return aggregate
}

// SplitDiffByFile cuts a combined unified diff into per-file chunks on
// per-file header lines. Content before the first header is attributed to
// the call's single touched file when exactly one was modified, otherwise to
// FallbackDiffPath.
func SplitDiffByFile(diff string, summary []FileChange) map[string][]string {
	if strings.TrimSpace(diff) == "" {
		return nil
	}

	lines := strings.Split(diff, "\n")
	hasGitHeaders := false
	for _, line := range lines {
		if strings.HasPrefix(line, "diff --git ") {
			hasGitHeaders = true
			break
		}
	}

	chunks := make(map[string][]string)
	currentPath := ""
	var current []string
	flush := func() {
		if len(current) == 0 {
			return
		}
		path := currentPath
		if path == "" {
			if len(summary) == 1 {
				path = summary[0].Path
			} else {
				path = FallbackDiffPath
			}
		}
		chunks[path] = append(chunks[path], strings.Join(current, "\n"))
		current = nil
	}

	for _, line := range lines {
		if path, ok := diffHeaderPath(line, hasGitHeaders); ok {
			flush()
			currentPath = path
		}
		current = append(current, line)
	}
	flush()

	return chunks
}

// diffHeaderPath extracts the touched path from a per-file diff header line.
// Git-style "diff --git a/X b/Y" headers take precedence; plain unified
// diffs are split on their "--- a/X" file headers instead.
func diffHeaderPath(line string, hasGitHeaders bool) (string, bool) {
	if hasGitHeaders {
		rest, ok := strings.CutPrefix(line, "diff --git ")
		if !ok {
			return "", false
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return "", false
		}
		target := fields[len(fields)-1]
		target = strings.TrimPrefix(target, "b/")
		return target, true
	}

	rest, ok := strings.CutPrefix(line, "--- ")
	if !ok {
		return "", false
	}
	rest = strings.TrimPrefix(rest, "a/")
	if rest == "" || rest == "/dev/null" {
		return FallbackDiffPath, true
	}
	return rest, true
}
