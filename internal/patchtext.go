package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PatchKind is the action a file section of a patch envelope performs.
type PatchKind string

const (
	PatchUpdate PatchKind = "update"
	PatchAdd    PatchKind = "add"
	PatchDelete PatchKind = "delete"
)

// HunkLine is one prefixed line of an update hunk.
type HunkLine struct {
	Prefix byte // ' ', '+', or '-'
	Text   string
}

// FilePatch is one file section of a patch envelope.
type FilePatch struct {
	Kind  PatchKind
	Path  string
	Hunks [][]HunkLine // update only
	Lines []string     // add only
}

// AppliedFile reports one file touched by ApplyPatchEnvelope, with the
// content before and after for diff display.
type AppliedFile struct {
	Kind   PatchKind
	Path   string
	Before string
	After  string
}

// ParsePatchEnvelope parses the "*** Begin Patch" envelope format the agent
// uses for file edits: Update/Add/Delete File sections, update sections
// holding @@-separated hunks of prefixed lines.
func ParsePatchEnvelope(patchText string) ([]FilePatch, error) {
	text := strings.Trim(normalizeNewlines(patchText), "\n")
	if text == "" {
		return nil, fmt.Errorf("patch content is empty")
	}
	lines := strings.Split(text, "\n")
	if strings.TrimSpace(lines[0]) != "*** Begin Patch" {
		return nil, fmt.Errorf("patch must start with '*** Begin Patch'")
	}

	var patches []FilePatch
	i := 1
	for i < len(lines) {
		raw := strings.TrimSpace(lines[i])
		switch {
		case raw == "*** End Patch":
			if len(patches) == 0 {
				return nil, fmt.Errorf("patch contains no file changes")
			}
			return patches, nil

		case strings.HasPrefix(raw, "*** Update File:"):
			path := sectionPath(raw)
			if path == "" {
				return nil, fmt.Errorf("missing file path in Update File")
			}
			i++
			var hunks [][]HunkLine
			var current []HunkLine
			sawHeader := false
			for i < len(lines) && !strings.HasPrefix(lines[i], "*** ") {
				line := lines[i]
				if strings.HasPrefix(line, "@@") {
					sawHeader = true
					if len(current) > 0 {
						hunks = append(hunks, current)
						current = nil
					}
					i++
					continue
				}
				if line == "" {
					return nil, fmt.Errorf("patch lines must start with +, -, or space")
				}
				prefix := line[0]
				if prefix != ' ' && prefix != '+' && prefix != '-' {
					return nil, fmt.Errorf("patch lines must start with +, -, or space")
				}
				current = append(current, HunkLine{Prefix: prefix, Text: line[1:]})
				i++
			}
			if len(current) > 0 {
				hunks = append(hunks, current)
			}
			if !sawHeader {
				return nil, fmt.Errorf("missing @@ hunk header")
			}
			if len(hunks) == 0 {
				return nil, fmt.Errorf("no hunk content found")
			}
			patches = append(patches, FilePatch{Kind: PatchUpdate, Path: path, Hunks: hunks})

		case strings.HasPrefix(raw, "*** Add File:"):
			path := sectionPath(raw)
			if path == "" {
				return nil, fmt.Errorf("missing file path in Add File")
			}
			i++
			var added []string
			for i < len(lines) && !strings.HasPrefix(lines[i], "*** ") {
				line := lines[i]
				if !strings.HasPrefix(line, "+") {
					return nil, fmt.Errorf("Add File lines must start with +")
				}
				added = append(added, line[1:])
				i++
			}
			patches = append(patches, FilePatch{Kind: PatchAdd, Path: path, Lines: added})

		case strings.HasPrefix(raw, "*** Delete File:"):
			path := sectionPath(raw)
			if path == "" {
				return nil, fmt.Errorf("missing file path in Delete File")
			}
			i++
			for i < len(lines) && !strings.HasPrefix(lines[i], "*** ") {
				if strings.TrimSpace(lines[i]) != "" {
					return nil, fmt.Errorf("Delete File section should not include content lines")
				}
				i++
			}
			patches = append(patches, FilePatch{Kind: PatchDelete, Path: path})

		default:
			return nil, fmt.Errorf("unexpected patch line: %s", lines[i])
		}
	}

	return nil, fmt.Errorf("patch must end with '*** End Patch'")
}

// ApplyPatchEnvelope parses a patch envelope and applies it to files under
// root. It reports each touched file with its before/after content.
func ApplyPatchEnvelope(patchText, root string) ([]AppliedFile, error) {
	patches, err := ParsePatchEnvelope(patchText)
	if err != nil {
		return nil, err
	}

	var applied []AppliedFile
	for _, patch := range patches {
		target := filepath.Join(root, patch.Path)
		switch patch.Kind {
		case PatchUpdate:
			original, err := os.ReadFile(target)
			if err != nil {
				return applied, fmt.Errorf("file not found: %s", patch.Path)
			}
			before := normalizeNewlines(string(original))
			oldLines := strings.Split(before, "\n")
			newLines, err := applyUpdateHunks(oldLines, patch.Hunks)
			if err != nil {
				return applied, fmt.Errorf("%s: %w", patch.Path, err)
			}
			after := strings.Join(newLines, "\n")
			if after == strings.Join(oldLines, "\n") {
				return applied, fmt.Errorf("patch did not change %s", patch.Path)
			}
			if err := os.WriteFile(target, []byte(after), 0644); err != nil {
				return applied, fmt.Errorf("write %s: %w", patch.Path, err)
			}
			applied = append(applied, AppliedFile{Kind: PatchUpdate, Path: patch.Path, Before: before, After: after})

		case PatchAdd:
			if _, err := os.Stat(target); err == nil {
				return applied, fmt.Errorf("file already exists: %s", patch.Path)
			}
			content := strings.Join(patch.Lines, "\n")
			if len(patch.Lines) > 0 {
				content += "\n"
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return applied, fmt.Errorf("create directory for %s: %w", patch.Path, err)
			}
			if err := os.WriteFile(target, []byte(content), 0644); err != nil {
				return applied, fmt.Errorf("write %s: %w", patch.Path, err)
			}
			applied = append(applied, AppliedFile{Kind: PatchAdd, Path: patch.Path, After: content})

		case PatchDelete:
			original, err := os.ReadFile(target)
			if err != nil {
				return applied, fmt.Errorf("file not found: %s", patch.Path)
			}
			if err := os.Remove(target); err != nil {
				return applied, fmt.Errorf("delete %s: %w", patch.Path, err)
			}
			applied = append(applied, AppliedFile{Kind: PatchDelete, Path: patch.Path, Before: string(original)})
		}
	}

	return applied, nil
}

// applyUpdateHunks locates each hunk's context inside the file and splices
// in the replacement. An exact line match is tried first, then a
// whitespace-relaxed match; both must be unique.
func applyUpdateHunks(lines []string, hunks [][]HunkLine) ([]string, error) {
	updated := append([]string(nil), lines...)
	for _, hunk := range hunks {
		var pattern []string
		for _, hl := range hunk {
			if hl.Prefix == ' ' || hl.Prefix == '-' {
				pattern = append(pattern, hl.Text)
			}
		}
		if len(pattern) == 0 {
			return nil, fmt.Errorf("hunk has no context")
		}

		matches := findMatches(updated, pattern, false)
		if len(matches) == 0 {
			matches = findMatches(updated, pattern, true)
			if len(matches) == 0 {
				return nil, fmt.Errorf("hunk context not found")
			}
		}
		if len(matches) > 1 {
			return nil, fmt.Errorf("hunk context is not unique")
		}

		start := matches[0]
		matched := updated[start : start+len(pattern)]
		var segment []string
		patternIdx := 0
		for _, hl := range hunk {
			switch hl.Prefix {
			case ' ':
				segment = append(segment, matched[patternIdx])
				patternIdx++
			case '-':
				patternIdx++
			case '+':
				segment = append(segment, hl.Text)
			}
		}
		updated = append(updated[:start], append(segment, updated[start+len(pattern):]...)...)
	}
	return updated, nil
}

func findMatches(lines, pattern []string, relaxed bool) []int {
	normalize := func(s string) string {
		if relaxed {
			return strings.TrimSpace(s)
		}
		return s
	}
	var matches []int
	for idx := 0; idx+len(pattern) <= len(lines); idx++ {
		hit := true
		for j := range pattern {
			if normalize(lines[idx+j]) != normalize(pattern[j]) {
				hit = false
				break
			}
		}
		if hit {
			matches = append(matches, idx)
		}
	}
	return matches
}

// SplitPatchEnvelopes cuts a concatenation of patch envelopes into the
// individual "*** Begin Patch" to "*** End Patch" segments, in order. Text
// between envelopes is discarded.
func SplitPatchEnvelopes(text string) []string {
	var envelopes []string
	var current []string
	inside := false
	for _, line := range strings.Split(normalizeNewlines(text), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "*** Begin Patch" {
			inside = true
			current = []string{line}
			continue
		}
		if !inside {
			continue
		}
		current = append(current, line)
		if trimmed == "*** End Patch" {
			envelopes = append(envelopes, strings.Join(current, "\n"))
			inside = false
		}
	}
	return envelopes
}

func sectionPath(raw string) string {
	_, path, _ := strings.Cut(raw, ":")
	return strings.TrimSpace(path)
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
