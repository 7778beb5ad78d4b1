package internal

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffLine is one classified line of a computed diff.
type DiffLine struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	OldLine int    `json:"old_line,omitempty"`
	NewLine int    `json:"new_line,omitempty"`
}

const (
	DiffContext = "context"
	DiffAdded   = "added"
	DiffRemoved = "removed"
)

// ComputeDiffLines diffs two texts line-wise and classifies each line, for
// rendering what a revert changed.
func ComputeDiffLines(before, after string) []DiffLine {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []DiffLine
	oldLine, newLine := 1, 1
	for _, diff := range diffs {
		chunk := strings.Split(diff.Text, "\n")
		if len(chunk) > 0 && chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		for _, text := range chunk {
			switch diff.Type {
			case diffmatchpatch.DiffEqual:
				lines = append(lines, DiffLine{Type: DiffContext, Text: text, OldLine: oldLine, NewLine: newLine})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				lines = append(lines, DiffLine{Type: DiffRemoved, Text: text, OldLine: oldLine})
				oldLine++
			case diffmatchpatch.DiffInsert:
				lines = append(lines, DiffLine{Type: DiffAdded, Text: text, NewLine: newLine})
				newLine++
			}
		}
	}
	return lines
}

// LooksLikeDiff sniffs whether observation text has unified-diff shape: a
// git header, or file headers plus a hunk marker.
func LooksLikeDiff(text string) bool {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "diff --git ") {
		return true
	}
	hasOld := false
	hasNew := false
	hasHunk := false
	for _, line := range strings.Split(trimmed, "\n") {
		switch {
		case strings.HasPrefix(line, "--- "):
			hasOld = true
		case strings.HasPrefix(line, "+++ "):
			hasNew = true
		case strings.HasPrefix(line, "@@"):
			hasHunk = true
		case strings.HasPrefix(line, "diff --git "):
			return true
		}
	}
	return hasOld && hasNew && hasHunk
}
