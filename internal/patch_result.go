package internal

import "encoding/json"

// FileChange represents the per-file line counts reported by one
// apply-patch call.
type FileChange struct {
	Path    string `json:"path"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
}

// PatchResult represents the structured payload an apply-patch tool reports
// after attempting to modify files.
type PatchResult struct {
	OK          bool         `json:"ok"`
	Summary     []FileChange `json:"summary,omitempty"`
	Diff        string       `json:"diff,omitempty"`
	RevertPatch string       `json:"revert_patch,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// ParsePatchResult attempts to read an observation body as an apply-patch
// result. The payload is valid only when it is a JSON object carrying a
// boolean "ok" field; anything else reports false so the caller falls back
// to plain-text rendering. A shape mismatch is not an error state.
func ParsePatchResult(text string) (*PatchResult, bool) {
	var shape map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &shape); err != nil {
		return nil, false
	}
	rawOK, found := shape["ok"]
	if !found {
		return nil, false
	}
	var ok bool
	if err := json.Unmarshal(rawOK, &ok); err != nil {
		return nil, false
	}

	var result PatchResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, false
	}
	return &result, true
}
