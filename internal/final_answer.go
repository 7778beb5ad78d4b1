package internal

import (
	"encoding/json"
	"strings"
)

// finalAnswerKeys is scanned in priority order; the first non-empty string
// value wins.
var finalAnswerKeys = []string{"final_answer", "answer", "final", "output", "response", "content"}

// ExtractFinalAnswer pulls the displayable answer out of a final step whose
// content is a JSON envelope. The text must be a complete JSON object; on a
// match the extracted string fully replaces the displayed content. False
// means the content should be rendered as-is.
func ExtractFinalAnswer(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return "", false
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &envelope); err != nil {
		return "", false
	}

	for _, key := range finalAnswerKeys {
		if value, ok := envelope[key].(string); ok && value != "" {
			return value, true
		}
	}
	return "", false
}
