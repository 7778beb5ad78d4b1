package internal

import (
	"encoding/json"
	"strings"
)

// ParseAstPayload attempts to read an observation body as a structured AST
// tool payload. The whole text is tried first; when the tool wrapped the
// JSON in surrounding prose, the substring between the first '{' and the
// last '}' is retried. Only a JSON object qualifies.
func ParseAstPayload(text string) (map[string]interface{}, bool) {
	if payload, ok := decodeJSONObject(text); ok {
		return payload, true
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, false
	}
	return decodeJSONObject(text[start : end+1])
}

func decodeJSONObject(text string) (map[string]interface{}, bool) {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, false
	}
	if payload == nil {
		return nil, false
	}
	return payload, true
}
