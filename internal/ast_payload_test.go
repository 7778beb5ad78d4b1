package internal

import (
	"testing"
)

func TestParseAstPayload(t *testing.T) {
	payload, ok := ParseAstPayload(`{"kind": "module", "children": [{"kind": "func", "name": "main"}]}`)
	if !ok {
		t.Fatal("ParseAstPayload() ok = false, want true")
	}
	if payload["kind"] != "module" {
		t.Errorf("kind = %v, want module", payload["kind"])
	}
}

func TestParseAstPayloadEmbedded(t *testing.T) {
	// The tool sometimes wraps the JSON in prose; the object substring
	// between the first '{' and last '}' is retried.
	text := "Parsed 2 symbols:\n{\"symbols\": [\"main\", \"run\"]}\n"
	payload, ok := ParseAstPayload(text)
	if !ok {
		t.Fatal("ParseAstPayload() ok = false, want true")
	}
	if _, found := payload["symbols"]; !found {
		t.Errorf("payload = %v, want symbols key", payload)
	}
}

func TestParseAstPayloadRejects(t *testing.T) {
	tests := []string{
		"no braces at all",
		"[1, 2, 3]",
		"prefix { not json } suffix",
		"",
		"null",
	}
	for _, text := range tests {
		if payload, ok := ParseAstPayload(text); ok {
			t.Errorf("ParseAstPayload(%q) = %v, want rejection", text, payload)
		}
	}
}
