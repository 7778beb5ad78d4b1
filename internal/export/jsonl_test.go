package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/agent-transcript/internal"
)

func TestJSONLExport(t *testing.T) {
	doc := BuildDocument(nil, sampleView())

	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(doc, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	for i, line := range lines {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		if obj["iteration"] != float64(0) {
			t.Errorf("line %d iteration = %v, want 0", i, obj["iteration"])
		}
	}

	var first map[string]interface{}
	_ = json.Unmarshal([]byte(lines[0]), &first)
	if first["type"] != string(internal.StepThought) {
		t.Errorf("first type = %v, want thought", first["type"])
	}

	var second map[string]interface{}
	_ = json.Unmarshal([]byte(lines[1]), &second)
	if second["tool"] != "shell" {
		t.Errorf("second tool = %v, want shell", second["tool"])
	}
}
