package export

import (
	"bytes"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestYAMLExport(t *testing.T) {
	doc := BuildDocument(nil, sampleView())

	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(doc, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded Document
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.SessionID != doc.SessionID {
		t.Errorf("SessionID = %v, want %v", decoded.SessionID, doc.SessionID)
	}
	if len(decoded.Rounds) != 1 || len(decoded.Rounds[0].Steps) != 2 {
		t.Errorf("Rounds = %+v, want 1 round of 2 steps", decoded.Rounds)
	}
}
