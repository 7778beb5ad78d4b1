package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iksnae/agent-transcript/testutil"
)

func TestExportCommand(t *testing.T) {
	path, sessionID := fixtureDB(t)
	outDir := testutil.CreateTempDir(t)

	err := runCommand(t, "--db", path, "export", "--format", "json", "--output", outDir, "--session", "")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}

	outPath := filepath.Join(outDir, "transcript_"+sessionID+".json")
	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("exported file is empty")
	}
}

func TestExportCommandSingleSession(t *testing.T) {
	path, sessionID := fixtureDB(t)
	outDir := testutil.CreateTempDir(t)

	err := runCommand(t, "--db", path, "export",
		"--format", "md", "--output", outDir, "--session", sessionID)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(outDir, "transcript_"+sessionID+".md")); err != nil {
		t.Errorf("exported markdown missing: %v", err)
	}
}

func TestExportCommandInvalidFormat(t *testing.T) {
	path, _ := fixtureDB(t)
	outDir := testutil.CreateTempDir(t)

	err := runCommand(t, "--db", path, "export", "--format", "invalid", "--output", outDir)
	if err == nil {
		t.Error("export with invalid format error = nil, want error")
	}
}

func TestExportCommandUnknownSession(t *testing.T) {
	path, _ := fixtureDB(t)
	outDir := testutil.CreateTempDir(t)

	err := runCommand(t, "--db", path, "export",
		"--format", "json", "--output", outDir, "--session", "no-such-session")
	if err == nil {
		t.Error("export of unknown session error = nil, want error")
	}
}

func TestExportCommandAllFormats(t *testing.T) {
	path, sessionID := fixtureDB(t)

	for _, tt := range []struct {
		format string
		ext    string
	}{
		{"jsonl", "jsonl"},
		{"yaml", "yaml"},
		{"markdown", "md"},
	} {
		t.Run(tt.format, func(t *testing.T) {
			outDir := testutil.CreateTempDir(t)
			err := runCommand(t, "--db", path, "export", "--format", tt.format, "--output", outDir, "--session", "")
			if err != nil {
				t.Fatalf("export %s error = %v", tt.format, err)
			}
			if _, err := os.Stat(filepath.Join(outDir, "transcript_"+sessionID+"."+tt.ext)); err != nil {
				t.Errorf("exported %s file missing: %v", tt.format, err)
			}
		})
	}
}
