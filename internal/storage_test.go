package internal

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/iksnae/agent-transcript/testutil"
)

func fixtureDatabase(t *testing.T) (string, string) {
	t.Helper()
	dir := testutil.CreateTempDir(t)
	dbPath := filepath.Join(dir, "chat.db")
	sessionID := testutil.CreateSQLiteFixture(t, dbPath)
	return dbPath, sessionID
}

func TestListSessions(t *testing.T) {
	dbPath, sessionID := fixtureDatabase(t)
	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	defer db.Close()

	sessions, err := ListSessions(db)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("len(sessions) = %d, want 1", len(sessions))
	}
	if sessions[0].ID != sessionID {
		t.Errorf("ID = %v, want %v", sessions[0].ID, sessionID)
	}
	if sessions[0].Title != "Test Session" {
		t.Errorf("Title = %v, want Test Session", sessions[0].Title)
	}
	if sessions[0].MessageCount != 1 {
		t.Errorf("MessageCount = %d, want 1", sessions[0].MessageCount)
	}
}

func TestGetSession(t *testing.T) {
	dbPath, sessionID := fixtureDatabase(t)
	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	defer db.Close()

	info, err := GetSession(db, sessionID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if info.WorkPath != "/tmp/workspace" {
		t.Errorf("WorkPath = %v, want /tmp/workspace", info.WorkPath)
	}

	_, err = GetSession(db, "no-such-session")
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("GetSession(missing) error = %v, want StorageError", err)
	}
}

func TestLoadSteps(t *testing.T) {
	dbPath, sessionID := fixtureDatabase(t)
	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	defer db.Close()

	steps, err := LoadSteps(db, sessionID)
	if err != nil {
		t.Fatalf("LoadSteps() error = %v", err)
	}
	if len(steps) != 4 {
		t.Fatalf("len(steps) = %d, want 4", len(steps))
	}

	wantTypes := []StepType{StepThought, StepAction, StepObservation, StepAnswer}
	for i, want := range wantTypes {
		if steps[i].Type != want {
			t.Errorf("steps[%d].Type = %v, want %v", i, steps[i].Type, want)
		}
	}
	for i := 1; i < len(steps); i++ {
		if steps[i].Sequence <= steps[i-1].Sequence {
			t.Errorf("steps out of order at %d: %d then %d", i, steps[i-1].Sequence, steps[i].Sequence)
		}
	}
	if steps[2].ToolName() != "shell" {
		t.Errorf("steps[2].ToolName() = %v, want shell", steps[2].ToolName())
	}

	if steps, err := LoadSteps(db, "no-such-session"); err != nil || len(steps) != 0 {
		t.Errorf("LoadSteps(missing) = (%v, %v), want empty without error", steps, err)
	}
}

func TestLoadPendingPermissions(t *testing.T) {
	dbPath, sessionID := fixtureDatabase(t)
	testutil.InsertPendingPermission(t, dbPath, sessionID, "/tmp/workspace/secret.env", "read file")
	testutil.CreateSessionFixture(t, dbPath, "other-session", "/tmp/elsewhere", nil)
	testutil.InsertPendingPermission(t, dbPath, "other-session", "/tmp/elsewhere/run.sh", "execute")

	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	defer db.Close()

	pending, err := LoadPendingPermissions(db, sessionID)
	if err != nil {
		t.Fatalf("LoadPendingPermissions() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("len(pending) = %d, want 1", len(pending))
	}
	if pending[0].Path != "/tmp/workspace/secret.env" {
		t.Errorf("Path = %v, want /tmp/workspace/secret.env", pending[0].Path)
	}
	if pending[0].Reason != "read file" {
		t.Errorf("Reason = %v, want read file", pending[0].Reason)
	}
}

func TestLoadTranscript(t *testing.T) {
	dbPath, sessionID := fixtureDatabase(t)
	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	defer db.Close()

	transcript, err := LoadTranscript(db, sessionID, true)
	if err != nil {
		t.Fatalf("LoadTranscript() error = %v", err)
	}
	if transcript.SessionID != sessionID {
		t.Errorf("SessionID = %v, want %v", transcript.SessionID, sessionID)
	}
	if transcript.WorkPath != "/tmp/workspace" {
		t.Errorf("WorkPath = %v, want /tmp/workspace", transcript.WorkPath)
	}
	if len(transcript.Steps) != 4 {
		t.Errorf("len(Steps) = %d, want 4", len(transcript.Steps))
	}
	if transcript.Streaming {
		t.Error("Streaming = true, want false for a completed transcript")
	}

	if _, err := LoadTranscript(db, "no-such-session", false); err == nil {
		t.Error("LoadTranscript(missing) error = nil, want error")
	}
}

func TestLoadTranscriptCoalesces(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	dbPath := filepath.Join(dir, "chat.db")
	testutil.CreateSessionFixture(t, dbPath, "stream-session", "", []testutil.FixtureStep{
		{StepType: "thought_delta", Content: "first ", Metadata: map[string]interface{}{"stream_key": "sk-1"}},
		{StepType: "thought_delta", Content: "second", Metadata: map[string]interface{}{"stream_key": "sk-1"}},
	})

	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	defer db.Close()

	transcript, err := LoadTranscript(db, "stream-session", true)
	if err != nil {
		t.Fatalf("LoadTranscript() error = %v", err)
	}
	if len(transcript.Steps) != 1 {
		t.Fatalf("len(Steps) = %d, want 1 after coalescing", len(transcript.Steps))
	}
	if transcript.Steps[0].Content != "first second" {
		t.Errorf("Content = %q, want concatenated deltas", transcript.Steps[0].Content)
	}
	if !transcript.Streaming {
		t.Error("Streaming = false, want true for transcript ending in a delta")
	}

	raw, err := LoadTranscript(db, "stream-session", false)
	if err != nil {
		t.Fatalf("LoadTranscript() error = %v", err)
	}
	if len(raw.Steps) != 2 {
		t.Errorf("len(Steps) = %d, want 2 without coalescing", len(raw.Steps))
	}
}
