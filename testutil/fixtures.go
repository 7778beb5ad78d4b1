package testutil

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// FixtureStep describes one agent step row to insert into a fixture database.
type FixtureStep struct {
	StepType string
	Content  string
	Metadata map[string]interface{}
}

// CreateSQLiteFixture creates a SQLite database fixture with the agent schema
// and sample data. Returns the session ID used for the sample rows.
func CreateSQLiteFixture(t *testing.T, dbPath string) string {
	t.Helper()
	db := openFixtureDB(t, dbPath)
	defer func() { _ = db.Close() }()

	sessionID := "session-1"
	insertSession(t, db, sessionID, "Test Session", "/tmp/workspace")
	messageID := insertMessage(t, db, sessionID, "assistant")

	iter := 0
	steps := []FixtureStep{
		{StepType: "thought", Content: "I should read main.go first", Metadata: map[string]interface{}{"iteration": iter}},
		{StepType: "action", Content: `{"tool": "shell", "command": "cat main.go"}`, Metadata: map[string]interface{}{"iteration": iter}},
		{StepType: "observation", Content: "[pty_id=1 status=exited exit_code=0]\npackage main\n", Metadata: map[string]interface{}{"tool": "shell", "iteration": iter}},
		{StepType: "answer", Content: `{"final_answer": "The program prints hello."}`, Metadata: map[string]interface{}{}},
	}
	InsertSteps(t, db, messageID, steps)
	return sessionID
}

// CreateAgentDatabase creates an empty database with the agent schema at dbPath.
func CreateAgentDatabase(t *testing.T, dbPath string) {
	t.Helper()
	db := openFixtureDB(t, dbPath)
	_ = db.Close()
}

// CreateSessionFixture inserts a session with a single message and the given
// steps, returning the message ID.
func CreateSessionFixture(t *testing.T, dbPath, sessionID, workPath string, steps []FixtureStep) int64 {
	t.Helper()
	db := openFixtureDB(t, dbPath)
	defer func() { _ = db.Close() }()

	insertSession(t, db, sessionID, "Fixture Session", workPath)
	messageID := insertMessage(t, db, sessionID, "assistant")
	InsertSteps(t, db, messageID, steps)
	return messageID
}

// InsertPendingPermission inserts a pending tool permission request.
func InsertPendingPermission(t *testing.T, dbPath, sessionID, path, reason string) {
	t.Helper()
	db := openFixtureDB(t, dbPath)
	defer func() { _ = db.Close() }()

	insertSQL := `INSERT INTO tool_permission_requests (session_id, path, reason, status, created_at)
		VALUES (?, ?, ?, 'pending', datetime('now'))`
	if _, err := db.Exec(insertSQL, sessionID, path, reason); err != nil {
		t.Fatalf("Failed to insert permission request: %v", err)
	}
}

// InsertSteps appends steps to a message, numbering sequences from the
// current maximum.
func InsertSteps(t *testing.T, db *sql.DB, messageID int64, steps []FixtureStep) {
	t.Helper()
	var next int
	row := db.QueryRow("SELECT COALESCE(MAX(sequence), -1) + 1 FROM agent_steps WHERE message_id = ?", messageID)
	if err := row.Scan(&next); err != nil {
		t.Fatalf("Failed to read max sequence: %v", err)
	}

	insertSQL := `INSERT INTO agent_steps (message_id, step_type, content, metadata, sequence, timestamp)
		VALUES (?, ?, ?, ?, ?, datetime('now'))`
	for i, step := range steps {
		metadata := step.Metadata
		if metadata == nil {
			metadata = map[string]interface{}{}
		}
		metaJSON, err := json.Marshal(metadata)
		if err != nil {
			t.Fatalf("Failed to marshal step metadata: %v", err)
		}
		if _, err := db.Exec(insertSQL, messageID, step.StepType, step.Content, string(metaJSON), next+i); err != nil {
			t.Fatalf("Failed to insert step: %v", err)
		}
	}
}

func openFixtureDB(t *testing.T, dbPath string) *sql.DB {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id TEXT PRIMARY KEY,
			title TEXT,
			work_path TEXT,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT,
			created_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS agent_steps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message_id INTEGER NOT NULL,
			step_type TEXT NOT NULL,
			content TEXT,
			metadata TEXT,
			sequence INTEGER NOT NULL,
			timestamp TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS tool_permission_requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			path TEXT,
			reason TEXT,
			status TEXT NOT NULL,
			created_at TEXT
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			t.Fatalf("Failed to create schema: %v", err)
		}
	}
	return db
}

func insertSession(t *testing.T, db *sql.DB, sessionID, title, workPath string) {
	t.Helper()
	insertSQL := `INSERT INTO chat_sessions (id, title, work_path, created_at, updated_at)
		VALUES (?, ?, ?, datetime('now'), datetime('now'))`
	if _, err := db.Exec(insertSQL, sessionID, title, workPath); err != nil {
		t.Fatalf("Failed to insert session: %v", err)
	}
}

func insertMessage(t *testing.T, db *sql.DB, sessionID, role string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO chat_messages (session_id, role, content, created_at)
		VALUES (?, ?, '', datetime('now'))`, sessionID, role)
	if err != nil {
		t.Fatalf("Failed to insert message: %v", err)
	}
	messageID, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get message ID: %v", err)
	}
	return messageID
}
