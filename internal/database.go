package internal

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// OpenDatabase opens the agent backend's SQLite database in read-only mode
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: fmt.Errorf("ping failed: %w", err)}
	}

	return db, nil
}

// requiredTables is the subset of the backend schema this tool reads.
var requiredTables = []string{"chat_sessions", "chat_messages", "agent_steps", "tool_permission_requests"}

// VerifySchema checks that the database carries the agent backend's tables
func VerifySchema(db *sql.DB) error {
	for _, table := range requiredTables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err == sql.ErrNoRows {
			return fmt.Errorf("missing table %q: not an agent database", table)
		}
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}
	}
	return nil
}
