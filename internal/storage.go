package internal

import (
	"database/sql"
)

// ListSessions returns all chat sessions with message counts, newest first
func ListSessions(db *sql.DB) ([]SessionInfo, error) {
	query := `
		SELECT s.id, s.title, COALESCE(s.work_path, ''),
		       COALESCE(s.created_at, ''), COALESCE(s.updated_at, ''),
		       COUNT(m.id)
		FROM chat_sessions s
		LEFT JOIN chat_messages m ON s.id = m.session_id
		GROUP BY s.id
		ORDER BY s.updated_at DESC`
	rows, err := db.Query(query)
	if err != nil {
		return nil, &StorageError{Op: "query", Path: "chat_sessions", Err: err}
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.Title, &info.WorkPath,
			&info.CreatedAt, &info.UpdatedAt, &info.MessageCount); err != nil {
			return nil, &StorageError{Op: "scan", Path: "chat_sessions", Err: err}
		}
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "query", Path: "chat_sessions", Err: err}
	}

	return sessions, nil
}

// GetSession loads a single session row
func GetSession(db *sql.DB, sessionID string) (*SessionInfo, error) {
	query := `
		SELECT s.id, s.title, COALESCE(s.work_path, ''),
		       COALESCE(s.created_at, ''), COALESCE(s.updated_at, ''),
		       (SELECT COUNT(*) FROM chat_messages m WHERE m.session_id = s.id)
		FROM chat_sessions s WHERE s.id = ?`
	var info SessionInfo
	err := db.QueryRow(query, sessionID).Scan(&info.ID, &info.Title, &info.WorkPath,
		&info.CreatedAt, &info.UpdatedAt, &info.MessageCount)
	if err == sql.ErrNoRows {
		return nil, &StorageError{Op: "query", Path: sessionID, Err: sql.ErrNoRows}
	}
	if err != nil {
		return nil, &StorageError{Op: "query", Path: sessionID, Err: err}
	}
	return &info, nil
}

// LoadSteps loads the ordered step sequence for a session from agent_steps.
// Steps are ordered by owning message then by emission sequence, matching
// arrival order.
func LoadSteps(db *sql.DB, sessionID string) ([]Step, error) {
	query := `
		SELECT s.step_type, s.content, COALESCE(s.metadata, ''),
		       s.sequence, COALESCE(s.timestamp, '')
		FROM agent_steps s
		JOIN chat_messages m ON s.message_id = m.id
		WHERE m.session_id = ?
		ORDER BY s.message_id, s.sequence`
	rows, err := db.Query(query, sessionID)
	if err != nil {
		return nil, &StorageError{Op: "query", Path: "agent_steps", Err: err}
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var stepType, content, metadata, timestamp string
		var sequence int
		if err := rows.Scan(&stepType, &content, &metadata, &sequence, &timestamp); err != nil {
			return nil, &StorageError{Op: "scan", Path: "agent_steps", Err: err}
		}
		step := NewStep(StepType(stepType), content, ParseStepMetadata(metadata))
		step.Sequence = sequence
		step.Timestamp = timestamp
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "query", Path: "agent_steps", Err: err}
	}

	return steps, nil
}

// LoadPendingPermissions returns the session's unresolved tool-permission
// requests, which surface as a banner alongside the transcript. Rows without
// a session are treated as global and included everywhere.
func LoadPendingPermissions(db *sql.DB, sessionID string) ([]PermissionRequest, error) {
	query := `
		SELECT path, COALESCE(reason, '')
		FROM tool_permission_requests
		WHERE status = 'pending' AND (session_id = ? OR session_id IS NULL)
		ORDER BY id`
	rows, err := db.Query(query, sessionID)
	if err != nil {
		return nil, &StorageError{Op: "query", Path: "tool_permission_requests", Err: err}
	}
	defer rows.Close()

	var pending []PermissionRequest
	for rows.Next() {
		var request PermissionRequest
		if err := rows.Scan(&request.Path, &request.Reason); err != nil {
			return nil, &StorageError{Op: "scan", Path: "tool_permission_requests", Err: err}
		}
		pending = append(pending, request)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "query", Path: "tool_permission_requests", Err: err}
	}

	return pending, nil
}

// LoadTranscript assembles the full transcript input for one session:
// ordered steps, the session work path, and any pending permission records.
// Delta steps are coalesced when requested; the processing core itself
// treats them as independent entries.
func LoadTranscript(db *sql.DB, sessionID string, coalesce bool) (*Transcript, error) {
	session, err := GetSession(db, sessionID)
	if err != nil {
		return nil, err
	}

	steps, err := LoadSteps(db, sessionID)
	if err != nil {
		return nil, err
	}

	// A trailing delta means the backend was still mid-stream when it last
	// wrote; the view flags the transcript as incomplete.
	streaming := false
	if n := len(steps); n > 0 {
		_, streaming = deltaTargets[steps[n-1].Type]
	}

	if coalesce {
		steps = NewCoalescer().Coalesce(steps)
	}

	pending, err := LoadPendingPermissions(db, sessionID)
	if err != nil {
		LogWarn("Failed to load pending permissions: %v", err)
		pending = nil
	}

	return &Transcript{
		SessionID: session.ID,
		WorkPath:  session.WorkPath,
		Steps:     steps,
		Pending:   pending,
		Streaming: streaming,
	}, nil
}
