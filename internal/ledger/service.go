package ledger

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Service provides durable storage for turns, audits, and approvals.
type Service struct {
	db *sql.DB
}

// NewService opens the ledger database at dbPath and applies the schema.
func NewService(dbPath string) (*Service, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger db: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Service{db: db}, nil
}

// Close closes the underlying database.
func (s *Service) Close() error {
	return s.db.Close()
}

// InsertTurn records the start of a user turn.
func (s *Service) InsertTurn(turn *TurnRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO turns (turn_id, trace_id, session_key, command_in, status)
		VALUES (?, ?, ?, ?, ?)`,
		turn.TurnID, turn.TraceID, turn.SessionKey, turn.CommandIn, TurnStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

// CompleteTurn records the final answer and status for a turn.
func (s *Service) CompleteTurn(turnID, answer, status string) error {
	_, err := s.db.Exec(`
		UPDATE turns SET answer_out = ?, status = ?, completed_at = CURRENT_TIMESTAMP
		WHERE turn_id = ?`,
		answer, status, turnID,
	)
	if err != nil {
		return fmt.Errorf("complete turn: %w", err)
	}
	return nil
}

// GetTurn returns a turn by its ID.
func (s *Service) GetTurn(turnID string) (*TurnRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, turn_id, trace_id, session_key, command_in,
		       COALESCE(answer_out, ''), status, created_at, completed_at
		FROM turns WHERE turn_id = ?`, turnID)

	var t TurnRecord
	var completed sql.NullTime
	err := row.Scan(&t.ID, &t.TurnID, &t.TraceID, &t.SessionKey, &t.CommandIn,
		&t.AnswerOut, &t.Status, &t.CreatedAt, &completed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get turn: %w", err)
	}
	if completed.Valid {
		t.CompletedAt = &completed.Time
	}
	return &t, nil
}

// AppendAudit records one tool attempt or reflection note.
func (s *Service) AppendAudit(rec *AuditRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO audit_log (trace_id, turn_id, tool, args, ok, result, error, reflection)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TraceID, rec.TurnID, rec.Tool, rec.Args, rec.OK, rec.Result, rec.Error, rec.Reflection,
	)
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// AuditByTrace returns the ordered audit entries for a trace.
func (s *Service) AuditByTrace(traceID string) ([]AuditRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, trace_id, COALESCE(turn_id, ''), COALESCE(tool, ''), COALESCE(args, ''),
		       ok, COALESCE(result, ''), COALESCE(error, ''), COALESCE(reflection, ''), created_at
		FROM audit_log WHERE trace_id = ? ORDER BY id`, traceID)
	if err != nil {
		return nil, fmt.Errorf("audit by trace: %w", err)
	}
	defer rows.Close()

	var records []AuditRecord
	for rows.Next() {
		var r AuditRecord
		if err := rows.Scan(&r.ID, &r.TraceID, &r.TurnID, &r.Tool, &r.Args,
			&r.OK, &r.Result, &r.Error, &r.Reflection, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// InsertApprovalRequest records a new pending approval.
func (s *Service) InsertApprovalRequest(approvalID, traceID, sessionKey, tool, argsJSON string) error {
	_, err := s.db.Exec(`
		INSERT INTO approvals (approval_id, trace_id, session_key, tool, args, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		approvalID, traceID, sessionKey, tool, argsJSON, ApprovalStatusPending,
	)
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

// UpdateApprovalStatus marks an approval as resolved with the given status.
func (s *Service) UpdateApprovalStatus(approvalID, status string) error {
	_, err := s.db.Exec(`
		UPDATE approvals SET status = ?, resolved_at = CURRENT_TIMESTAMP
		WHERE approval_id = ?`,
		status, approvalID,
	)
	if err != nil {
		return fmt.Errorf("update approval: %w", err)
	}
	return nil
}

// GetPendingApprovals returns all approvals still marked pending.
func (s *Service) GetPendingApprovals() ([]ApprovalRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, approval_id, COALESCE(trace_id, ''), session_key, tool,
		       COALESCE(args, ''), status, created_at, resolved_at
		FROM approvals WHERE status = ? ORDER BY id`, ApprovalStatusPending)
	if err != nil {
		return nil, fmt.Errorf("pending approvals: %w", err)
	}
	defer rows.Close()

	var records []ApprovalRecord
	for rows.Next() {
		var r ApprovalRecord
		var resolved sql.NullTime
		if err := rows.Scan(&r.ID, &r.ApprovalID, &r.TraceID, &r.SessionKey, &r.Tool,
			&r.Args, &r.Status, &r.CreatedAt, &resolved); err != nil {
			return nil, fmt.Errorf("scan approval row: %w", err)
		}
		if resolved.Valid {
			r.ResolvedAt = &resolved.Time
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// RecentTurns returns up to limit turns for a session, newest first.
func (s *Service) RecentTurns(sessionKey string, limit int) ([]TurnRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, turn_id, trace_id, session_key, command_in,
		       COALESCE(answer_out, ''), status, created_at, completed_at
		FROM turns WHERE session_key = ? ORDER BY id DESC LIMIT ?`, sessionKey, limit)
	if err != nil {
		return nil, fmt.Errorf("recent turns: %w", err)
	}
	defer rows.Close()

	var records []TurnRecord
	for rows.Next() {
		var t TurnRecord
		var completed sql.NullTime
		if err := rows.Scan(&t.ID, &t.TurnID, &t.TraceID, &t.SessionKey, &t.CommandIn,
			&t.AnswerOut, &t.Status, &t.CreatedAt, &completed); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		if completed.Valid {
			t.CompletedAt = &completed.Time
		}
		records = append(records, t)
	}
	return records, rows.Err()
}
