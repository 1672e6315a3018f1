// Package ledger persists turns, tool audit entries, and approval requests.
package ledger

import (
	"time"
)

// TurnRecord tracks one processed user turn.
type TurnRecord struct {
	ID          int64      `json:"id"`
	TurnID      string     `json:"turn_id"`
	TraceID     string     `json:"trace_id"`
	SessionKey  string     `json:"session_key"`
	CommandIn   string     `json:"command_in"`
	AnswerOut   string     `json:"answer_out,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Turn status constants.
const (
	TurnStatusProcessing = "processing"
	TurnStatusCompleted  = "completed"
	TurnStatusSuspended  = "suspended" // turn ended awaiting human approval
)

// AuditRecord is one tool attempt or reflection note within a command.
type AuditRecord struct {
	ID         int64     `json:"id"`
	TraceID    string    `json:"trace_id"`
	TurnID     string    `json:"turn_id,omitempty"`
	Tool       string    `json:"tool,omitempty"`
	Args       string    `json:"args,omitempty"` // JSON blob
	OK         bool      `json:"ok"`
	Result     string    `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
	Reflection string    `json:"reflection,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ApprovalRecord tracks a destructive-action approval request.
type ApprovalRecord struct {
	ID         int64      `json:"id"`
	ApprovalID string     `json:"approval_id"`
	TraceID    string     `json:"trace_id"`
	SessionKey string     `json:"session_key"`
	Tool       string     `json:"tool"`
	Args       string     `json:"args,omitempty"` // JSON blob
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// Approval status constants.
const (
	ApprovalStatusPending    = "pending"
	ApprovalStatusApproved   = "approved"
	ApprovalStatusDenied     = "denied"
	ApprovalStatusSuperseded = "superseded" // a new command discarded the pending plan
	ApprovalStatusTimeout    = "timeout"    // leftover from a previous process
)

// Schema is the ledger database schema.
const Schema = `
CREATE TABLE IF NOT EXISTS turns (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	turn_id TEXT UNIQUE NOT NULL,
	trace_id TEXT,
	session_key TEXT NOT NULL,
	command_in TEXT,
	answer_out TEXT,
	status TEXT NOT NULL DEFAULT 'processing',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_turns_trace ON turns(trace_id);
CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_key);

CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trace_id TEXT,
	turn_id TEXT,
	tool TEXT,
	args TEXT,
	ok BOOLEAN NOT NULL DEFAULT 0,
	result TEXT,
	error TEXT,
	reflection TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_audit_trace ON audit_log(trace_id);

CREATE TABLE IF NOT EXISTS approvals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	approval_id TEXT UNIQUE NOT NULL,
	trace_id TEXT,
	session_key TEXT NOT NULL,
	tool TEXT NOT NULL,
	args TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	resolved_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_approvals_status ON approvals(status);
`
