// Package agent implements the turn-based orchestration state machine.
package agent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Approval is the tri-state human decision for a destructive plan.
type Approval int

const (
	// ApprovalUndetermined means no APPROVE/DENY token has been read yet.
	ApprovalUndetermined Approval = iota
	ApprovalGranted
	ApprovalDenied
)

// Plan is the single tool invocation scheduled for the current command.
// A plan is immutable once created for a turn.
type Plan struct {
	Tool string
	Args map[string]any
	// Recovery marks plans synthesized by the recovery engine rather than
	// planned from user input.
	Recovery bool
}

// AuditEntry is one tool attempt or reflection note. The audit sequence is
// append-only and ordered; it is never mutated or reordered.
type AuditEntry struct {
	Tool       string
	Args       map[string]any
	OK         bool
	Result     any
	Error      string
	Reflection string
}

// State is the per-session orchestration record threaded through the state
// machine for one turn and carried across turns for the approval protocol.
// It is exclusively owned by the controller while a turn is running.
type State struct {
	SessionKey string
	TraceID    string
	TurnID     string

	UserInput string
	Plan      *Plan

	// Result of the most recent tool attempt.
	LastTool   string
	LastArgs   map[string]any
	LastResult any
	LastErr    string

	Retries int

	NeedsApproval bool
	Approval      Approval
	ApprovalID    string

	FinalAnswer string
	Audit       []AuditEntry
}

// AwaitingApproval reports whether the session is suspended on a pending
// destructive plan. This is the only state that legitimately ends a turn
// without a tool call and without an error.
func (s *State) AwaitingApproval() bool {
	return s.Plan != nil && s.NeedsApproval && s.Approval == ApprovalUndetermined
}

// setFinalAnswer sets the terminal answer for the turn. The first writer
// wins; later steps may not override it.
func (s *State) setFinalAnswer(msg string) {
	if s.FinalAnswer == "" {
		s.FinalAnswer = msg
	}
}

// beginTurn clears the per-turn fields while keeping command state intact.
func (s *State) beginTurn(input string) {
	s.UserInput = input
	s.FinalAnswer = ""
	s.LastErr = ""
	s.LastResult = nil
}

// beginCommand discards the previous plan, approval state, retry count, and
// audit trail. Called for every input that is not an approval token.
func (s *State) beginCommand(input, traceID string) {
	s.beginTurn(input)
	s.Plan = nil
	s.LastTool = ""
	s.LastArgs = nil
	s.Retries = 0
	s.NeedsApproval = false
	s.Approval = ApprovalUndetermined
	s.ApprovalID = ""
	s.Audit = nil
	s.TraceID = traceID
}

// appendAudit appends one entry to the audit trail.
func (s *State) appendAudit(e AuditEntry) {
	s.Audit = append(s.Audit, e)
}

// FormatAudit renders the audit trail for inclusion in a final answer.
func FormatAudit(audit []AuditEntry) string {
	items := make([]map[string]any, 0, len(audit))
	for _, e := range audit {
		if e.Reflection != "" {
			items = append(items, map[string]any{"reflection": e.Reflection})
			continue
		}
		item := map[string]any{"tool": e.Tool, "args": e.Args, "ok": e.OK}
		if e.OK {
			item["result"] = e.Result
		} else {
			item["error"] = e.Error
		}
		items = append(items, item)
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// formatValue renders a tool result for user-facing output.
func formatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return "null"
	case string:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}

// formatArgs renders arguments as sorted key=value pairs.
func formatArgs(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, formatValue(args[k])))
	}
	return strings.Join(parts, ", ")
}
