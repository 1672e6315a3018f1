package ledger

import (
	"path/filepath"
	"testing"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestTurnLifecycle(t *testing.T) {
	svc := newTestService(t)

	turn := &TurnRecord{
		TurnID:     "turn-1",
		TraceID:    "trace-1",
		SessionKey: "cli:default",
		CommandIn:  "read /docs/readme.md",
	}
	if err := svc.InsertTurn(turn); err != nil {
		t.Fatalf("insert turn: %v", err)
	}
	if err := svc.CompleteTurn("turn-1", "OK: Welcome!", TurnStatusCompleted); err != nil {
		t.Fatalf("complete turn: %v", err)
	}

	got, err := svc.GetTurn("turn-1")
	if err != nil {
		t.Fatalf("get turn: %v", err)
	}
	if got == nil {
		t.Fatal("turn not found")
	}
	if got.Status != TurnStatusCompleted {
		t.Fatalf("status = %s", got.Status)
	}
	if got.AnswerOut != "OK: Welcome!" {
		t.Fatalf("answer = %q", got.AnswerOut)
	}
	if got.CompletedAt == nil {
		t.Fatal("completed_at not set")
	}
}

func TestAuditOrdering(t *testing.T) {
	svc := newTestService(t)

	entries := []*AuditRecord{
		{TraceID: "trace-1", Tool: "read_file", Error: "file not found: /x"},
		{TraceID: "trace-1", Reflection: "read_file failed; trying search_files for 'x'"},
		{TraceID: "trace-1", Tool: "search_files", OK: true, Result: "[]"},
	}
	for _, e := range entries {
		if err := svc.AppendAudit(e); err != nil {
			t.Fatalf("append audit: %v", err)
		}
	}

	got, err := svc.AuditByTrace("trace-1")
	if err != nil {
		t.Fatalf("audit by trace: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].Tool != "read_file" || got[1].Reflection == "" || got[2].Tool != "search_files" {
		t.Fatalf("entries out of order: %+v", got)
	}
}

func TestApprovalLifecycle(t *testing.T) {
	svc := newTestService(t)

	if err := svc.InsertApprovalRequest("appr-1", "trace-1", "cli:default", "delete_file", `{"path":"/configs/app.yaml"}`); err != nil {
		t.Fatalf("insert approval: %v", err)
	}

	pending, err := svc.GetPendingApprovals()
	if err != nil {
		t.Fatalf("pending approvals: %v", err)
	}
	if len(pending) != 1 || pending[0].ApprovalID != "appr-1" {
		t.Fatalf("unexpected pending set: %+v", pending)
	}

	if err := svc.UpdateApprovalStatus("appr-1", ApprovalStatusApproved); err != nil {
		t.Fatalf("update approval: %v", err)
	}

	pending, err = svc.GetPendingApprovals()
	if err != nil {
		t.Fatalf("pending approvals: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("approval still pending: %+v", pending)
	}
}
