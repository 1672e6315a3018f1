package approval

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opsgate/opsgate/internal/ledger"
)

type fakeNotifier struct {
	requests  []*Request
	decisions []bool
}

func (f *fakeNotifier) NotifyRequest(_ context.Context, req *Request) error {
	f.requests = append(f.requests, req)
	return nil
}

func (f *fakeNotifier) NotifyDecision(_ context.Context, _ *Request, granted bool) error {
	f.decisions = append(f.decisions, granted)
	return nil
}

func TestAskAndResolve(t *testing.T) {
	fn := &fakeNotifier{}
	c := NewCoordinator(nil, fn)

	prompt := c.Ask(context.Background(), &Request{
		Tool:       "delete_file",
		Arguments:  map[string]any{"path": "/configs/app.yaml"},
		SessionKey: "cli:default",
		TraceID:    "trace-1",
	})
	if !strings.Contains(prompt, "delete_file") || !strings.Contains(prompt, "APPROVE or DENY") {
		t.Fatalf("unexpected prompt: %q", prompt)
	}
	if len(fn.requests) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(fn.requests))
	}

	req, ok := c.Pending("cli:default")
	if !ok || req.Tool != "delete_file" {
		t.Fatalf("pending request missing: %+v", req)
	}

	if err := c.Resolve(context.Background(), "cli:default", true); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if _, ok := c.Pending("cli:default"); ok {
		t.Fatal("request still pending after resolve")
	}
	if len(fn.decisions) != 1 || !fn.decisions[0] {
		t.Fatalf("decision notification wrong: %v", fn.decisions)
	}
}

func TestResolveWithoutPending(t *testing.T) {
	c := NewCoordinator(nil, nil)
	if err := c.Resolve(context.Background(), "cli:default", true); err == nil {
		t.Fatal("expected error for session without pending approval")
	}
}

func TestAbandonMarksSuperseded(t *testing.T) {
	lg, err := ledger.NewService(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	defer lg.Close()

	c := NewCoordinator(lg, nil)
	c.Ask(context.Background(), &Request{
		Tool:       "update_record",
		Arguments:  map[string]any{"key": "user:123"},
		SessionKey: "cli:default",
	})

	c.Abandon("cli:default")
	if _, ok := c.Pending("cli:default"); ok {
		t.Fatal("request still pending after abandon")
	}

	pending, err := lg.GetPendingApprovals()
	if err != nil {
		t.Fatalf("pending approvals: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("ledger row still pending: %+v", pending)
	}
}

func TestStaleApprovalsTimedOutOnStartup(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	lg, err := ledger.NewService(dbPath)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	defer lg.Close()

	if err := lg.InsertApprovalRequest("appr-stale", "trace-0", "cli:default", "delete_file", "{}"); err != nil {
		t.Fatalf("insert approval: %v", err)
	}

	NewCoordinator(lg, nil)

	pending, err := lg.GetPendingApprovals()
	if err != nil {
		t.Fatalf("pending approvals: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("stale approval not timed out: %+v", pending)
	}
}
