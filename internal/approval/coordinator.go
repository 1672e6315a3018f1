// Package approval tracks human approval requests for destructive tool calls.
package approval

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/opsgate/opsgate/internal/ledger"
)

// Request represents a pending approval for a destructive tool call.
type Request struct {
	ApprovalID string         `json:"approval_id"`
	Tool       string         `json:"tool"`
	Arguments  map[string]any `json:"arguments"`
	SessionKey string         `json:"session_key"`
	TraceID    string         `json:"trace_id"`
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Notifier delivers approval requests and decisions to an external channel.
type Notifier interface {
	NotifyRequest(ctx context.Context, req *Request) error
	NotifyDecision(ctx context.Context, req *Request, granted bool) error
}

// Coordinator handles the approval lifecycle: ask, resolve, abandon.
// One request may be pending per session at a time; the decision arrives
// on a later turn as an APPROVE/DENY token.
type Coordinator struct {
	mu       sync.Mutex
	pending  map[string]*Request // keyed by session key
	ledger   *ledger.Service
	notifier Notifier
}

// NewCoordinator creates an approval coordinator. Ledger and notifier may be
// nil. Stale DB-pending approvals from a previous process are marked timeout.
func NewCoordinator(lg *ledger.Service, notifier Notifier) *Coordinator {
	c := &Coordinator{
		pending:  make(map[string]*Request),
		ledger:   lg,
		notifier: notifier,
	}
	c.cleanupStale()
	return c
}

// cleanupStale marks any DB-pending approvals as timeout on startup.
// These are leftovers from a previous process that never resolved them.
func (c *Coordinator) cleanupStale() {
	if c.ledger == nil {
		return
	}
	pending, err := c.ledger.GetPendingApprovals()
	if err != nil {
		return
	}
	for _, r := range pending {
		_ = c.ledger.UpdateApprovalStatus(r.ApprovalID, ledger.ApprovalStatusTimeout)
	}
}

// Ask registers a new pending approval for the session and returns the
// prompt to show the human.
func (c *Coordinator) Ask(ctx context.Context, req *Request) string {
	req.ApprovalID = newApprovalID()
	req.Status = ledger.ApprovalStatusPending
	req.CreatedAt = time.Now()

	c.mu.Lock()
	c.pending[req.SessionKey] = req
	c.mu.Unlock()

	argsJSON := marshalArgs(req.Arguments)
	if c.ledger != nil {
		_ = c.ledger.InsertApprovalRequest(req.ApprovalID, req.TraceID, req.SessionKey, req.Tool, argsJSON)
	}
	if c.notifier != nil {
		if err := c.notifier.NotifyRequest(ctx, req); err != nil {
			slog.Warn("Approval notification failed", "approval_id", req.ApprovalID, "error", err)
		}
	}

	return fmt.Sprintf("Approval required before running %s with args=%s.\nType APPROVE or DENY.", req.Tool, argsJSON)
}

// Pending returns the pending request for a session, if any.
func (c *Coordinator) Pending(sessionKey string) (*Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	req, ok := c.pending[sessionKey]
	return req, ok
}

// Resolve records a human decision for the session's pending request.
func (c *Coordinator) Resolve(ctx context.Context, sessionKey string, granted bool) error {
	c.mu.Lock()
	req, ok := c.pending[sessionKey]
	delete(c.pending, sessionKey)
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("no pending approval for session %s", sessionKey)
	}

	status := ledger.ApprovalStatusDenied
	if granted {
		status = ledger.ApprovalStatusApproved
	}
	req.Status = status
	if c.ledger != nil {
		_ = c.ledger.UpdateApprovalStatus(req.ApprovalID, status)
	}
	if c.notifier != nil {
		if err := c.notifier.NotifyDecision(ctx, req, granted); err != nil {
			slog.Warn("Decision notification failed", "approval_id", req.ApprovalID, "error", err)
		}
	}
	return nil
}

// Abandon marks the session's pending request as superseded. Called when a
// new command discards a plan that was still awaiting approval.
func (c *Coordinator) Abandon(sessionKey string) {
	c.mu.Lock()
	req, ok := c.pending[sessionKey]
	delete(c.pending, sessionKey)
	c.mu.Unlock()
	if !ok {
		return
	}

	req.Status = ledger.ApprovalStatusSuperseded
	if c.ledger != nil {
		_ = c.ledger.UpdateApprovalStatus(req.ApprovalID, ledger.ApprovalStatusSuperseded)
	}
}

func marshalArgs(args map[string]any) string {
	raw, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func newApprovalID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err == nil {
		return hex.EncodeToString(b[:])
	}
	return fmt.Sprintf("appr-%d", time.Now().UnixNano())
}
