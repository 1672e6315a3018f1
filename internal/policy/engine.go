// Package policy decides which tool executions need human approval.
package policy

import (
	"fmt"
	"time"

	"github.com/opsgate/opsgate/internal/tools"
)

// Context holds information about a pending tool execution.
type Context struct {
	Tool    string
	Tier    int
	TraceID string
}

// Decision is the result of a policy evaluation.
type Decision struct {
	RequiresApproval bool
	Reason           string
	Tier             int
	Ts               time.Time
	TraceID          string
}

// Engine evaluates whether a tool execution needs approval before it runs.
type Engine interface {
	Evaluate(ctx Context) Decision
}

// DefaultEngine requires approval for destructive-tier tools.
// The classification is a pure lookup; it never fails and has no side effects.
type DefaultEngine struct {
	// MaxAutoTier is the highest tier that proceeds without approval.
	MaxAutoTier int
}

// NewDefaultEngine creates a policy engine with the default gate:
// everything below the destructive tier is auto-approved.
func NewDefaultEngine() *DefaultEngine {
	return &DefaultEngine{
		MaxAutoTier: tools.TierWrite,
	}
}

// Evaluate checks the tool tier against the auto-approve ceiling.
func (e *DefaultEngine) Evaluate(ctx Context) Decision {
	d := Decision{
		Tier:    ctx.Tier,
		Ts:      time.Now(),
		TraceID: ctx.TraceID,
	}

	if ctx.Tier > e.MaxAutoTier {
		d.RequiresApproval = true
		d.Reason = fmt.Sprintf("tier_%d_requires_approval", ctx.Tier)
		return d
	}

	d.Reason = fmt.Sprintf("tier_%d_auto_approved", ctx.Tier)
	return d
}
