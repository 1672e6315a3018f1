package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opsgate/opsgate/internal/approval"
	"github.com/opsgate/opsgate/internal/bus"
	"github.com/opsgate/opsgate/internal/ledger"
	"github.com/opsgate/opsgate/internal/policy"
	"github.com/opsgate/opsgate/internal/session"
	"github.com/opsgate/opsgate/internal/stream"
	"github.com/opsgate/opsgate/internal/tools"
)

const deniedMsg = "Denied by human. No destructive action taken."

// strayTokenMsg answers an APPROVE/DENY token that arrived with nothing
// pending. Replaying the previous command here would be surprising; the
// token is answered directly instead.
const strayTokenMsg = "No action is awaiting approval."

// next names the step the state machine runs after the current one.
type next int

const (
	nextPlan next = iota
	nextGate
	nextRoute
	nextExecute
	nextRecover
	nextFinalize
	nextEnd
)

// Options configures a Controller. Ledger, Stream, Bus, and Sessions are
// optional; Registry and Policy are required.
type Options struct {
	Registry   *tools.Registry
	Policy     policy.Engine
	Approvals  *approval.Coordinator
	Ledger     *ledger.Service
	Stream     *stream.Publisher
	Bus        *bus.MessageBus
	Sessions   *session.Manager
	MaxRetries int
}

// Controller drives the plan/gate/approve/execute/recover/finalize machine.
// Each session owns one State; at most one turn per session runs at a time.
type Controller struct {
	registry   *tools.Registry
	policy     policy.Engine
	approvals  *approval.Coordinator
	ledger     *ledger.Service
	stream     *stream.Publisher
	bus        *bus.MessageBus
	sessions   *session.Manager
	maxRetries int

	mu     sync.Mutex
	states map[string]*sessionState
}

type sessionState struct {
	mu sync.Mutex
	st *State
}

// NewController creates a controller from the given options.
func NewController(opts Options) *Controller {
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}
	approvals := opts.Approvals
	if approvals == nil {
		approvals = approval.NewCoordinator(opts.Ledger, nil)
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewManager()
	}
	pol := opts.Policy
	if pol == nil {
		pol = policy.NewDefaultEngine()
	}
	return &Controller{
		registry:   opts.Registry,
		policy:     pol,
		approvals:  approvals,
		ledger:     opts.Ledger,
		stream:     opts.Stream,
		bus:        opts.Bus,
		sessions:   sessions,
		maxRetries: maxRetries,
	}
}

// Turn processes one user input for a session and returns the answer for
// that turn. The answer is either terminal or an approval prompt.
func (c *Controller) Turn(ctx context.Context, sessionKey, input string) string {
	ss := c.sessionFor(sessionKey)
	ss.mu.Lock()
	defer ss.mu.Unlock()

	st := ss.st
	_, isToken := ParseApprovalToken(input)

	switch {
	case isToken && !st.AwaitingApproval():
		st.beginCommand(input, uuid.NewString())
		st.TurnID = uuid.NewString()
		c.openTurn(st)
		st.FinalAnswer = strayTokenMsg
	case isToken:
		st.beginTurn(input)
		st.TurnID = uuid.NewString()
		c.openTurn(st)
		c.runMachine(ctx, st)
	default:
		if st.AwaitingApproval() {
			c.approvals.Abandon(sessionKey)
		}
		st.beginCommand(input, uuid.NewString())
		st.TurnID = uuid.NewString()
		c.openTurn(st)
		c.runMachine(ctx, st)
	}

	c.closeTurn(st)
	c.recordTranscript(sessionKey, input, st.FinalAnswer)
	return st.FinalAnswer
}

// runMachine dispatches steps until the turn ends. A step that produces a
// final answer short-circuits the rest of the pipeline to the finalizer;
// only the approval prompt ends the turn without finalizing.
func (c *Controller) runMachine(ctx context.Context, st *State) {
	n := nextPlan
	for n != nextEnd {
		switch n {
		case nextPlan:
			planTurn(st)
			n = nextGate
		case nextGate:
			c.gateDestructive(st)
			n = nextRoute
		case nextRoute:
			interpretApproval(st)
			n = c.routeApproval(ctx, st)
		case nextExecute:
			c.executeTool(ctx, st)
			if st.LastErr != "" {
				n = nextRecover
			} else {
				n = nextFinalize
			}
		case nextRecover:
			c.reflectRetry(st)
			n = nextExecute
		case nextFinalize:
			finalizeTurn(st)
			n = nextEnd
		}
		if st.FinalAnswer != "" && n != nextEnd && n != nextFinalize {
			n = nextFinalize
		}
	}
}

// gateDestructive classifies the plan exactly once per command. The policy
// decision never runs the tool; it only marks whether a human must approve.
func (c *Controller) gateDestructive(st *State) {
	if st.FinalAnswer != "" || st.Plan == nil {
		return
	}
	tier := tools.TierReadOnly
	if tool, ok := c.registry.Get(st.Plan.Tool); ok {
		tier = tools.ToolTier(tool)
	}
	decision := c.policy.Evaluate(policy.Context{
		Tool:    st.Plan.Tool,
		Tier:    tier,
		TraceID: st.TraceID,
	})
	st.NeedsApproval = decision.RequiresApproval
}

// interpretApproval reads an APPROVE/DENY token into the approval state.
// Any other input leaves the decision undetermined.
func interpretApproval(st *State) {
	if !st.NeedsApproval {
		return
	}
	granted, isToken := ParseApprovalToken(st.UserInput)
	if !isToken {
		return
	}
	if granted {
		st.Approval = ApprovalGranted
	} else {
		st.Approval = ApprovalDenied
	}
}

// routeApproval decides where the turn goes after classification: straight
// to execution, out to the human with a prompt, or to a denial answer.
func (c *Controller) routeApproval(ctx context.Context, st *State) next {
	if st.FinalAnswer != "" {
		return nextFinalize
	}
	if !st.NeedsApproval {
		return nextExecute
	}

	switch st.Approval {
	case ApprovalGranted:
		if err := c.approvals.Resolve(ctx, st.SessionKey, true); err != nil {
			slog.Warn("Approval resolve failed", "session", st.SessionKey, "error", err)
		}
		return nextExecute
	case ApprovalDenied:
		if err := c.approvals.Resolve(ctx, st.SessionKey, false); err != nil {
			slog.Warn("Approval resolve failed", "session", st.SessionKey, "error", err)
		}
		st.setFinalAnswer(deniedMsg)
		return nextFinalize
	default:
		req := &approval.Request{
			Tool:       st.Plan.Tool,
			Arguments:  st.Plan.Args,
			SessionKey: st.SessionKey,
			TraceID:    st.TraceID,
		}
		prompt := c.approvals.Ask(ctx, req)
		st.ApprovalID = req.ApprovalID
		st.setFinalAnswer(prompt)
		return nextEnd
	}
}

// Run consumes inbound messages from the bus until the context is done.
func (c *Controller) Run(ctx context.Context) error {
	if c.bus == nil {
		return fmt.Errorf("controller has no message bus")
	}
	slog.Info("Controller started", "max_retries", c.maxRetries)

	for {
		msg, err := c.bus.ConsumeInbound(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("Controller stopped")
				return nil
			}
			slog.Error("Failed to consume inbound message", "error", err)
			continue
		}

		answer := c.Turn(ctx, msg.SessionKey, msg.Content)
		c.bus.PublishOutbound(&bus.OutboundMessage{
			Channel:    msg.Channel,
			SessionKey: msg.SessionKey,
			TraceID:    msg.TraceID,
			Content:    answer,
		})
	}
}

func (c *Controller) sessionFor(sessionKey string) *sessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.states == nil {
		c.states = make(map[string]*sessionState)
	}
	ss, ok := c.states[sessionKey]
	if !ok {
		ss = &sessionState{st: &State{SessionKey: sessionKey}}
		c.states[sessionKey] = ss
	}
	return ss
}

// openTurn records the start of a turn in the ledger.
func (c *Controller) openTurn(st *State) {
	if c.ledger == nil {
		return
	}
	err := c.ledger.InsertTurn(&ledger.TurnRecord{
		TurnID:     st.TurnID,
		TraceID:    st.TraceID,
		SessionKey: st.SessionKey,
		CommandIn:  st.UserInput,
	})
	if err != nil {
		slog.Warn("Failed to record turn start", "turn_id", st.TurnID, "error", err)
	}
}

// closeTurn records the answer and mirrors the turn to the stream.
func (c *Controller) closeTurn(st *State) {
	status := ledger.TurnStatusCompleted
	if st.AwaitingApproval() {
		status = ledger.TurnStatusSuspended
	}
	if c.ledger != nil {
		if err := c.ledger.CompleteTurn(st.TurnID, st.FinalAnswer, status); err != nil {
			slog.Warn("Failed to record turn end", "turn_id", st.TurnID, "error", err)
		}
	}
	if c.stream.Active() {
		payload := map[string]string{
			"command": st.UserInput,
			"answer":  st.FinalAnswer,
			"status":  status,
		}
		traceID := st.TraceID
		go func() {
			pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := c.stream.PublishTurn(pubCtx, traceID, payload); err != nil {
				slog.Warn("Failed to publish turn event", "trace_id", traceID, "error", err)
			}
		}()
	}
}

// recordAudit mirrors one audit entry to the ledger and the stream.
func (c *Controller) recordAudit(st *State, e AuditEntry) {
	if c.ledger != nil {
		rec := &ledger.AuditRecord{
			TraceID:    st.TraceID,
			TurnID:     st.TurnID,
			Tool:       e.Tool,
			Args:       marshalJSON(e.Args),
			OK:         e.OK,
			Error:      e.Error,
			Reflection: e.Reflection,
		}
		if e.OK {
			rec.Result = formatValue(e.Result)
		}
		if err := c.ledger.AppendAudit(rec); err != nil {
			slog.Warn("Failed to append audit record", "trace_id", st.TraceID, "error", err)
		}
	}
	if c.stream.Active() {
		eventType := "TOOL"
		detail := fmt.Sprintf("%s(%s)", e.Tool, formatArgs(e.Args))
		if e.Reflection != "" {
			eventType = "REFLECTION"
			detail = e.Reflection
		}
		traceID := st.TraceID
		go func() {
			pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := c.stream.PublishAudit(pubCtx, traceID, eventType, detail); err != nil {
				slog.Warn("Failed to publish audit event", "trace_id", traceID, "error", err)
			}
		}()
	}
}

// recordTranscript appends the exchange to the session history.
func (c *Controller) recordTranscript(sessionKey, input, answer string) {
	if c.sessions == nil {
		return
	}
	sess := c.sessions.GetOrCreate(sessionKey)
	sess.AddMessage("user", input)
	sess.AddMessage("assistant", answer)
}

func marshalJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
