package cli

import (
	"fmt"
	"log/slog"

	"github.com/opsgate/opsgate/internal/agent"
	"github.com/opsgate/opsgate/internal/approval"
	"github.com/opsgate/opsgate/internal/config"
	"github.com/opsgate/opsgate/internal/ledger"
	"github.com/opsgate/opsgate/internal/notify"
	"github.com/opsgate/opsgate/internal/policy"
	"github.com/opsgate/opsgate/internal/session"
	"github.com/opsgate/opsgate/internal/stream"
	"github.com/opsgate/opsgate/internal/tools"
)

// runtime holds the assembled components behind one CLI invocation.
type runtime struct {
	Controller *agent.Controller
	Registry   *tools.Registry

	closers []func() error
}

// newRuntime wires the tool backends, policy, approval, ledger, and stream
// from the loaded config into a ready controller.
func newRuntime(cfg *config.Config) (*runtime, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}

	rt := &runtime{}

	files := tools.NewFileStore(tools.DefaultFileSeed())
	records, err := tools.NewRecordStore(cfg.RecordsPath(), tools.DefaultRecordSeed())
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	rt.closers = append(rt.closers, records.Close)

	reg := tools.NewRegistry()
	reg.Register(tools.NewReadFileTool(files))
	reg.Register(tools.NewSearchFilesTool(files))
	reg.Register(tools.NewDeleteFileTool(files))
	reg.Register(tools.NewGetRecordTool(records))
	reg.Register(tools.NewUpdateRecordTool(records))
	rt.Registry = reg

	var lg *ledger.Service
	if cfg.Agent.LedgerEnabled {
		lg, err = ledger.NewService(cfg.LedgerPath())
		if err != nil {
			slog.Warn("Ledger unavailable, running without durable audit", "error", err)
			lg = nil
		} else {
			rt.closers = append(rt.closers, lg.Close)
		}
	}

	var notifier approval.Notifier
	if cfg.Notify.Slack.Enabled && cfg.Notify.Slack.Token != "" {
		notifier = notify.NewSlackNotifier(cfg.Notify.Slack.Token, cfg.Notify.Slack.Channel)
	}

	var pub *stream.Publisher
	if cfg.Stream.Enabled && cfg.Stream.Brokers != "" {
		pub = stream.NewPublisher(cfg.Stream.Brokers, cfg.Stream.Topic, cfg.Stream.AgentID)
		rt.closers = append(rt.closers, pub.Close)
	}

	rt.Controller = agent.NewController(agent.Options{
		Registry:   reg,
		Policy:     policy.NewDefaultEngine(),
		Approvals:  approval.NewCoordinator(lg, notifier),
		Ledger:     lg,
		Stream:     pub,
		Sessions:   session.NewManager(),
		MaxRetries: cfg.Agent.MaxRetries,
	})
	return rt, nil
}

// Close releases the runtime's resources in reverse order.
func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			slog.Warn("Close failed", "error", err)
		}
	}
}
