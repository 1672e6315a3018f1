// Package notify delivers approval events to external channels.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/opsgate/opsgate/internal/approval"
)

// SlackNotifier posts approval requests and decisions to a Slack channel.
type SlackNotifier struct {
	client  *slack.Client
	channel string
}

// NewSlackNotifier creates a notifier for the given bot token and channel.
func NewSlackNotifier(token, channel string) *SlackNotifier {
	return &SlackNotifier{
		client:  slack.New(token),
		channel: channel,
	}
}

// NotifyRequest posts a pending approval request.
func (n *SlackNotifier) NotifyRequest(ctx context.Context, req *approval.Request) error {
	args, _ := json.Marshal(req.Arguments)
	text := fmt.Sprintf(":warning: Approval required: `%s` with args `%s` (session %s, id %s). Reply APPROVE or DENY in the session.",
		req.Tool, string(args), req.SessionKey, req.ApprovalID)
	_, _, err := n.client.PostMessageContext(ctx, n.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack post failed: %w", err)
	}
	return nil
}

// NotifyDecision posts the human decision for a request.
func (n *SlackNotifier) NotifyDecision(ctx context.Context, req *approval.Request, granted bool) error {
	verdict := ":no_entry: denied"
	if granted {
		verdict = ":white_check_mark: approved"
	}
	text := fmt.Sprintf("Approval %s: `%s` %s.", req.ApprovalID, req.Tool, verdict)
	_, _, err := n.client.PostMessageContext(ctx, n.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack post failed: %w", err)
	}
	return nil
}
