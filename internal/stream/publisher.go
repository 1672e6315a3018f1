// Package stream mirrors turn and audit events to a Kafka topic.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Envelope wraps one observability event on the wire.
type Envelope struct {
	Type      string    `json:"type"`
	TraceID   string    `json:"trace_id"`
	AgentID   string    `json:"agent_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// Envelope type constants.
const (
	EnvelopeTurn  = "TURN"
	EnvelopeAudit = "AUDIT"
)

// Publisher writes envelopes to a Kafka topic. A nil or inactive publisher
// drops events silently; streaming is strictly best-effort.
type Publisher struct {
	writer  *kafka.Writer
	agentID string
}

// NewPublisher creates a publisher for the given brokers and topic.
// Brokers is a comma-separated list.
func NewPublisher(brokers, topic, agentID string) *Publisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return &Publisher{writer: w, agentID: agentID}
}

// Active reports whether the publisher can deliver events.
func (p *Publisher) Active() bool {
	return p != nil && p.writer != nil
}

// PublishTurn mirrors a completed turn.
func (p *Publisher) PublishTurn(ctx context.Context, traceID string, payload any) error {
	return p.publish(ctx, Envelope{
		Type:      EnvelopeTurn,
		TraceID:   traceID,
		AgentID:   p.agentIDOrUnknown(),
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// PublishAudit mirrors one audit event.
func (p *Publisher) PublishAudit(ctx context.Context, traceID, eventType, detail string) error {
	return p.publish(ctx, Envelope{
		Type:      EnvelopeAudit,
		TraceID:   traceID,
		AgentID:   p.agentIDOrUnknown(),
		Timestamp: time.Now(),
		Payload: map[string]string{
			"event_type": eventType,
			"detail":     detail,
		},
	})
}

func (p *Publisher) publish(ctx context.Context, env Envelope) error {
	if !p.Active() {
		return nil
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(env.TraceID),
		Value: value,
		Time:  env.Timestamp,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	return nil
}

func (p *Publisher) agentIDOrUnknown() string {
	if p == nil || p.agentID == "" {
		return "opsgate"
	}
	return p.agentID
}

// Close closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
