package bus

import (
	"context"
	"testing"
	"time"
)

func TestInboundRoundtrip(t *testing.T) {
	b := NewMessageBus()
	b.PublishInbound(&InboundMessage{Channel: "cli", SessionKey: "cli:default", Content: "read /docs/readme.md"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	msg, err := b.ConsumeInbound(ctx)
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if msg.Content != "read /docs/readme.md" {
		t.Fatalf("unexpected content: %q", msg.Content)
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("timestamp should be set on publish")
	}
}

func TestConsumeInboundCancelled(t *testing.T) {
	b := NewMessageBus()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := b.ConsumeInbound(ctx); err == nil {
		t.Fatal("expected context error")
	}
}

func TestOutboundDispatch(t *testing.T) {
	b := NewMessageBus()
	got := make(chan *OutboundMessage, 1)
	b.Subscribe("cli", func(msg *OutboundMessage) { got <- msg })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.DispatchOutbound(ctx)

	b.PublishOutbound(&OutboundMessage{Channel: "cli", SessionKey: "cli:default", Content: "OK"})

	select {
	case msg := <-got:
		if msg.Content != "OK" {
			t.Fatalf("unexpected content: %q", msg.Content)
		}
	case <-time.After(time.Second):
		t.Fatal("outbound message not dispatched")
	}
}
