package session

import "testing"

func TestGetOrCreateReturnsSameSession(t *testing.T) {
	m := NewManager()
	a := m.GetOrCreate("cli:default")
	b := m.GetOrCreate("cli:default")
	if a != b {
		t.Fatal("expected the same session instance")
	}
}

func TestHistoryTruncation(t *testing.T) {
	s := NewSession("cli:default")
	s.AddMessage("user", "one")
	s.AddMessage("assistant", "two")
	s.AddMessage("user", "three")

	history := s.GetHistory(2)
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Content != "two" || history[1].Content != "three" {
		t.Fatalf("wrong tail: %v", history)
	}
}
