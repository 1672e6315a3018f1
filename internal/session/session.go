// Package session provides in-memory conversation sessions.
package session

import (
	"sync"
	"time"
)

// Message represents a chat message in a session.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Session holds the transcript for one conversation.
// Orchestration state lives with the controller; the session only records
// what was said.
type Session struct {
	Key       string    `json:"key"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	mu        sync.RWMutex
}

// NewSession creates a new session with the given key.
func NewSession(key string) *Session {
	now := time.Now()
	return &Session{
		Key:       key,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddMessage appends a message to the transcript.
func (s *Session) AddMessage(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Messages = append(s.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	s.UpdatedAt = time.Now()
}

// GetHistory returns the most recent messages, up to maxMessages.
func (s *Session) GetHistory(maxMessages int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.Messages) <= maxMessages {
		result := make([]Message, len(s.Messages))
		copy(result, s.Messages)
		return result
	}
	result := make([]Message, maxMessages)
	copy(result, s.Messages[len(s.Messages)-maxMessages:])
	return result
}

// Manager holds the live sessions for one process.
type Manager struct {
	sessions map[string]*Session
	mu       sync.Mutex
}

// NewManager creates a session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns an existing session or creates a new one.
func (m *Manager) GetOrCreate(key string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[key]; ok {
		return session
	}
	session := NewSession(key)
	m.sessions[key] = session
	return session
}

// Keys returns the keys of all live sessions.
func (m *Manager) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.sessions))
	for key := range m.sessions {
		keys = append(keys, key)
	}
	return keys
}
