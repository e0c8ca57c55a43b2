package devbackend

import (
	"context"
	"sync"

	"ConciergeChat/internal/session"
)

// MemoryStore keeps the conversation and the sessions in process memory.
// Messages leave it only through ClearMessages.
type MemoryStore struct {
	mu         sync.RWMutex
	messages   []session.Message
	sessions   []session.ChatSession
	nextMsgID  int64
	nextSessID int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// ListMessages returns a copy of the conversation in insertion order.
func (m *MemoryStore) ListMessages(ctx context.Context) ([]session.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]session.Message, len(m.messages))
	copy(out, m.messages)
	return out, nil
}

func (m *MemoryStore) AppendMessage(ctx context.Context, role session.Role, content string, meta *session.Metadata) (session.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextMsgID++
	msg := session.Message{ID: m.nextMsgID, Role: role, Content: content, Metadata: meta}
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *MemoryStore) ClearMessages(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	return nil
}

func (m *MemoryStore) ListSessions(ctx context.Context) ([]session.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]session.ChatSession, len(m.sessions))
	copy(out, m.sessions)
	return out, nil
}

func (m *MemoryStore) CreateSession(ctx context.Context, name string) (session.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSessID++
	s := session.ChatSession{ID: m.nextSessID, Name: name}
	m.sessions = append(m.sessions, s)
	return s, nil
}

func (m *MemoryStore) DeleteSession(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.sessions {
		if s.ID == id {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) Close() error { return nil }
