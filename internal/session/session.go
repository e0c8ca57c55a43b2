package session

import "strings"

// Role identifies the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Metadata carries optional server-side annotations of a message
type Metadata struct {
	ResponseTime *float64 `json:"responseTime,omitempty"` // milliseconds, may be fractional
}

// Message represents a single chat message as returned by the concierge API.
// Messages are immutable once created; the order of a list is the server's insertion order.
type Message struct {
	ID       int64     `json:"id"`
	Role     Role      `json:"role"`
	Content  string    `json:"content"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// IsUser reports whether the message was authored by the guest.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// ResponseTime returns the assistant response time in milliseconds, if the server attached one.
func (m Message) ResponseTime() (float64, bool) {
	if m.Role != RoleAssistant || m.Metadata == nil || m.Metadata.ResponseTime == nil {
		return 0, false
	}
	return *m.Metadata.ResponseTime, true
}

// ChatSession represents a named conversation container
type ChatSession struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DisplayName returns the session name, or fallback when the session was created unnamed.
func (s ChatSession) DisplayName(fallback string) string {
	if strings.TrimSpace(s.Name) == "" {
		return fallback
	}
	return s.Name
}

// LastUserMessage returns the most recent guest-authored message in msgs.
func LastUserMessage(msgs []Message) (Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsUser() {
			return msgs[i], true
		}
	}
	return Message{}, false
}

// Millis returns a pointer to v, for building Metadata literals.
func Millis(v float64) *float64 {
	return &v
}
