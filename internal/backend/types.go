package backend

import "ConciergeChat/internal/session"

const (
	messagesPath = "/api/messages"
	sessionsPath = "/api/chat-sessions"
)

// SendMessageRequest represents the request body for posting a guest message
type SendMessageRequest struct {
	Role    session.Role `json:"role"`
	Content string       `json:"content"`
}

// CreateSessionRequest represents the request body for creating a chat session
type CreateSessionRequest struct {
	Name string `json:"name"`
}
