// Package devbackend is a local implementation of the concierge chat API,
// used for development and for contract tests of the client.
package devbackend

import (
	"context"
	"errors"

	"ConciergeChat/internal/session"
)

// ErrNotFound is returned when a chat session does not exist.
var ErrNotFound = errors.New("not found")

// Store persists the conversation and the chat sessions.
// Lists are returned in insertion order and are never nil.
type Store interface {
	ListMessages(ctx context.Context) ([]session.Message, error)
	AppendMessage(ctx context.Context, role session.Role, content string, meta *session.Metadata) (session.Message, error)
	ClearMessages(ctx context.Context) error

	ListSessions(ctx context.Context) ([]session.ChatSession, error)
	CreateSession(ctx context.Context, name string) (session.ChatSession, error)
	DeleteSession(ctx context.Context, id int64) error

	Close() error
}
