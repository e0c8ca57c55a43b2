package devbackend

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ConciergeChat/internal/session"
)

// SQLiteStore persists the conversation in a SQLite database file
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers and keeps ":memory:" databases intact.
	db.SetMaxOpenConns(1)

	createSessionsTable := `
	CREATE TABLE IF NOT EXISTS chat_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL DEFAULT '',
		created_at DATETIME
	);`

	createMessagesTable := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		response_time REAL,
		created_at DATETIME
	);`

	if _, err := db.Exec(createSessionsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create chat_sessions table: %w", err)
	}

	if _, err := db.Exec(createMessagesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create messages table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) ListMessages(ctx context.Context) ([]session.Message, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, role, content, response_time FROM messages ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	messages := []session.Message{}
	for rows.Next() {
		var (
			msg          session.Message
			responseTime sql.NullFloat64
		)
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &responseTime); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if responseTime.Valid {
			msg.Metadata = &session.Metadata{ResponseTime: session.Millis(responseTime.Float64)}
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, role session.Role, content string, meta *session.Metadata) (session.Message, error) {
	var responseTime sql.NullFloat64
	if meta != nil && meta.ResponseTime != nil {
		responseTime = sql.NullFloat64{Float64: *meta.ResponseTime, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (role, content, response_time, created_at) VALUES (?, ?, ?, ?)",
		role, content, responseTime, time.Now(),
	)
	if err != nil {
		return session.Message{}, fmt.Errorf("failed to save message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return session.Message{}, fmt.Errorf("failed to read message id: %w", err)
	}
	return session.Message{ID: id, Role: role, Content: content, Metadata: meta}, nil
}

func (s *SQLiteStore) ClearMessages(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM messages"); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context) ([]session.ChatSession, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM chat_sessions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to load chat sessions: %w", err)
	}
	defer rows.Close()

	sessions := []session.ChatSession{}
	for rows.Next() {
		var cs session.ChatSession
		if err := rows.Scan(&cs.ID, &cs.Name); err != nil {
			return nil, fmt.Errorf("failed to scan chat session: %w", err)
		}
		sessions = append(sessions, cs)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) CreateSession(ctx context.Context, name string) (session.ChatSession, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO chat_sessions (name, created_at) VALUES (?, ?)", name, time.Now())
	if err != nil {
		return session.ChatSession{}, fmt.Errorf("failed to save chat session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return session.ChatSession{}, fmt.Errorf("failed to read chat session id: %w", err)
	}
	return session.ChatSession{ID: id, Name: name}, nil
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM chat_sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete chat session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete chat session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
