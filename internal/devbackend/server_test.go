package devbackend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"ConciergeChat/internal/backend"
	"ConciergeChat/internal/session"
)

type failingResponder struct{}

func (failingResponder) Reply(ctx context.Context, history []session.Message) (string, error) {
	return "", errors.New("model overloaded")
}

type flakyResponder struct {
	mu             sync.Mutex
	failures       int
	lastHistoryLen int
}

func (f *flakyResponder) Reply(ctx context.Context, history []session.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastHistoryLen = len(history)
	if f.failures > 0 {
		f.failures--
		return "", errors.New("model overloaded")
	}
	return "Noted.", nil
}

func newTestServer(t *testing.T, store Store, responder Responder) (*httptest.Server, *backend.Client) {
	t.Helper()
	if responder == nil {
		persona, err := LoadPersona("")
		if err != nil {
			t.Fatalf("LoadPersona failed: %v", err)
		}
		responder = NewCannedResponder(persona)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewServer(store, responder, Options{Logger: logger}))
	t.Cleanup(srv.Close)

	client, err := backend.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return srv, client
}

func TestSendAppendsUserAndAssistant(t *testing.T) {
	_, client := newTestServer(t, NewMemoryStore(), nil)
	ctx := context.Background()

	msgs, err := client.SendMessage(ctx, "Is breakfast included?")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if !msgs[0].IsUser() || msgs[0].Content != "Is breakfast included?" {
		t.Errorf("user message = %+v", msgs[0])
	}
	if msgs[1].Role != session.RoleAssistant || !strings.Contains(msgs[1].Content, "Breakfast is served") {
		t.Errorf("assistant message = %+v", msgs[1])
	}
	if _, ok := msgs[1].ResponseTime(); !ok {
		t.Error("assistant reply should carry a response time")
	}
}

func TestSendThenListEndsWithSentContent(t *testing.T) {
	_, client := newTestServer(t, NewMemoryStore(), nil)
	ctx := context.Background()

	for _, content := range []string{"Hello", "Do you have a spa?", "Merci beaucoup"} {
		if _, err := client.SendMessage(ctx, content); err != nil {
			t.Fatalf("SendMessage(%q) failed: %v", content, err)
		}
		msgs, err := client.ListMessages(ctx)
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		last, ok := session.LastUserMessage(msgs)
		if !ok || last.Content != content {
			t.Errorf("last user message = %q, want %q", last.Content, content)
		}
	}
}

func TestClearIsIdempotent(t *testing.T) {
	_, client := newTestServer(t, NewMemoryStore(), nil)
	ctx := context.Background()

	if _, err := client.SendMessage(ctx, "Hello"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := client.ClearChat(ctx); err != nil {
			t.Fatalf("ClearChat #%d failed: %v", i+1, err)
		}
		msgs, err := client.ListMessages(ctx)
		if err != nil || len(msgs) != 0 {
			t.Fatalf("after clear #%d: %d messages, %v", i+1, len(msgs), err)
		}
	}
}

func TestSendValidation(t *testing.T) {
	srv, _ := newTestServer(t, NewMemoryStore(), nil)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"malformed", `{"role":`, "invalid request body"},
		{"assistant role", `{"role":"assistant","content":"hi"}`, `role must be "user"`},
		{"blank content", `{"role":"user","content":"   "}`, "content is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/messages", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST failed: %v", err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if !strings.Contains(string(body), tt.wantErr) {
				t.Errorf("body = %s, want %q", body, tt.wantErr)
			}
		})
	}
}

func TestResponderFailureSurfacesAsAPIError(t *testing.T) {
	_, client := newTestServer(t, NewMemoryStore(), failingResponder{})
	ctx := context.Background()

	_, err := client.SendMessage(ctx, "Hello")
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 APIError, got %v", err)
	}

	msgs, err := client.ListMessages(ctx)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("failed send left %d messages behind: %+v", len(msgs), msgs)
	}
}

func TestRetryAfterFailedReplyStoresOneUserMessage(t *testing.T) {
	responder := &flakyResponder{failures: 1}
	_, client := newTestServer(t, NewMemoryStore(), responder)
	ctx := context.Background()

	if _, err := client.SendMessage(ctx, "Late checkout please"); err == nil {
		t.Fatal("expected the first send to fail")
	}
	msgs, err := client.SendMessage(ctx, "Late checkout please")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(msgs) != 2 || !msgs[0].IsUser() || msgs[1].Content != "Noted." {
		t.Errorf("after retry: %+v", msgs)
	}
	responder.mu.Lock()
	defer responder.mu.Unlock()
	if got := responder.lastHistoryLen; got != 1 {
		t.Errorf("responder saw %d messages, want 1", got)
	}
}

func TestOversizedBodyRejected(t *testing.T) {
	srv, _ := newTestServer(t, NewMemoryStore(), nil)

	body := `{"role":"user","content":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	resp, err := http.Post(srv.URL+"/api/messages", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSessionsContract(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store { return openTestSQLite(t) },
	}
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			srv, client := newTestServer(t, newStore(t), nil)
			ctx := context.Background()

			list, err := client.ListSessions(ctx)
			if err != nil || len(list) != 0 {
				t.Fatalf("initial ListSessions = %v, %v", list, err)
			}

			spa, err := client.CreateSession(ctx, "Spa booking")
			if err != nil {
				t.Fatalf("CreateSession failed: %v", err)
			}
			unnamed, err := client.CreateSession(ctx, "")
			if err != nil {
				t.Fatalf("CreateSession unnamed failed: %v", err)
			}
			if spa.ID == unnamed.ID {
				t.Fatal("session ids must be unique")
			}

			list, _ = client.ListSessions(ctx)
			if len(list) != 2 || list[1].DisplayName("New Conversation") != "New Conversation" {
				t.Fatalf("ListSessions = %+v", list)
			}

			if err := client.DeleteSession(ctx, spa.ID); err != nil {
				t.Fatalf("DeleteSession failed: %v", err)
			}
			list, _ = client.ListSessions(ctx)
			if len(list) != 1 || list[0].ID != unnamed.ID {
				t.Errorf("after delete: %+v", list)
			}

			err = client.DeleteSession(ctx, spa.ID)
			var apiErr *backend.APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
				t.Errorf("deleting twice: %v", err)
			}

			req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/chat-sessions/abc", nil)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("DELETE failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("bad id status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, NewMemoryStore(), nil)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := httptest.NewServer(NewServer(NewMemoryStore(), NewCannedResponder(&Persona{Fallback: "ok"}), Options{
		AllowedOrigins: []string{"https://finesse.example.com"},
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/messages", nil)
	req.Header.Set("Origin", "https://finesse.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight failed: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://finesse.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
