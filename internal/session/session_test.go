package session

import (
	"encoding/json"
	"testing"
)

func TestMessageDecodesAPIShape(t *testing.T) {
	raw := `[
		{"id":1,"role":"user","content":"Hello"},
		{"id":2,"role":"assistant","content":"Bonjour!","metadata":{"responseTime":420}}
	]`

	var msgs []Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if !msgs[0].IsUser() || msgs[1].IsUser() {
		t.Errorf("unexpected roles: %q, %q", msgs[0].Role, msgs[1].Role)
	}
	if _, ok := msgs[0].ResponseTime(); ok {
		t.Error("user message should not report a response time")
	}
	rt, ok := msgs[1].ResponseTime()
	if !ok || rt != 420 {
		t.Errorf("ResponseTime() = %v, %v; want 420, true", rt, ok)
	}
}

func TestFractionalResponseTime(t *testing.T) {
	raw := `[
		{"id":1,"role":"user","content":"Hello"},
		{"id":2,"role":"assistant","content":"Good day","metadata":{"responseTime":1234.5}},
		{"id":3,"role":"assistant","content":"Anything else?","metadata":{}}
	]`

	var msgs []Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if rt, ok := msgs[1].ResponseTime(); !ok || rt != 1234.5 {
		t.Errorf("ResponseTime() = %v, %v; want 1234.5, true", rt, ok)
	}
	if _, ok := msgs[2].ResponseTime(); ok {
		t.Error("empty metadata should not report a response time")
	}
}

func TestResponseTimeIgnoredOnUserMessages(t *testing.T) {
	m := Message{Role: RoleUser, Content: "hi", Metadata: &Metadata{ResponseTime: Millis(10)}}
	if _, ok := m.ResponseTime(); ok {
		t.Error("response time must only be reported for assistant replies")
	}
}

func TestLastUserMessage(t *testing.T) {
	msgs := []Message{
		{ID: 1, Role: RoleUser, Content: "first"},
		{ID: 2, Role: RoleAssistant, Content: "reply"},
		{ID: 3, Role: RoleUser, Content: "second"},
		{ID: 4, Role: RoleAssistant, Content: "reply 2"},
	}
	last, ok := LastUserMessage(msgs)
	if !ok || last.Content != "second" {
		t.Errorf("LastUserMessage() = %+v, %v", last, ok)
	}
	if _, ok := LastUserMessage(nil); ok {
		t.Error("expected no user message in an empty list")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		in   ChatSession
		want string
	}{
		{"named", ChatSession{ID: 1, Name: "Spa booking"}, "Spa booking"},
		{"empty", ChatSession{ID: 2}, "New Conversation"},
		{"blank", ChatSession{ID: 3, Name: "   "}, "New Conversation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.DisplayName("New Conversation"); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
