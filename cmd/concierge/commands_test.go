package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ConciergeChat/internal/backend"
	"ConciergeChat/internal/chatbot"
	"ConciergeChat/internal/config"
	"ConciergeChat/internal/devbackend"
	"ConciergeChat/internal/i18n"
)

func newSessionsClient(t *testing.T) *backend.Client {
	t.Helper()
	persona, err := devbackend.LoadPersona("")
	if err != nil {
		t.Fatalf("LoadPersona failed: %v", err)
	}
	srv := httptest.NewServer(devbackend.NewServer(devbackend.NewMemoryStore(), devbackend.NewCannedResponder(persona), devbackend.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}))
	t.Cleanup(srv.Close)

	client, err := backend.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestSessionsCommands(t *testing.T) {
	client := newSessionsClient(t)
	prefs := chatbot.NewPreferences(i18n.English)
	ctx := context.Background()
	var out bytes.Buffer

	if err := runCommand(ctx, &out, client, prefs, config.Config{}, []string{"sessions", "list"}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No chat sessions.") {
		t.Errorf("list output = %q", out.String())
	}

	out.Reset()
	if err := runCommand(ctx, &out, client, prefs, config.Config{}, []string{"sessions", "create", "Room", "service"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if got := out.String(); got != "New Chat: 1 Room service\n" {
		t.Errorf("create output = %q", got)
	}

	out.Reset()
	runCommand(ctx, &out, client, prefs, config.Config{}, []string{"sessions", "create"})
	out.Reset()
	prefs.SetLanguage(i18n.French)
	if err := runCommand(ctx, &out, client, prefs, config.Config{}, []string{"sessions"}); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	list := out.String()
	if !strings.Contains(list, "Room service") || !strings.Contains(list, "Nouvelle Conversation") {
		t.Errorf("list output = %q", list)
	}

	out.Reset()
	if err := runCommand(ctx, &out, client, prefs, config.Config{}, []string{"sessions", "delete", "1"}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := runCommand(ctx, &out, client, prefs, config.Config{}, []string{"sessions", "delete", "1"}); err == nil {
		t.Error("deleting a missing session should fail")
	}
	if err := runCommand(ctx, &out, client, prefs, config.Config{}, []string{"sessions", "delete", "one"}); err == nil {
		t.Error("a non-numeric id should fail")
	}
}

func TestUnknownCommand(t *testing.T) {
	err := runCommand(context.Background(), io.Discard, nil, chatbot.NewPreferences(i18n.English), config.Config{}, []string{"dance"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("err = %v", err)
	}
}

func TestQRCommand(t *testing.T) {
	cfg := config.Config{APIURL: "http://localhost:5000", PublicURL: "https://finesse.example.com/chat"}
	var out bytes.Buffer

	if err := runQR(&out, cfg, nil); err != nil {
		t.Fatalf("runQR failed: %v", err)
	}
	if !strings.HasSuffix(out.String(), "https://finesse.example.com/chat\n") {
		t.Errorf("output should end with the encoded url, got %q", out.String())
	}

	path := filepath.Join(t.TempDir(), "qr.png")
	out.Reset()
	if err := runQR(&out, cfg, []string{"-o", path}); err != nil {
		t.Fatalf("runQR -o failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("png not written: %v", err)
	}
}
