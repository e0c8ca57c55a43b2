package config

import (
	"testing"
	"time"

	"ConciergeChat/internal/i18n"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"CONCIERGE_API_URL", "CONCIERGE_PUBLIC_URL", "CONCIERGE_LANGUAGE", "CONCIERGE_CLEAR_ON_START",
		"CONCIERGE_LOG_DIR", "CONCIERGE_DEBUG", "CONCIERGE_REQUEST_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Language != i18n.English {
		t.Errorf("Language = %q", cfg.Language)
	}
	if !cfg.ClearOnStart {
		t.Error("ClearOnStart should default to true")
	}
	if cfg.RequestTimeout != 0 {
		t.Errorf("RequestTimeout = %s, want no timeout", cfg.RequestTimeout)
	}
	if cfg.QRTarget() != DefaultAPIURL {
		t.Errorf("QRTarget() = %q", cfg.QRTarget())
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CONCIERGE_API_URL", "https://concierge.example.com")
	t.Setenv("CONCIERGE_PUBLIC_URL", "https://finesse.example.com/chat")
	t.Setenv("CONCIERGE_LANGUAGE", "FR")
	t.Setenv("CONCIERGE_CLEAR_ON_START", "off")
	t.Setenv("CONCIERGE_DEBUG", "yes")
	t.Setenv("CONCIERGE_REQUEST_TIMEOUT", "15")

	cfg := Load()
	if cfg.APIURL != "https://concierge.example.com" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Language != i18n.French {
		t.Errorf("Language = %q", cfg.Language)
	}
	if cfg.ClearOnStart {
		t.Error("ClearOnStart should be false")
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %s", cfg.RequestTimeout)
	}
	if cfg.QRTarget() != "https://finesse.example.com/chat" {
		t.Errorf("QRTarget() = %q", cfg.QRTarget())
	}
}

func TestUnsupportedLanguageKeepsDefault(t *testing.T) {
	t.Setenv("CONCIERGE_LANGUAGE", "de")
	if cfg := Load(); cfg.Language != i18n.Default {
		t.Errorf("Language = %q, want default", cfg.Language)
	}
}

func TestLoadDevServer(t *testing.T) {
	t.Setenv("DEVSERVER_ADDR", "")
	t.Setenv("DEVSERVER_ALLOWED_ORIGINS", "http://localhost:3000, ,https://finesse.example.com")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := LoadDevServer()
	if cfg.Addr != DefaultDevAddr {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://finesse.example.com" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestGetEnvDurationDefault(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", time.Minute},
		{"1m30s", 90 * time.Second},
		{"7", 7 * time.Second},
		{"soon", time.Minute},
	}
	for _, tt := range tests {
		t.Setenv("TEST_DURATION", tt.value)
		if got := getEnvDurationDefault("TEST_DURATION", time.Minute); got != tt.want {
			t.Errorf("getEnvDurationDefault(%q) = %s, want %s", tt.value, got, tt.want)
		}
	}
}
