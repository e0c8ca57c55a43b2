package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ConciergeChat/internal/i18n"
)

const (
	DefaultAPIURL  = "http://localhost:5000"
	DefaultLogDir  = "logs"
	DefaultDevAddr = ":5000"
)

// Config holds the chat client configuration
type Config struct {
	APIURL         string        // Root of the concierge API
	PublicURL      string        // Page URL encoded in the shareable QR code
	Language       i18n.Language // Initial display language
	ClearOnStart   bool          // Start every run from an empty conversation
	LogDir         string
	Debug          bool
	RequestTimeout time.Duration // Zero means no timeout
}

// DevServerConfig holds the reference backend configuration
type DevServerConfig struct {
	Addr           string
	DatabasePath   string // Empty selects the in-memory store
	AllowedOrigins []string
	OpenAIAPIKey   string
	OpenAIModel    string
	LogDir         string
	Debug          bool
}

// Load reads the client configuration from the environment.
// A .env file in the working directory is applied first when present.
func Load() Config {
	loadDotEnv()

	cfg := Config{
		APIURL:         getEnvDefault("CONCIERGE_API_URL", DefaultAPIURL),
		PublicURL:      os.Getenv("CONCIERGE_PUBLIC_URL"),
		Language:       i18n.Default,
		ClearOnStart:   getEnvBoolDefault("CONCIERGE_CLEAR_ON_START", true),
		LogDir:         getEnvDefault("CONCIERGE_LOG_DIR", DefaultLogDir),
		Debug:          getEnvBoolDefault("CONCIERGE_DEBUG", false),
		RequestTimeout: getEnvDurationDefault("CONCIERGE_REQUEST_TIMEOUT", 0),
	}

	if v := os.Getenv("CONCIERGE_LANGUAGE"); v != "" {
		lang, err := i18n.Parse(v)
		if err != nil {
			slog.Warn("ignoring CONCIERGE_LANGUAGE", "value", v, "error", err)
		} else {
			cfg.Language = lang
		}
	}

	return cfg
}

// QRTarget returns the URL encoded in the QR code.
func (c Config) QRTarget() string {
	if c.PublicURL != "" {
		return c.PublicURL
	}
	return c.APIURL
}

// LoadDevServer reads the reference backend configuration from the environment.
func LoadDevServer() DevServerConfig {
	loadDotEnv()

	cfg := DevServerConfig{
		Addr:           getEnvDefault("DEVSERVER_ADDR", DefaultDevAddr),
		DatabasePath:   os.Getenv("DEVSERVER_DB"),
		AllowedOrigins: getEnvListDefault("DEVSERVER_ALLOWED_ORIGINS", []string{"*"}),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		LogDir:         getEnvDefault("CONCIERGE_LOG_DIR", DefaultLogDir),
		Debug:          getEnvBoolDefault("CONCIERGE_DEBUG", false),
	}
	if cfg.OpenAIAPIKey == "" {
		slog.Info("OPENAI_API_KEY is not set; the dev server answers with canned replies")
	}
	return cfg
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file, using environment variables only", "error", err)
	}
}

func getEnvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvListDefault(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// Bare numbers are seconds.
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	slog.Warn("invalid duration, using default", "key", key, "value", v, "default", def)
	return def
}
