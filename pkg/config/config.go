// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strings"
	"time"
)

// Config holds everything the entry points need to wire a call.
type Config struct {
	// Addr is the dev server listen address.
	Addr string

	// GeminiAPIKey authenticates the model backend.
	GeminiAPIKey string
	// Model is the Gemini model id used for generation.
	Model string
	// AwayTimeout is how long candidate silence is tolerated before the
	// silence handler fires.
	AwayTimeout time.Duration

	// WebhookURL receives the call result. Empty disables delivery.
	WebhookURL string
	// WebhookSecret is sent in the X-Webhook-Secret header.
	WebhookSecret string

	// DatabaseURL points the calendar store at Postgres. Empty falls
	// back to computed slots without event creation.
	DatabaseURL string
}

// LoadFromEnv reads the configuration, applying defaults for anything
// unset.
func LoadFromEnv() Config {
	return Config{
		Addr:          envOr("PRESCREEN_ADDR", ":8090"),
		GeminiAPIKey:  envOr("GEMINI_API_KEY", ""),
		Model:         envOr("PRESCREEN_MODEL", "gemini-2.0-flash"),
		AwayTimeout:   envDurationOr("PRESCREEN_AWAY_TIMEOUT", 4*time.Second),
		WebhookURL:    envOr("PRESCREEN_WEBHOOK_URL", ""),
		WebhookSecret: envOr("PRESCREEN_WEBHOOK_SECRET", ""),
		DatabaseURL:   envOr("DATABASE_URL", ""),
	}
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
