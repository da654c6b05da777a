package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("PRESCREEN_ADDR", "")
	t.Setenv("PRESCREEN_MODEL", "")
	t.Setenv("PRESCREEN_AWAY_TIMEOUT", "")

	cfg := LoadFromEnv()
	if cfg.Addr != ":8090" {
		t.Fatalf("Addr=%q", cfg.Addr)
	}
	if cfg.Model != "gemini-2.0-flash" {
		t.Fatalf("Model=%q", cfg.Model)
	}
	if cfg.AwayTimeout != 4*time.Second {
		t.Fatalf("AwayTimeout=%v", cfg.AwayTimeout)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PRESCREEN_ADDR", "127.0.0.1:9000")
	t.Setenv("PRESCREEN_MODEL", "gemini-2.5-pro")
	t.Setenv("PRESCREEN_AWAY_TIMEOUT", "7s")
	t.Setenv("PRESCREEN_WEBHOOK_URL", "https://backend.example/hook")

	cfg := LoadFromEnv()
	if cfg.Addr != "127.0.0.1:9000" || cfg.Model != "gemini-2.5-pro" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.AwayTimeout != 7*time.Second {
		t.Fatalf("AwayTimeout=%v", cfg.AwayTimeout)
	}
	if cfg.WebhookURL != "https://backend.example/hook" {
		t.Fatalf("WebhookURL=%q", cfg.WebhookURL)
	}
}

func TestEnvDurationOr_InvalidFallsBack(t *testing.T) {
	t.Setenv("PRESCREEN_AWAY_TIMEOUT", "soon")
	if got := envDurationOr("PRESCREEN_AWAY_TIMEOUT", 4*time.Second); got != 4*time.Second {
		t.Fatalf("got %v, want the default for an unparsable value", got)
	}
}
