package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "API_BASE_URL", "STORAGE_DSN", "REQUEST_TIMEOUT_SECONDS", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()
	if cfg.HTTPAddr != "127.0.0.1:8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.RequestTimeout)
	}
	if cfg.StorageDSN == "" || cfg.UsesPostgres() {
		t.Fatalf("expected file storage default, got %q", cfg.StorageDSN)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/v1/")
	t.Setenv("STORAGE_DSN", "postgres://u:p@db:5432/store")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "30")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test,")
	cfg := FromEnv()
	if cfg.APIBaseURL != "https://api.example.com/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.APIBaseURL)
	}
	if !cfg.UsesPostgres() {
		t.Fatalf("expected postgres storage")
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.RequestTimeout)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.test" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestEnvDurationIgnoresGarbage(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "soon")
	if got := FromEnv().ShutdownTimeout; got != 10*time.Second {
		t.Fatalf("expected default, got %v", got)
	}
}
