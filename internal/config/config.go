package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	APIBaseURL      string
	StorageDSN      string
	Installation    string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	LogLevel        string
	TrackingWindow  time.Duration
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() Config {
	return Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", "127.0.0.1:8080"),
		APIBaseURL:      strings.TrimRight(envOrDefault("API_BASE_URL", "http://localhost:8000/api"), "/"),
		StorageDSN:      envOrDefault("STORAGE_DSN", defaultStoragePath()),
		Installation:    envOrDefault("STORAGE_INSTALLATION", defaultInstallation()),
		RequestTimeout:  envDuration("REQUEST_TIMEOUT_SECONDS", 15*time.Second),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		AllowedOrigins:  envList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		TrackingWindow:  envDuration("TRACKING_WINDOW_SECONDS", 2*time.Second),
	}
}

// UsesPostgres reports whether client storage lives in postgres rather than a local file.
func (c Config) UsesPostgres() bool {
	return strings.HasPrefix(c.StorageDSN, "postgres://") || strings.HasPrefix(c.StorageDSN, "postgresql://")
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "storefront", "storage.json")
	}
	return filepath.Join(home, ".storefront", "storage.json")
}

func defaultInstallation() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "default"
	}
	return host
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
