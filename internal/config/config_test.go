package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.BackendTimeout != 15*time.Second {
		t.Errorf("expected 15s timeout, got %v", cfg.BackendTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ARMOURY_BACKEND_URL", "https://backend.example")
	t.Setenv("ARMOURY_SCAN_IDLE_TTL", "2m")
	t.Setenv("ARMOURY_OTEL_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != "https://backend.example" {
		t.Errorf("unexpected backend url %q", cfg.BackendURL)
	}
	if cfg.ScanIdleTTL != 2*time.Minute {
		t.Errorf("unexpected ttl %v", cfg.ScanIdleTTL)
	}
	if cfg.OTelEnabled {
		t.Error("expected otel disabled")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("ARMOURY_CACHE_MAX_AGE", "soon")
	if _, err := Load(); err == nil {
		t.Error("expected error for invalid duration")
	}
}
