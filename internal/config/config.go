// Package config loads runtime settings from ARMOURY_* environment variables.
// Command-line flags in cmd/armoury override them.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the dashboard's runtime settings.
type Config struct {
	Addr    string `env:"ADDR" envDefault:":8080"`
	DBPath  string `env:"DB" envDefault:"armoury.sqlite3"`
	LogPath string `env:"LOG"`

	BackendURL     string        `env:"BACKEND_URL" envDefault:"http://localhost:5000"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"15s"`
	BackendSecret  string        `env:"BACKEND_SECRET"`

	DeviceURL string `env:"DEVICE_URL" envDefault:"http://localhost:8004/mfs100"`

	CacheMaxAge   time.Duration `env:"CACHE_MAX_AGE" envDefault:"1m"`
	ScanIdleTTL   time.Duration `env:"SCAN_IDLE_TTL" envDefault:"15m"`
	WorkspaceIdle time.Duration `env:"WORKSPACE_IDLE_TTL" envDefault:"24h"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "ARMOURY_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
