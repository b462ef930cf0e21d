// Package config loads process configuration from AUTOGRADE_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/autograde/internal/logging"
	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config is the process configuration.
type Config struct {
	ListenAddr    string        `env:"LISTEN_ADDR" envDefault:":8080"`
	Catalog       string        `env:"CATALOG" envDefault:"exercises.yaml"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"LOG_FORMAT" envDefault:"text"`
	HookTimeout   time.Duration `env:"HOOK_TIMEOUT" envDefault:"5s"`
	Home          string        `env:"HOME_DIR"`
	Store         string        `env:"STORE" envDefault:"memory"`
	StorePath     string        `env:"STORE_PATH"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"0s"`
	Markdown      bool          `env:"MARKDOWN" envDefault:"false"`
	Color         bool          `env:"COLOR" envDefault:"true"`
	CORSOrigins   []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	Hooks         string        `env:"HOOKS"`

	// StoreKey enables at-rest encryption of progress records. Keys are
	// base64-encoded 32-byte AES keys; fallbacks are only used to decrypt.
	StoreKey          string `env:"STORE_KEY"`
	StoreFallbackKeys string `env:"STORE_FALLBACK_KEYS"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "AUTOGRADE_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated values and required combinations.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	case StoreSQLite:
		if c.StorePath == "" {
			return fmt.Errorf("store %q requires AUTOGRADE_STORE_PATH", c.Store)
		}
	default:
		return fmt.Errorf("unknown store %q (want memory, file, redis or sqlite)", c.Store)
	}
	if c.StoreKey == "" && c.StoreFallbackKeys != "" {
		return fmt.Errorf("AUTOGRADE_STORE_FALLBACK_KEYS requires AUTOGRADE_STORE_KEY")
	}
	if c.HookTimeout < 0 {
		return fmt.Errorf("hook timeout must not be negative")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return err
	}
	return nil
}

// Logger builds the process logger from the level and format settings.
func (c *Config) Logger() *slog.Logger {
	level, _ := logging.ParseLevel(c.LogLevel)
	format, _ := logging.ParseFormat(c.LogFormat)
	return logging.NewWithFormat(os.Stderr, level, format)
}
