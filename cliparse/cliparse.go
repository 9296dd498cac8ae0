// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Session database types
const (
	DBTypeSQLite   = "sqlite"
	DBTypePostgres = "postgres"
)

// Output formats
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

const DefaultAPIURL = "http://localhost:8000/api/v1"

type Config struct {
	APIURL        string        `env:"STACKIT_API_URL" envDefault:"http://localhost:8000/api/v1"`
	SessionDB     string        `env:"STACKIT_SESSION_DB"`
	SessionDBType string        `env:"STACKIT_SESSION_DB_TYPE" envDefault:"sqlite"`
	Timeout       time.Duration `env:"STACKIT_TIMEOUT" envDefault:"15s"`
	RateLimit     float64       `env:"STACKIT_RATE_LIMIT" envDefault:"10"`
	Output        string        `env:"STACKIT_OUTPUT" envDefault:"table"`
	PollInterval  time.Duration `env:"STACKIT_POLL_INTERVAL" envDefault:"30s"`
	Debug         bool          `env:"STACKIT_DEBUG"`
}

// LoadDotEnv loads a .env file into the process environment.
// A missing file is not an error. Variables already set win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = os.Getenv("STACKIT_ENV_FILE")
	}
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a Config from environment variables and defaults.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.SessionDB == "" {
		cfg.SessionDB = defaultSessionDB()
	}
	return cfg, nil
}

// RegisterFlags binds cfg to fs. Current values of cfg become the flag
// defaults, so flags override environment which overrides built-in defaults.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "StackIt API base URL")
	fs.StringVar(&cfg.SessionDB, "session-db", cfg.SessionDB, "Session database path or URL")
	fs.StringVar(&cfg.SessionDBType, "session-db-type", cfg.SessionDBType, "Session database type (sqlite or postgres)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	fs.Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Max requests per second (0 disables)")
	fs.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format (table, json, yaml)")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Unread notification poll interval")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")
}

// Validate checks the resolved configuration.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL %q (want http(s)://host/...)", c.APIURL)
	}

	switch c.SessionDBType {
	case DBTypeSQLite, DBTypePostgres:
	default:
		return fmt.Errorf("invalid session database type %q (want sqlite or postgres)", c.SessionDBType)
	}
	if c.SessionDB == "" {
		return errors.New("session database required (use --session-db or STACKIT_SESSION_DB env)")
	}

	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("invalid output format %q (want table, json or yaml)", c.Output)
	}

	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}
	if c.PollInterval < time.Second {
		return errors.New("poll interval must be at least 1s")
	}
	return nil
}

func defaultSessionDB() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "stackit", "session.db")
	}
	return filepath.Join(home, ".stackit", "session.db")
}
