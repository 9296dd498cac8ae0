// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

// parse resolves a Config the way the stackit root command does:
// environment first, then flags bound on top, then validation.
func parse(args []string) (Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	fs := pflag.NewFlagSet("stackit", pflag.ContinueOnError)
	RegisterFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func TestConfig_Defaults(t *testing.T) {
	t.Setenv("STACKIT_SESSION_DB", "/tmp/stackit-test.db")

	cfg, err := parse([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected default API URL, got %s", cfg.APIURL)
	}
	if cfg.SessionDBType != DBTypeSQLite {
		t.Errorf("expected sqlite, got %s", cfg.SessionDBType)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("expected 15s timeout, got %v", cfg.Timeout)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("expected 30s poll interval, got %v", cfg.PollInterval)
	}
	if cfg.Output != OutputTable {
		t.Errorf("expected table output, got %s", cfg.Output)
	}
}

func TestConfig_EnvVars(t *testing.T) {
	t.Setenv("STACKIT_API_URL", "https://stackit.example.com/api/v1")
	t.Setenv("STACKIT_SESSION_DB", "postgres://stackit@localhost/sessions")
	t.Setenv("STACKIT_SESSION_DB_TYPE", "postgres")
	t.Setenv("STACKIT_TIMEOUT", "3s")
	t.Setenv("STACKIT_OUTPUT", "json")

	cfg, err := parse([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.APIURL != "https://stackit.example.com/api/v1" {
		t.Errorf("expected env API URL, got %s", cfg.APIURL)
	}
	if cfg.SessionDBType != DBTypePostgres {
		t.Errorf("expected postgres, got %s", cfg.SessionDBType)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.Timeout)
	}
	if cfg.Output != OutputJSON {
		t.Errorf("expected json, got %s", cfg.Output)
	}
}

func TestConfig_CLIOverridesEnv(t *testing.T) {
	t.Setenv("STACKIT_API_URL", "http://env.example.com")
	t.Setenv("STACKIT_SESSION_DB", "/tmp/env.db")

	cfg, err := parse([]string{"--api-url", "http://flag.example.com/api/v1", "-o", "yaml", "--rate-limit", "0"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.APIURL != "http://flag.example.com/api/v1" {
		t.Errorf("CLI should override env: got %s", cfg.APIURL)
	}
	if cfg.Output != OutputYAML {
		t.Errorf("expected yaml, got %s", cfg.Output)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("expected rate limit 0, got %v", cfg.RateLimit)
	}
}

func TestConfig_Invalid(t *testing.T) {
	t.Setenv("STACKIT_SESSION_DB", "/tmp/stackit-test.db")

	tests := []struct {
		name string
		args []string
	}{
		{"bad url", []string{"--api-url", "ftp://example.com"}},
		{"relative url", []string{"--api-url", "/api/v1"}},
		{"bad db type", []string{"--session-db-type", "mysql"}},
		{"bad output", []string{"-o", "xml"}},
		{"zero timeout", []string{"--timeout", "0s"}},
		{"negative rate", []string{"--rate-limit", "-1"}},
		{"short poll", []string{"--poll-interval", "10ms"}},
		{"unknown flag", []string{"--nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parse(tt.args); err == nil {
				t.Errorf("parse(%v) expected error", tt.args)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("STACKIT_OUTPUT=json\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STACKIT_OUTPUT", "")
	os.Unsetenv("STACKIT_OUTPUT")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("STACKIT_OUTPUT"); got != "json" {
		t.Errorf("expected STACKIT_OUTPUT=json, got %q", got)
	}

	// Missing file is fine
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("LoadDotEnv() on missing file error = %v", err)
	}
}
