// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

FromEnv reads the environment; RegisterFlags binds the same fields onto a
flag set so flags override it. Validate checks the result once flags are
parsed:

	cfg, _ := cliparse.FromEnv()
	cliparse.RegisterFlags(rootCmd.PersistentFlags(), &cfg)
	// after parsing
	err := cfg.Validate()

# Config Fields

  - APIURL: StackIt API base URL (default: http://localhost:8000/api/v1)
  - SessionDB: Session database path or URL (default: ~/.stackit/session.db)
  - SessionDBType: sqlite or postgres (default: sqlite)
  - Timeout: HTTP request timeout (default: 15s)
  - RateLimit: Requests per second, 0 disables (default: 10)
  - Output: table, json or yaml (default: table)
  - PollInterval: Unread notification poll interval (default: 30s)
  - Debug: Debug logging

# Environment Variables

Flags fall back to environment variables:

	STACKIT_API_URL          → --api-url
	STACKIT_SESSION_DB       → --session-db
	STACKIT_SESSION_DB_TYPE  → --session-db-type
	STACKIT_TIMEOUT          → --timeout
	STACKIT_RATE_LIMIT       → --rate-limit
	STACKIT_OUTPUT           → -o, --output
	STACKIT_POLL_INTERVAL    → --poll-interval
	STACKIT_DEBUG            → --debug

CLI flags take precedence over environment variables. LoadDotEnv reads a
.env file (STACKIT_ENV_FILE, default ./.env) into the environment first;
variables already set are not overwritten.
*/
package cliparse
