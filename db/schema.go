// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the session store.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// One statement per entry; the SQL is the common subset of SQLite and
// PostgreSQL.
var schema = []string{
	// Sessions, one per API base URL
	`CREATE TABLE IF NOT EXISTS saved_session (
    api_url TEXT PRIMARY KEY,
    token TEXT NOT NULL,
    user_id BIGINT,
    username TEXT,
    user_json TEXT,
    saved_at BIGINT NOT NULL
)`,

	// Last unread-count seen by the poller
	`CREATE TABLE IF NOT EXISTS unread_count (
    api_url TEXT PRIMARY KEY REFERENCES saved_session(api_url) ON DELETE CASCADE,
    count INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0),
    updated_at BIGINT NOT NULL
)`,

	`CREATE INDEX IF NOT EXISTS idx_saved_session_user_id ON saved_session(user_id)`,
}
