// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/stackit/db"
	"github.com/danielhkuo/stackit/models"
)

// ErrNoSession is returned by Load when nothing is saved for the API URL.
var ErrNoSession = errors.New("no saved session")

// Record is a persisted login.
type Record struct {
	APIURL  string
	Token   string
	User    *models.User
	SavedAt time.Time
}

// Store persists sessions in the local database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// OpenStore opens the database and returns a store backed by it.
func OpenStore(ctx context.Context, dbType, dsn string) (*Store, error) {
	conn, err := db.Open(ctx, dbType, dsn)
	if err != nil {
		return nil, err
	}
	return NewStore(conn), nil
}

// NewStore wraps an already initialised connection.
func NewStore(conn *sql.DB) *Store {
	return &Store{db: conn, now: time.Now}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces the session for rec.APIURL.
func (s *Store) Save(ctx context.Context, rec Record) error {
	var (
		userID   sql.NullInt64
		username sql.NullString
		userJSON sql.NullString
	)
	if rec.User != nil {
		data, err := json.Marshal(rec.User)
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		userID = sql.NullInt64{Int64: rec.User.ID, Valid: true}
		username = sql.NullString{String: rec.User.Username, Valid: true}
		userJSON = sql.NullString{String: string(data), Valid: true}
	}

	savedAt := rec.SavedAt
	if savedAt.IsZero() {
		savedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_session (api_url, token, user_id, username, user_json, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (api_url) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			username = excluded.username,
			user_json = excluded.user_json,
			saved_at = excluded.saved_at
	`, rec.APIURL, rec.Token, userID, username, userJSON, savedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load returns the session saved for apiURL.
func (s *Store) Load(ctx context.Context, apiURL string) (Record, error) {
	var (
		rec      = Record{APIURL: apiURL}
		userJSON sql.NullString
		savedAt  int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT token, user_json, saved_at
		FROM saved_session
		WHERE api_url = $1
	`, apiURL).Scan(&rec.Token, &userJSON, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNoSession
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load session: %w", err)
	}

	if userJSON.Valid && userJSON.String != "" {
		var u models.User
		if err := json.Unmarshal([]byte(userJSON.String), &u); err != nil {
			return Record{}, fmt.Errorf("failed to decode saved user: %w", err)
		}
		rec.User = &u
	}
	rec.SavedAt = time.Unix(savedAt, 0)
	return rec, nil
}

// Clear deletes the session saved for apiURL. Clearing a missing session is
// not an error.
func (s *Store) Clear(ctx context.Context, apiURL string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM unread_count WHERE api_url = $1`, apiURL); err != nil {
		return fmt.Errorf("failed to clear unread count: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM saved_session WHERE api_url = $1`, apiURL); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return tx.Commit()
}

// SaveUnread records the last unread notification count for apiURL. The
// session must already be saved.
func (s *Store) SaveUnread(ctx context.Context, apiURL string, count int) error {
	if count < 0 {
		count = 0
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO unread_count (api_url, count, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (api_url) DO UPDATE SET
			count = excluded.count,
			updated_at = excluded.updated_at
	`, apiURL, count, s.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save unread count: %w", err)
	}
	return nil
}

// LoadUnread returns the last unread count saved for apiURL, or 0.
func (s *Store) LoadUnread(ctx context.Context, apiURL string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT count FROM unread_count WHERE api_url = $1`, apiURL).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load unread count: %w", err)
	}
	return count, nil
}
