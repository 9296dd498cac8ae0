// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/stackit/auth"
	"github.com/danielhkuo/stackit/db"
	"github.com/danielhkuo/stackit/models"
)

const apiURL = "http://localhost:8000/api/v1"

func openSQLite(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(context.Background(), db.TypeSQLite, filepath.Join(t.TempDir(), "nested", "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	_, err := s.Load(ctx, apiURL)
	assert.ErrorIs(t, err, ErrNoSession)

	user := models.User{ID: 7, Username: "alice", Email: "alice@example.com"}
	require.NoError(t, s.Save(ctx, Record{APIURL: apiURL, Token: "tok-1", User: &user}))
	require.NoError(t, s.Save(ctx, Record{APIURL: apiURL, Token: "tok-2", User: &user}))

	rec, err := s.Load(ctx, apiURL)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", rec.Token)
	require.NotNil(t, rec.User)
	assert.Equal(t, "alice", rec.User.Username)
	assert.False(t, rec.SavedAt.IsZero())

	require.NoError(t, s.SaveUnread(ctx, apiURL, 4))
	n, err := s.LoadUnread(ctx, apiURL)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, s.Clear(ctx, apiURL))
	_, err = s.Load(ctx, apiURL)
	assert.ErrorIs(t, err, ErrNoSession)
	n, err = s.LoadUnread(ctx, apiURL)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Clearing twice is fine.
	assert.NoError(t, s.Clear(ctx, apiURL))
}

func TestStore_SessionsPerAPIURL(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	require.NoError(t, s.Save(ctx, Record{APIURL: "http://a/api/v1", Token: "a"}))
	require.NoError(t, s.Save(ctx, Record{APIURL: "http://b/api/v1", Token: "b"}))

	rec, err := s.Load(ctx, "http://a/api/v1")
	require.NoError(t, err)
	assert.Equal(t, "a", rec.Token)
	assert.Nil(t, rec.User)
}

func TestStore_Postgres(t *testing.T) {
	dsn := os.Getenv("STACKIT_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("STACKIT_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()
	s, err := OpenStore(ctx, db.TypePostgres, dsn)
	require.NoError(t, err)
	defer s.Close()

	url := "http://postgres-test/" + time.Now().Format("150405.000000")
	require.NoError(t, s.Save(ctx, Record{APIURL: url, Token: "tok"}))
	rec, err := s.Load(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, "tok", rec.Token)
	require.NoError(t, s.Clear(ctx, url))
}

func TestSession_StartRestoreEnd(t *testing.T) {
	ctx := context.Background()
	store := openSQLite(t)

	token, err := auth.IssueToken([]byte("secret"), 7, "alice", time.Now(), time.Hour)
	require.NoError(t, err)

	s := New(apiURL, store, nil)
	assert.False(t, s.LoggedIn())
	require.NoError(t, s.Start(ctx, token, models.User{ID: 7, Username: "alice"}))
	s.SetUnread(ctx, 3)

	restored := New(apiURL, store, nil)
	require.NoError(t, restored.Restore(ctx))
	assert.Equal(t, token, restored.Token())
	assert.Equal(t, int64(7), restored.UserID())
	assert.Equal(t, 3, restored.Unread().Get())

	updates, _ := restored.Unread().Subscribe()
	require.NoError(t, restored.End(ctx))
	assert.False(t, restored.LoggedIn())
	assert.Zero(t, restored.Unread().Get())
	_, open := <-updates
	assert.False(t, open, "End closes counter subscriptions")

	again := New(apiURL, store, nil)
	require.NoError(t, again.Restore(ctx))
	assert.False(t, again.LoggedIn())
}

func TestSession_RestoreDropsExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := openSQLite(t)

	expired, err := auth.IssueToken([]byte("secret"), 7, "alice", time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, Record{APIURL: apiURL, Token: expired}))

	s := New(apiURL, store, nil)
	require.NoError(t, s.Restore(ctx))
	assert.False(t, s.LoggedIn())

	_, err = store.Load(ctx, apiURL)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSession_StartRequiresToken(t *testing.T) {
	s := New(apiURL, nil, nil)
	err := s.Start(context.Background(), "", models.User{ID: 1})
	assert.ErrorIs(t, err, auth.ErrMissingToken)
}

func TestUnreadCounter(t *testing.T) {
	c := NewUnreadCounter()
	updates, cancel := c.Subscribe()

	c.Set(3)
	assert.Equal(t, 2, c.Add(-1))
	assert.Equal(t, 0, c.Add(-10), "floored at zero")

	// Only the newest value is buffered.
	assert.Equal(t, 0, <-updates)

	cancel()
	cancel()
	_, open := <-updates
	assert.False(t, open)

	c.Set(-5)
	assert.Zero(t, c.Get())
}

type fakeAuth struct {
	token    string
	user     models.User
	loginErr error
	meErr    error
	gotToken string
}

func (f *fakeAuth) Login(ctx context.Context, req models.LoginRequest) (models.TokenResponse, error) {
	if f.loginErr != nil {
		return models.TokenResponse{}, f.loginErr
	}
	return models.TokenResponse{AccessToken: f.token, TokenType: "bearer"}, nil
}

func (f *fakeAuth) MeWithToken(ctx context.Context, token string) (models.User, error) {
	f.gotToken = token
	if f.meErr != nil {
		return models.User{}, f.meErr
	}
	return f.user, nil
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	errBad := errors.New("Incorrect username or password")

	tests := []struct {
		name     string
		auth     *fakeAuth
		wantErr  error
		loggedIn bool
	}{
		{
			name:     "success",
			auth:     &fakeAuth{token: "tok", user: models.User{ID: 1, Username: "bob"}},
			loggedIn: true,
		},
		{
			name:    "bad credentials",
			auth:    &fakeAuth{loginErr: errBad},
			wantErr: errBad,
		},
		{
			name:    "me fails",
			auth:    &fakeAuth{token: "tok", meErr: errBad},
			wantErr: errBad,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(apiURL, openSQLite(t), nil)
			user, err := Login(ctx, tt.auth, s, "bob", "pw")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "bob", user.Username)
				assert.Equal(t, "tok", tt.auth.gotToken)
			}
			assert.Equal(t, tt.loggedIn, s.LoggedIn())
		})
	}
}
