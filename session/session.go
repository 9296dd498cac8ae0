// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/stackit/auth"
	"github.com/danielhkuo/stackit/models"
)

var timeNow = time.Now

// Session is the identity every view of the client works under: the bearer
// token, the resolved user and the shared unread counter. A nil Store keeps
// the session in memory only.
type Session struct {
	apiURL string
	store  *Store
	logger *slog.Logger
	unread *UnreadCounter

	mu    sync.RWMutex
	token string
	user  *models.User
}

// New creates a logged-out session for apiURL.
func New(apiURL string, store *Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		apiURL: apiURL,
		store:  store,
		logger: logger,
		unread: NewUnreadCounter(),
	}
}

// Restore loads the saved session. A missing or expired session leaves s
// logged out and is not an error; an expired one is also deleted.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	rec, err := s.store.Load(ctx, s.apiURL)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := auth.CheckExpiry(rec.Token, timeNow()); errors.Is(err, auth.ErrExpiredToken) {
		s.logger.Info("saved session expired", "api_url", s.apiURL)
		return s.store.Clear(ctx, s.apiURL)
	}

	unread, err := s.store.LoadUnread(ctx, s.apiURL)
	if err != nil {
		s.logger.Warn("could not load unread count", "error", err)
	}

	s.mu.Lock()
	s.token = rec.Token
	s.user = rec.User
	s.mu.Unlock()
	s.unread.Set(unread)
	return nil
}

// Start records a successful login and persists it.
func (s *Session) Start(ctx context.Context, token string, user models.User) error {
	if token == "" {
		return auth.ErrMissingToken
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, Record{APIURL: s.apiURL, Token: token, User: &user}); err != nil {
		return fmt.Errorf("login succeeded but could not be saved: %w", err)
	}
	return nil
}

// End logs out: it forgets the token and user, zeroes the unread counter,
// closes its subscriptions and deletes the saved session.
func (s *Session) End(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	s.unread.reset()

	if s.store == nil {
		return nil
	}
	return s.store.Clear(ctx, s.apiURL)
}

// Token returns the bearer token, or "" when logged out. It satisfies
// middleware.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the logged-in user.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// UserID returns the logged-in user's id, or 0.
func (s *Session) UserID() int64 {
	u, ok := s.User()
	if !ok {
		return 0
	}
	return u.ID
}

// LoggedIn reports whether a token is held.
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// Unread returns the shared unread counter.
func (s *Session) Unread() *UnreadCounter {
	return s.unread
}

// SetUnread updates the counter and persists the value. Persistence errors
// are logged only.
func (s *Session) SetUnread(ctx context.Context, count int) {
	s.unread.Set(count)
	if s.store == nil || !s.LoggedIn() {
		return
	}
	if err := s.store.SaveUnread(ctx, s.apiURL, s.unread.Get()); err != nil {
		s.logger.Warn("could not save unread count", "error", err)
	}
}

// Authenticator is the part of the API client the login flow needs.
type Authenticator interface {
	Login(ctx context.Context, req models.LoginRequest) (models.TokenResponse, error)
	MeWithToken(ctx context.Context, token string) (models.User, error)
}

// Login exchanges credentials for a token, resolves the user behind it and
// starts the session. Nothing is stored unless both calls succeed.
func Login(ctx context.Context, a Authenticator, s *Session, username, password string) (models.User, error) {
	tok, err := a.Login(ctx, models.LoginRequest{Username: username, Password: password})
	if err != nil {
		return models.User{}, err
	}

	user, err := a.MeWithToken(ctx, tok.AccessToken)
	if err != nil {
		return models.User{}, err
	}

	if err := s.Start(ctx, tok.AccessToken, user); err != nil {
		return models.User{}, err
	}
	s.logger.Info("logged in", "username", user.Username)
	return user, nil
}
