// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"time"

	"github.com/danielhkuo/stackit/auth"
	"github.com/danielhkuo/stackit/models"
)

// TokenTTL is the lifetime of issued access tokens.
const TokenTTL = time.Hour

type AuthHandler struct {
	store *Store
}

func NewAuthHandler(store *Store) *AuthHandler {
	return &AuthHandler{store: store}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := ParseJSONBody(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	if _, taken := h.store.userByName(req.Username); taken {
		ErrorResponse(w, http.StatusBadRequest, "Username already registered")
		return
	}

	u := h.store.addUserLocked(req.Username, req.Email, req.Password)
	JSONResponse(w, http.StatusCreated, u)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := ParseJSONBody(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	h.store.mu.Lock()
	rec, ok := h.store.userByName(req.Username)
	h.store.mu.Unlock()
	if !ok || rec.password != req.Password {
		ErrorResponse(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := auth.IssueToken(h.store.secret, rec.user.ID, rec.user.Username, h.store.now(), TokenTTL)
	if err != nil {
		ErrorResponse(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	JSONResponse(w, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}
	JSONResponse(w, http.StatusOK, u)
}

// VerifyToken handles GET /auth/verify-token
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}
	JSONResponse(w, http.StatusOK, models.TokenVerification{Valid: true, UserID: u.ID, Username: u.Username})
}

// IssueToken returns a valid token for userID, for tests that skip login.
func (s *Store) IssueToken(userID int64) (string, error) {
	s.mu.Lock()
	username := s.usernameLocked(userID)
	s.mu.Unlock()
	return auth.IssueToken(s.secret, userID, username, s.now(), TokenTTL)
}
