// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/stackit/auth"
	"github.com/danielhkuo/stackit/models"
)

const defaultLimit = 100

var validate = validator.New(validator.WithRequiredStructEnabled())

// WithLogging wraps a handler with request logging
func WithLogging(logger *slog.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		logger.Debug("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"request_id", r.Header.Get("X-Request-ID"),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes an error body in the backend's {"detail": ...} shape
func ErrorResponse(w http.ResponseWriter, statusCode int, detail string) {
	JSONResponse(w, statusCode, models.ErrorResponse{Detail: models.DetailString(detail)})
}

// ParseJSONBody parses and validates the request body
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}

func writeBodyError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		ErrorResponse(w, http.StatusUnprocessableEntity, verrs[0].Field()+" is invalid")
		return
	}
	ErrorResponse(w, http.StatusUnprocessableEntity, "Invalid JSON")
}

// currentUser resolves the bearer token. It writes 401 and returns false
// when the request is not authenticated.
func (s *Store) currentUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		ErrorResponse(w, http.StatusUnauthorized, "Not authenticated")
		return models.User{}, false
	}

	id, err := auth.VerifyToken(s.secret, token, s.now())
	if err != nil {
		ErrorResponse(w, http.StatusUnauthorized, "Could not validate credentials")
		return models.User{}, false
	}

	s.mu.Lock()
	rec, ok := s.users[id]
	s.mu.Unlock()
	if !ok {
		ErrorResponse(w, http.StatusUnauthorized, "Could not validate credentials")
		return models.User{}, false
	}
	return rec.user, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(w, http.StatusUnprocessableEntity, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func pageParams(r *http.Request) (skip, limit int) {
	q := r.URL.Query()
	skip, _ = strconv.Atoi(q.Get("skip"))
	limit, _ = strconv.Atoi(q.Get("limit"))
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return skip, limit
}

// optionalUser resolves the bearer token if one is sent. Anonymous and
// invalid tokens both yield false without writing a response.
func (s *Store) optionalUser(r *http.Request) (models.User, bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || token == "" {
		return models.User{}, false
	}
	id, err := auth.VerifyToken(s.secret, token, s.now())
	if err != nil {
		return models.User{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	return rec.user, true
}
