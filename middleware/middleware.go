// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries a per-request id to the backend for log correlation.
const RequestIDHeader = "X-Request-ID"

// Middleware wraps a RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Chain wraps base with mws. The first middleware is the outermost.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

// WithLogging logs the start and completion of every request
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			reqID := r.Header.Get(RequestIDHeader)

			logger.Debug("request started",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", reqID,
			)

			resp, err := next.RoundTrip(r)

			duration := time.Since(start)
			if err != nil {
				logger.Warn("request failed",
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", reqID,
					"duration_ms", duration.Milliseconds(),
					"error", err,
				)
				return nil, err
			}

			logger.Debug("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", resp.StatusCode,
				"request_id", reqID,
				"duration_ms", duration.Milliseconds(),
			)
			return resp, nil
		})
	}
}

// WithRequestID sets X-Request-ID on requests that do not carry one.
// An id pinned on the request context wins over a fresh one.
func WithRequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(r)
			}
			id := RequestIDFromContext(r.Context())
			if id == "" {
				id = uuid.NewString()
			}
			r = r.Clone(r.Context())
			r.Header.Set(RequestIDHeader, id)
			return next.RoundTrip(r)
		})
	}
}

// TokenSource returns the current bearer token, or "" when signed out.
type TokenSource func() string

// WithBearer adds the Authorization header when a token is available.
// Requests that already set Authorization are left alone.
func WithBearer(tokens TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if tokens == nil || r.Header.Get("Authorization") != "" {
				return next.RoundTrip(r)
			}
			token := tokens()
			if token == "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(r)
		})
	}
}

// WithRateLimit blocks until the limiter admits the request.
// A nil limiter disables limiting.
func WithRateLimit(limiter *rate.Limiter) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if limiter == nil {
			return next
		}
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if err := limiter.Wait(r.Context()); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
			return next.RoundTrip(r)
		})
	}
}

// NewLimiter builds a limiter for perSecond requests per second with a
// burst of the same size. perSecond <= 0 returns nil (no limiting).
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

type requestIDKey struct{}

// ContextWithRequestID pins the request id used for requests made with ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the pinned request id, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
