// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides http.RoundTripper middleware for the API client.

# Chaining

Chain wraps a base transport; the first middleware listed runs first:

	transport := middleware.Chain(http.DefaultTransport,
		middleware.WithRequestID(),
		middleware.WithLogging(logger),
		middleware.WithBearer(sess.Token),
		middleware.WithRateLimit(middleware.NewLimiter(cfg.RateLimit)),
	)

# Logging

WithLogging logs request start and completion with method, path, status,
request id and duration_ms. Transport failures are logged at Warn.

# Request IDs

WithRequestID sets X-Request-ID from the context (ContextWithRequestID) or
a fresh UUID, so backend logs can be matched to a CLI invocation.

# Authentication

WithBearer adds "Authorization: Bearer <token>" when the TokenSource
returns a non-empty token.

# Rate Limiting

WithRateLimit waits on a golang.org/x/time/rate limiter before sending.
Waiting honours request context cancellation.
*/
package middleware
