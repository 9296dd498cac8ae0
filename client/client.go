// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/stackit/auth"
	"github.com/danielhkuo/stackit/middleware"
	"github.com/danielhkuo/stackit/models"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Client talks to the StackIt REST API. It is safe for concurrent use.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	tokens   middleware.TokenSource
	validate *validator.Validate
	now      func() time.Time
	logger   *slog.Logger
}

type options struct {
	transport http.RoundTripper
	timeout   time.Duration
	tokens    middleware.TokenSource
	limit     float64
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Client.
type Option func(*options)

// WithTransport sets the base transport (default http.DefaultTransport).
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts middleware.TokenSource) Option {
	return func(o *options) { o.tokens = ts }
}

// WithRateLimit caps outgoing requests per second (0 disables).
func WithRateLimit(perSecond float64) Option {
	return func(o *options) { o.limit = perSecond }
}

// WithLogger sets the logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides time.Now, used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a Client for the API rooted at baseURL (for example
// http://localhost:8000/api/v1).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	o := options{
		transport: http.DefaultTransport,
		timeout:   15 * time.Second,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	rt := middleware.Chain(o.transport,
		middleware.WithRequestID(),
		middleware.WithLogging(o.logger),
		middleware.WithBearer(o.tokens),
		middleware.WithRateLimit(middleware.NewLimiter(o.limit)),
	)

	return &Client{
		baseURL:  u,
		http:     &http.Client{Transport: rt, Timeout: o.timeout},
		tokens:   o.tokens,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      o.now,
		logger:   o.logger,
	}, nil
}

// call describes one request.
type call struct {
	method   string
	path     string
	query    url.Values
	body     interface{}
	out      interface{}
	auth     bool // requires a session
	optional bool // empty or null body is acceptable
	token    string
}

// Authenticated reports whether a usable token is available.
func (c *Client) Authenticated() bool {
	return c.checkToken("") == nil
}

func (c *Client) checkToken(explicit string) error {
	token := explicit
	if token == "" && c.tokens != nil {
		token = c.tokens()
	}
	if token == "" {
		return ErrUnauthenticated
	}
	if err := auth.CheckExpiry(token, c.now()); err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return ErrSessionExpired
		}
		// Opaque tokens are left for the backend to judge.
		if errors.Is(err, auth.ErrInvalidToken) {
			return nil
		}
		return ErrUnauthenticated
	}
	return nil
}

func (c *Client) do(ctx context.Context, cl call) error {
	if cl.auth {
		if err := c.checkToken(cl.token); err != nil {
			return err
		}
	}

	fail := func(kind Kind, status int, msg string, err error) error {
		return &APIError{Kind: kind, Status: status, Message: msg, Method: cl.method, Path: cl.path, Err: err}
	}

	var body io.Reader
	if cl.body != nil {
		if err := c.validateValue(cl.body); err != nil {
			return fail(KindValidation, 0, validationMessage(err), err)
		}
		b, err := json.Marshal(cl.body)
		if err != nil {
			return fail(KindValidation, 0, "Invalid request", err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL.JoinPath(cl.path)
	// JoinPath drops the trailing slash the backend routes on.
	if strings.HasSuffix(cl.path, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return fail(KindTransport, 0, MsgGeneric, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(KindTransport, 0, MsgGeneric, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fail(KindTransport, resp.StatusCode, MsgGeneric, err)
	}

	if resp.StatusCode >= 400 {
		kind := kindForStatus(resp.StatusCode)
		return fail(kind, resp.StatusCode, errorMessage(kind, resp.StatusCode, data), nil)
	}

	if cl.out == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if cl.optional {
			return nil
		}
		return fail(KindDecode, resp.StatusCode, MsgBadResponse, errors.New("empty response body"))
	}
	if err := json.Unmarshal(trimmed, cl.out); err != nil {
		return fail(KindDecode, resp.StatusCode, MsgBadResponse, err)
	}
	if err := c.validateValue(cl.out); err != nil {
		c.logger.Warn("response failed validation", "method", cl.method, "path", cl.path, "error", err)
		return fail(KindDecode, resp.StatusCode, MsgBadResponse, err)
	}
	return nil
}

// validateValue validates structs, pointers to structs and slices of them.
func (c *Client) validateValue(v interface{}) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		return c.validate.Struct(rv.Interface())
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := 0; i < rv.Len(); i++ {
			if err := c.validateValue(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func errorMessage(kind Kind, status int, body []byte) string {
	var er models.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		if msg := er.Text(); msg != "" {
			return msg
		}
	}
	switch kind {
	case KindAuth:
		return MsgLoginRequired
	case KindValidation:
		return http.StatusText(status)
	default:
		return MsgGeneric
	}
}

// Page is the skip/limit pagination the backend uses.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) values() url.Values {
	q := url.Values{}
	if p.Skip > 0 {
		q.Set("skip", fmt.Sprint(p.Skip))
	}
	if p.Limit > 0 {
		q.Set("limit", fmt.Sprint(p.Limit))
	}
	return q
}
