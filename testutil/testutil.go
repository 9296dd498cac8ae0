// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/danielhkuo/stackit/handlers"
	"github.com/danielhkuo/stackit/models"
	"github.com/danielhkuo/stackit/router"
)

// TestSecret signs the tokens the fake API issues
var TestSecret = []byte("stackit-test-secret")

// TestPassword is the password of users created with FakeAPI.User
const TestPassword = "password123"

type failure struct {
	status int
	detail string
}

// FakeAPI is an httptest server running the in-memory backend. Paths given
// to its methods are relative to the API prefix, for example "/votes/".
type FakeAPI struct {
	Store  *handlers.Store
	server *httptest.Server

	mu       sync.Mutex
	failures map[string][]failure
	requests map[string]int
}

// NewFakeAPI starts a fake backend that is shut down when the test ends
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		Store:    handlers.NewStore(TestSecret),
		failures: make(map[string][]failure),
		requests: make(map[string]int),
	}
	mux := router.NewRouter(f.Store, QuietLogger())
	f.server = httptest.NewServer(f.intercept(mux))
	t.Cleanup(f.server.Close)
	return f
}

func (f *FakeAPI) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + strings.TrimPrefix(r.URL.Path, router.Prefix)

		f.mu.Lock()
		f.requests[key]++
		var fail *failure
		if queued := f.failures[key]; len(queued) > 0 {
			fail = &queued[0]
			f.failures[key] = queued[1:]
		}
		f.mu.Unlock()

		if fail != nil {
			// Drain the body so the client sees a clean response.
			io.Copy(io.Discard, r.Body)
			handlers.ErrorResponse(w, fail.status, fail.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// URL returns the API base URL to hand to client.New
func (f *FakeAPI) URL() string {
	return f.server.URL + router.Prefix
}

// FailNext makes the next request to method and path answer status with
// detail instead of reaching the handler. Calls queue up.
func (f *FakeAPI) FailNext(method, path string, status int, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + path
	f.failures[key] = append(f.failures[key], failure{status: status, detail: detail})
}

// Requests returns how many requests reached method and path, failed ones included
func (f *FakeAPI) Requests(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[method+" "+path]
}

// User creates a user and returns it with a valid access token
func (f *FakeAPI) User(t *testing.T, username string) (models.User, string) {
	t.Helper()
	u := f.Store.AddUser(username, username+"@example.com", TestPassword)
	token, err := f.Store.IssueToken(u.ID)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return u, token
}

// QuietLogger discards everything
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// Bearer returns the Authorization header for token
func Bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
