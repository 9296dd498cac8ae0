// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/stackit/auth"
	"github.com/danielhkuo/stackit/client"
	"github.com/danielhkuo/stackit/models"
	"github.com/danielhkuo/stackit/testutil"
)

func newClient(t *testing.T, baseURL, token string, opts ...client.Option) *client.Client {
	t.Helper()
	opts = append([]client.Option{
		client.WithLogger(testutil.QuietLogger()),
		client.WithTokenSource(func() string { return token }),
		client.WithRateLimit(0),
	}, opts...)
	c, err := client.New(baseURL, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8000", "://bad"} {
		_, err := client.New(raw)
		assert.Error(t, err, raw)
	}
}

func TestLoginAndMe(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Store.AddUser("alice", "alice@example.com", testutil.TestPassword)
	ctx := context.Background()

	anon := newClient(t, api.URL(), "")
	tok, err := anon.Login(ctx, models.LoginRequest{Username: "alice", Password: testutil.TestPassword})
	require.NoError(t, err)

	me, err := anon.MeWithToken(ctx, tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	authed := newClient(t, api.URL(), tok.AccessToken)
	v, err := authed.VerifyToken(ctx)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, me.ID, v.UserID)
}

func TestLogin_WrongPassword(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Store.AddUser("alice", "alice@example.com", testutil.TestPassword)

	_, err := newClient(t, api.URL(), "").Login(context.Background(), models.LoginRequest{Username: "alice", Password: "nope"})

	require.Error(t, err)
	assert.True(t, client.IsAuth(err))
	assert.Equal(t, "Incorrect username or password", client.Message(err))
}

func TestAuthRequiredCallsNeverLeaveWithoutToken(t *testing.T) {
	api := testutil.NewFakeAPI(t)

	_, err := newClient(t, api.URL(), "").Me(context.Background())

	assert.ErrorIs(t, err, client.ErrUnauthenticated)
	assert.Equal(t, client.MsgLoginRequired, client.Message(err))
	assert.Zero(t, api.Requests(http.MethodGet, "/auth/me"))
}

func TestExpiredTokenRefusedBeforeSending(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	_, token := api.User(t, "alice")

	later := func() time.Time { return time.Now().Add(2 * time.Hour) }
	c := newClient(t, api.URL(), token, client.WithClock(later))

	_, err := c.UnreadCount(context.Background())

	assert.ErrorIs(t, err, client.ErrSessionExpired)
	assert.False(t, c.Authenticated())
	assert.Zero(t, api.Requests(http.MethodGet, "/notifications/unread-count"))
}

func TestOpaqueTokenIsLeftToBackend(t *testing.T) {
	api := testutil.NewFakeAPI(t)

	_, err := newClient(t, api.URL(), "opaque-token").Me(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, api.Requests(http.MethodGet, "/auth/me"))
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestErrorTaxonomy(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	owner, token := api.User(t, "owner")
	q := api.Store.AddQuestion(owner.ID, "How do maps grow?", "body", "go")
	c := newClient(t, api.URL(), token)
	path := "/questions/" + itoa(q.ID)

	tests := []struct {
		name    string
		status  int
		detail  string
		kind    client.Kind
		message string
	}{
		{"server error", http.StatusInternalServerError, "", client.KindTransport, client.MsgGeneric},
		{"bad gateway with detail", http.StatusBadGateway, "upstream down", client.KindTransport, "upstream down"},
		{"forbidden", http.StatusForbidden, "Not allowed", client.KindAuth, "Not allowed"},
		{"unauthorized without detail", http.StatusUnauthorized, "", client.KindAuth, client.MsgLoginRequired},
		{"validation", http.StatusUnprocessableEntity, "title too short", client.KindValidation, "title too short"},
		{"not found", http.StatusNotFound, "Question not found", client.KindValidation, "Question not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api.FailNext(http.MethodGet, path, tt.status, tt.detail)

			_, err := c.GetQuestion(context.Background(), q.ID)

			require.Error(t, err)
			assert.Equal(t, tt.kind, client.KindOf(err))
			assert.Equal(t, tt.message, client.Message(err))
		})
	}

	// The queue is drained; the next call reaches the handler.
	got, err := c.GetQuestion(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.Title, got.Title)
}

func TestRequestValidatedBeforeSending(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	_, token := api.User(t, "alice")

	_, err := newClient(t, api.URL(), token).CreateQuestion(context.Background(), models.CreateQuestionRequest{
		Title:       "Hi",
		Description: "too short a title",
		Tags:        []string{"go"},
	})

	require.Error(t, err)
	assert.Equal(t, client.KindValidation, client.KindOf(err))
	assert.Equal(t, "Title must be at least 5", client.Message(err))
	assert.Zero(t, api.Requests(http.MethodPost, "/questions/"))
}

func TestResponseFailingSchemaIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 0, "title": ""}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL, "").GetQuestion(context.Background(), 1)

	require.Error(t, err)
	assert.Equal(t, client.KindDecode, client.KindOf(err))
	assert.Equal(t, client.MsgBadResponse, client.Message(err))
}

func TestEmptyBodyHandling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	c := newClient(t, srv.URL, "")

	// Lists tolerate an empty body
	qs, err := c.ListQuestions(context.Background(), client.QuestionFilter{})
	require.NoError(t, err)
	assert.Empty(t, qs)

	// A single record does not
	_, err = c.GetQuestion(context.Background(), 1)
	assert.Equal(t, client.KindDecode, client.KindOf(err))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(t, url, "").Topics(context.Background())

	require.Error(t, err)
	assert.Equal(t, client.KindTransport, client.KindOf(err))
	assert.Equal(t, client.MsgGeneric, client.Message(err))
}

func TestFieldDetailList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["body","title"],"msg":"field required","type":"value_error.missing"}]}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL, "").GetQuestion(context.Background(), 1)

	require.Error(t, err)
	assert.Equal(t, client.KindValidation, client.KindOf(err))
	assert.Contains(t, client.Message(err), "field required")
}

func TestVoteEndpoints(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	owner, _ := api.User(t, "owner")
	_, token := api.User(t, "voter")
	q := api.Store.AddQuestion(owner.ID, "Tabs or spaces?", "body", "style")
	a := api.Store.AddAnswer(q.ID, owner.ID, "gofmt decides")
	c := newClient(t, api.URL(), token)
	ctx := context.Background()

	v, err := c.MyVote(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VoteNone, v)

	res, err := c.CastVote(ctx, a.ID, models.VoteUp)
	require.NoError(t, err)
	require.NotNil(t, res.TotalScore)
	assert.Equal(t, 1, *res.TotalScore)

	stats, err := c.VoteStats(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Upvotes)
	require.NotNil(t, stats.UserVote)
	assert.Equal(t, models.VoteUp, *stats.UserVote)

	v, err = c.MyVote(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VoteUp, v)

	_, err = c.RemoveVote(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, api.Store.Score(a.ID))
}

func TestAcceptAnswer_BodyShapes(t *testing.T) {
	t.Run("answer record", func(t *testing.T) {
		api := testutil.NewFakeAPI(t)
		owner, token := api.User(t, "owner")
		q := api.Store.AddQuestion(owner.ID, "Best HTTP router?", "body", "go")
		a := api.Store.AddAnswer(q.ID, owner.ID, "net/http")

		got, err := newClient(t, api.URL(), token).AcceptAnswer(context.Background(), a.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.IsAccepted)
	})

	t.Run("bare message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"message":"Answer accepted"}`))
		}))
		defer srv.Close()
		token, err := auth.IssueToken([]byte("k"), 1, "owner", time.Now(), time.Hour)
		require.NoError(t, err)

		got, err := newClient(t, srv.URL, token).AcceptAnswer(context.Background(), 7)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestContextCanceled(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient(t, api.URL(), "").Topics(ctx)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, client.MsgGeneric, client.Message(err))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
