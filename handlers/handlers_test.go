// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/danielhkuo/stackit/handlers"
	"github.com/danielhkuo/stackit/models"
	"github.com/danielhkuo/stackit/router"
	"github.com/danielhkuo/stackit/testutil"
)

type backend struct {
	t     *testing.T
	store *handlers.Store
	mux   *http.ServeMux
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	store := handlers.NewStore(testutil.TestSecret)
	return &backend{t: t, store: store, mux: router.NewRouter(store, testutil.QuietLogger())}
}

func (b *backend) user(name string) (models.User, string) {
	b.t.Helper()
	u := b.store.AddUser(name, name+"@example.com", testutil.TestPassword)
	token, err := b.store.IssueToken(u.ID)
	if err != nil {
		b.t.Fatalf("Failed to issue token: %v", err)
	}
	return u, token
}

func (b *backend) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	b.t.Helper()
	var headers map[string]string
	if token != "" {
		headers = testutil.Bearer(token)
	}
	w := httptest.NewRecorder()
	b.mux.ServeHTTP(w, testutil.MakeRequest(method, router.Prefix+path, body, headers))
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	b := newBackend(t)

	w := b.do("POST", "/auth/register", "", models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = b.do("POST", "/auth/register", "", models.RegisterRequest{Username: "alice", Email: "other@example.com", Password: "secret1"})
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = b.do("POST", "/auth/login", "", models.LoginRequest{Username: "alice", Password: "wrong"})
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = b.do("POST", "/auth/login", "", models.LoginRequest{Username: "alice", Password: "secret1"})
	testutil.AssertStatus(t, w, http.StatusOK)
	var tok models.TokenResponse
	testutil.AssertJSON(t, w, &tok)
	if tok.AccessToken == "" || tok.TokenType != "bearer" {
		t.Fatalf("Unexpected token response: %+v", tok)
	}

	w = b.do("GET", "/auth/me", tok.AccessToken, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var me models.User
	testutil.AssertJSON(t, w, &me)
	if me.Username != "alice" {
		t.Errorf("Expected alice, got %q", me.Username)
	}
}

func TestAuthRequired(t *testing.T) {
	b := newBackend(t)

	testCases := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{"no token", "GET", "/auth/me", ""},
		{"garbage token", "GET", "/notifications/", "not-a-jwt"},
		{"vote without login", "POST", "/votes/", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := b.do(tc.method, tc.path, tc.token, nil)
			testutil.AssertStatus(t, w, http.StatusUnauthorized)
		})
	}
}

func TestVoteToggleAndSwitch(t *testing.T) {
	b := newBackend(t)
	owner, _ := b.user("owner")
	answerer, _ := b.user("answerer")
	_, voter := b.user("voter")
	q := b.store.AddQuestion(owner.ID, "Why is the sky blue?", "body", "physics")
	a := b.store.AddAnswer(q.ID, answerer.ID, "Rayleigh scattering")

	steps := []struct {
		name      string
		value     int
		wantValue int
		wantScore int
	}{
		{"upvote", models.VoteUp, models.VoteUp, 1},
		{"same value toggles off", models.VoteUp, models.VoteNone, 0},
		{"downvote", models.VoteDown, models.VoteDown, -1},
		{"switch to up", models.VoteUp, models.VoteUp, 1},
	}

	for _, step := range steps {
		w := b.do("POST", "/votes/", voter, models.CastVoteRequest{AnswerID: a.ID, Value: step.value})
		testutil.AssertStatus(t, w, http.StatusOK)

		var res models.VoteResult
		testutil.AssertJSON(t, w, &res)
		if res.Value != step.wantValue {
			t.Errorf("%s: expected value %d, got %d", step.name, step.wantValue, res.Value)
		}
		if res.TotalScore == nil || *res.TotalScore != step.wantScore {
			t.Errorf("%s: expected score %d, got %v", step.name, step.wantScore, res.TotalScore)
		}
	}

	w := b.do("GET", "/votes/answer/"+itoa(a.ID)+"/my-vote", voter, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var v models.Vote
	testutil.AssertJSON(t, w, &v)
	if v.Value != models.VoteUp {
		t.Errorf("Expected my-vote 1, got %d", v.Value)
	}

	w = b.do("DELETE", "/votes/answer/"+itoa(a.ID), voter, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	if got := b.store.Score(a.ID); got != 0 {
		t.Errorf("Expected score 0 after removal, got %d", got)
	}

	w = b.do("GET", "/votes/answer/"+itoa(a.ID)+"/my-vote", voter, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	if body := w.Body.String(); body != "null\n" {
		t.Errorf("Expected null body, got %q", body)
	}
}

func TestVoteScoreControls(t *testing.T) {
	b := newBackend(t)
	owner, _ := b.user("owner")
	_, voter := b.user("voter")
	q := b.store.AddQuestion(owner.ID, "Which editor?", "body", "tools")
	a := b.store.AddAnswer(q.ID, owner.ID, "vim")

	b.store.SetScoreOverride(a.ID, 5)
	w := b.do("POST", "/votes/", voter, models.CastVoteRequest{AnswerID: a.ID, Value: models.VoteUp})
	var res models.VoteResult
	testutil.AssertJSON(t, w, &res)
	if res.TotalScore == nil || *res.TotalScore != 5 {
		t.Errorf("Expected overridden score 5, got %v", res.TotalScore)
	}

	b.store.OmitVoteScore(true)
	w = b.do("POST", "/votes/", voter, models.CastVoteRequest{AnswerID: a.ID, Value: models.VoteDown})
	res = models.VoteResult{}
	testutil.AssertJSON(t, w, &res)
	if res.TotalScore != nil {
		t.Errorf("Expected no total_score, got %d", *res.TotalScore)
	}
}

func TestAcceptRules(t *testing.T) {
	b := newBackend(t)
	owner, ownerToken := b.user("owner")
	answerer, answererToken := b.user("answerer")
	q := b.store.AddQuestion(owner.ID, "How to exit vim?", "body", "vim")
	first := b.store.AddAnswer(q.ID, answerer.ID, ":q")
	second := b.store.AddAnswer(q.ID, answerer.ID, ":wq")

	w := b.do("POST", "/answers/accept", answererToken, models.AcceptAnswerRequest{AnswerID: first.ID})
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = b.do("POST", "/answers/accept", ownerToken, models.AcceptAnswerRequest{AnswerID: first.ID})
	testutil.AssertStatus(t, w, http.StatusOK)
	var accepted models.Answer
	testutil.AssertJSON(t, w, &accepted)
	if !accepted.IsAccepted {
		t.Error("Expected answer to be accepted")
	}

	w = b.do("POST", "/answers/accept", ownerToken, models.AcceptAnswerRequest{AnswerID: second.ID})
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	stored, _ := b.store.Question(q.ID)
	if stored.AcceptedAnswerID == nil || *stored.AcceptedAnswerID != first.ID {
		t.Errorf("Expected accepted answer %d, got %v", first.ID, stored.AcceptedAnswerID)
	}
}

func TestAnswerNotifiesQuestionOwner(t *testing.T) {
	b := newBackend(t)
	owner, ownerToken := b.user("owner")
	_, answererToken := b.user("answerer")
	q := b.store.AddQuestion(owner.ID, "What is a goroutine?", "body", "go")

	w := b.do("POST", "/answers/", answererToken, models.CreateAnswerRequest{QuestionID: q.ID, Description: "A lightweight thread"})
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = b.do("GET", "/notifications/unread-count", ownerToken, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var count models.UnreadCount
	testutil.AssertJSON(t, w, &count)
	if count.Count != 1 {
		t.Errorf("Expected 1 unread notification, got %d", count.Count)
	}

	stored, _ := b.store.Question(q.ID)
	if stored.AnswerCount != 1 {
		t.Errorf("Expected answer count 1, got %d", stored.AnswerCount)
	}
}

func TestNotificationsAreScoped(t *testing.T) {
	b := newBackend(t)
	alice, aliceToken := b.user("alice")
	_, bobToken := b.user("bob")
	n := b.store.AddNotification(alice.ID, models.NotificationMention, "hi", false)
	b.store.AddNotification(alice.ID, models.NotificationVote, "voted", true)

	w := b.do("PUT", "/notifications/"+itoa(n.ID)+"/read", bobToken, nil)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = b.do("GET", "/notifications/?unread_only=true", aliceToken, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var unread []models.Notification
	testutil.AssertJSON(t, w, &unread)
	if len(unread) != 1 || unread[0].ID != n.ID {
		t.Errorf("Expected only notification %d, got %+v", n.ID, unread)
	}

	w = b.do("PUT", "/notifications/mark-all-read", aliceToken, nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = b.do("GET", "/notifications/stats", aliceToken, nil)
	var stats models.NotificationStats
	testutil.AssertJSON(t, w, &stats)
	if stats.TotalCount != 2 || stats.UnreadCount != 0 {
		t.Errorf("Expected 2 total and 0 unread, got %+v", stats)
	}
}

func TestQuestionSearchAndTags(t *testing.T) {
	b := newBackend(t)
	u, token := b.user("alice")
	b.store.AddQuestion(u.ID, "Goroutine leaks", "how to find them", "go", "concurrency")
	b.store.AddQuestion(u.ID, "Rust lifetimes", "borrow checker", "rust")

	w := b.do("GET", "/questions/?search=goroutine", "", nil)
	var found []models.Question
	testutil.AssertJSON(t, w, &found)
	if len(found) != 1 || found[0].Title != "Goroutine leaks" {
		t.Errorf("Unexpected search result: %+v", found)
	}

	w = b.do("GET", "/questions/?tags=rust", "", nil)
	found = nil
	testutil.AssertJSON(t, w, &found)
	if len(found) != 1 || found[0].Title != "Rust lifetimes" {
		t.Errorf("Unexpected tag filter result: %+v", found)
	}

	w = b.do("POST", "/questions/", token, models.CreateQuestionRequest{Title: "Go generics", Description: "constraints", Tags: []string{"go"}})
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = b.do("GET", "/tags/popular", "", nil)
	var tags []models.Tag
	testutil.AssertJSON(t, w, &tags)
	if len(tags) == 0 || tags[0].Name != "go" || tags[0].QuestionCount != 2 {
		t.Errorf("Expected go with 2 questions first, got %+v", tags)
	}
}

func TestQuestionOwnership(t *testing.T) {
	b := newBackend(t)
	owner, _ := b.user("owner")
	_, other := b.user("other")
	q := b.store.AddQuestion(owner.ID, "Owned question", "body", "misc")

	w := b.do("DELETE", "/questions/"+itoa(q.ID), other, nil)
	testutil.AssertStatus(t, w, http.StatusForbidden)

	title := "Hijacked title"
	w = b.do("PUT", "/questions/"+itoa(q.ID), other, models.UpdateQuestionRequest{Title: &title})
	testutil.AssertStatus(t, w, http.StatusForbidden)
}

func TestQuizFlow(t *testing.T) {
	b := newBackend(t)
	_, token := b.user("alice")
	zero, one := 0, 1
	b.store.AddQuizQuestions("go",
		models.QuizQuestion{Question: "Zero value of int?", Options: []string{"0", "nil"}, CorrectOption: &zero, Explanation: "Numbers start at 0"},
		models.QuizQuestion{Question: "Keyword for goroutines?", Options: []string{"async", "go"}, CorrectOption: &one},
	)

	w := b.do("POST", "/mcq/quiz", token, models.CreateQuizRequest{Topic: "go", NumQuestions: 5, Difficulty: models.DifficultyMixed})
	testutil.AssertStatus(t, w, http.StatusCreated)
	var quiz models.Quiz
	testutil.AssertJSON(t, w, &quiz)
	if quiz.TotalQuestions != 2 || len(quiz.Questions) != 2 {
		t.Fatalf("Expected 2 questions, got %+v", quiz)
	}
	for _, q := range quiz.Questions {
		if q.CorrectOption != nil {
			t.Fatal("Quiz questions must not reveal the answer key")
		}
	}

	sub := models.QuizSubmission{QuizID: quiz.ID, Answers: []models.QuizAnswer{
		{QuestionID: quiz.Questions[0].ID, SelectedOption: 0},
		{QuestionID: quiz.Questions[1].ID, SelectedOption: 0},
	}}
	w = b.do("POST", "/mcq/quiz/submit", token, sub)
	testutil.AssertStatus(t, w, http.StatusOK)
	var result models.QuizResult
	testutil.AssertJSON(t, w, &result)
	if result.Score != 1 || result.Percentage != 50 {
		t.Errorf("Expected 1/2 (50%%), got %+v", result)
	}

	w = b.do("POST", "/mcq/quiz/submit", token, sub)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = b.do("GET", "/mcq/leaderboard/go", "", nil)
	var board []models.LeaderboardEntry
	testutil.AssertJSON(t, w, &board)
	if len(board) != 1 || board[0].Username != "alice" {
		t.Errorf("Unexpected leaderboard: %+v", board)
	}

	w = b.do("POST", "/mcq/quiz", token, models.CreateQuizRequest{Topic: "cobol", NumQuestions: 5, Difficulty: models.DifficultyEasy})
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
