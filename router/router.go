// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/stackit/handlers"
)

// Prefix is the path every API route lives under.
const Prefix = "/api/v1"

func NewRouter(store *handlers.Store, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(store)
	questionHandler := handlers.NewQuestionHandler(store)
	answerHandler := handlers.NewAnswerHandler(store)
	voteHandler := handlers.NewVoteHandler(store)
	notificationHandler := handlers.NewNotificationHandler(store)
	tagHandler := handlers.NewTagHandler(store)
	quizHandler := handlers.NewQuizHandler(store)

	handle := func(pattern string, h http.HandlerFunc) {
		method, path, _ := strings.Cut(pattern, " ")
		mux.HandleFunc(method+" "+Prefix+path, handlers.WithLogging(logger, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Authentication
	handle("POST /auth/register", authHandler.Register)
	handle("POST /auth/login", authHandler.Login)
	handle("GET /auth/me", authHandler.Me)
	handle("GET /auth/verify-token", authHandler.VerifyToken)

	// Questions
	handle("GET /questions/{$}", questionHandler.List)
	handle("POST /questions/{$}", questionHandler.Create)
	handle("GET /questions/{id}", questionHandler.Get)
	handle("PUT /questions/{id}", questionHandler.Update)
	handle("DELETE /questions/{id}", questionHandler.Delete)
	handle("GET /questions/user/{id}", questionHandler.ByUser)

	// Answers
	handle("POST /answers/{$}", answerHandler.Create)
	handle("POST /answers/accept", answerHandler.Accept)
	handle("GET /answers/{id}", answerHandler.Get)
	handle("PUT /answers/{id}", answerHandler.Update)
	handle("DELETE /answers/{id}", answerHandler.Delete)
	handle("GET /answers/question/{id}", answerHandler.ListForQuestion)
	handle("GET /answers/user/{id}", answerHandler.ByUser)

	// Votes
	handle("POST /votes/{$}", voteHandler.Cast)
	handle("DELETE /votes/answer/{id}", voteHandler.Remove)
	handle("GET /votes/answer/{id}/stats", voteHandler.Stats)
	handle("GET /votes/answer/{id}/my-vote", voteHandler.MyVote)

	// Notifications (scoped to the caller)
	handle("GET /notifications/{$}", notificationHandler.List)
	handle("GET /notifications/stats", notificationHandler.Stats)
	handle("GET /notifications/unread-count", notificationHandler.UnreadCount)
	handle("PUT /notifications/mark-all-read", notificationHandler.MarkAllRead)
	handle("PUT /notifications/{id}/read", notificationHandler.MarkRead)
	handle("DELETE /notifications/{id}", notificationHandler.Delete)

	// Tags
	handle("GET /tags/{$}", tagHandler.List)
	handle("POST /tags/{$}", tagHandler.Create)
	handle("GET /tags/popular", tagHandler.Popular)
	handle("GET /tags/search", tagHandler.Search)
	handle("GET /tags/{name}", tagHandler.Get)
	handle("GET /tags/{name}/questions", tagHandler.Questions)

	// Quizzes
	handle("POST /mcq/quiz", quizHandler.Create)
	handle("POST /mcq/quiz/submit", quizHandler.Submit)
	handle("GET /mcq/quiz/{id}", quizHandler.Get)
	handle("GET /mcq/quiz/{id}/questions", quizHandler.Questions)
	handle("GET /mcq/my-quizzes", quizHandler.Mine)
	handle("GET /mcq/topics", quizHandler.Topics)
	handle("GET /mcq/topics/{topic}/stats", quizHandler.TopicStats)
	handle("GET /mcq/leaderboard/{topic}", quizHandler.Leaderboard)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("StackIt API v1"))
	})

	return mux
}
