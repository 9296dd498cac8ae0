// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/danielhkuo/stackit/models"
)

// CreateQuiz handles POST /mcq/quiz
func (c *Client) CreateQuiz(ctx context.Context, req models.CreateQuizRequest) (models.Quiz, error) {
	var out models.Quiz
	err := c.do(ctx, call{method: http.MethodPost, path: "/mcq/quiz", body: req, out: &out, auth: true})
	return out, err
}

// GetQuiz handles GET /mcq/quiz/{id}
func (c *Client) GetQuiz(ctx context.Context, id int64) (models.Quiz, error) {
	var out models.Quiz
	err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/mcq/quiz/%d", id), out: &out, auth: true})
	return out, err
}

// QuizQuestions handles GET /mcq/quiz/{id}/questions
func (c *Client) QuizQuestions(ctx context.Context, id int64) ([]models.QuizQuestion, error) {
	var out []models.QuizQuestion
	err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/mcq/quiz/%d/questions", id), out: &out, auth: true, optional: true})
	return out, err
}

// SubmitQuiz handles POST /mcq/quiz/submit
func (c *Client) SubmitQuiz(ctx context.Context, sub models.QuizSubmission) (models.QuizResult, error) {
	var out models.QuizResult
	err := c.do(ctx, call{method: http.MethodPost, path: "/mcq/quiz/submit", body: sub, out: &out, auth: true})
	return out, err
}

// MyQuizzes handles GET /mcq/my-quizzes
func (c *Client) MyQuizzes(ctx context.Context, p Page) ([]models.Quiz, error) {
	var out []models.Quiz
	err := c.do(ctx, call{method: http.MethodGet, path: "/mcq/my-quizzes", query: p.values(), out: &out, auth: true, optional: true})
	return out, err
}

// Topics handles GET /mcq/topics
func (c *Client) Topics(ctx context.Context) ([]string, error) {
	var out []string
	err := c.do(ctx, call{method: http.MethodGet, path: "/mcq/topics", out: &out, optional: true})
	return out, err
}

// TopicStats handles GET /mcq/topics/{topic}/stats
func (c *Client) TopicStats(ctx context.Context, topic string) (models.TopicStats, error) {
	var out models.TopicStats
	err := c.do(ctx, call{method: http.MethodGet, path: "/mcq/topics/" + url.PathEscape(topic) + "/stats", out: &out})
	return out, err
}

// Leaderboard handles GET /mcq/leaderboard/{topic}
func (c *Client) Leaderboard(ctx context.Context, topic string, p Page) ([]models.LeaderboardEntry, error) {
	var out []models.LeaderboardEntry
	err := c.do(ctx, call{method: http.MethodGet, path: "/mcq/leaderboard/" + url.PathEscape(topic), query: p.values(), out: &out, optional: true})
	return out, err
}
