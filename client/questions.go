// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/danielhkuo/stackit/models"
)

// QuestionFilter narrows GET /questions/.
type QuestionFilter struct {
	Page
	Search string
	Tags   []string
}

// ListQuestions handles GET /questions/
func (c *Client) ListQuestions(ctx context.Context, f QuestionFilter) ([]models.Question, error) {
	q := f.Page.values()
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	for _, tag := range f.Tags {
		q.Add("tags", tag)
	}
	var out []models.Question
	err := c.do(ctx, call{method: http.MethodGet, path: "/questions/", query: q, out: &out, optional: true})
	return out, err
}

// GetQuestion handles GET /questions/{id}
func (c *Client) GetQuestion(ctx context.Context, id int64) (models.Question, error) {
	var out models.Question
	err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/questions/%d", id), out: &out})
	return out, err
}

// CreateQuestion handles POST /questions/
func (c *Client) CreateQuestion(ctx context.Context, req models.CreateQuestionRequest) (models.Question, error) {
	var out models.Question
	err := c.do(ctx, call{method: http.MethodPost, path: "/questions/", body: req, out: &out, auth: true})
	return out, err
}

// UpdateQuestion handles PUT /questions/{id}
func (c *Client) UpdateQuestion(ctx context.Context, id int64, req models.UpdateQuestionRequest) (models.Question, error) {
	var out models.Question
	err := c.do(ctx, call{method: http.MethodPut, path: fmt.Sprintf("/questions/%d", id), body: req, out: &out, auth: true})
	return out, err
}

// DeleteQuestion handles DELETE /questions/{id}
func (c *Client) DeleteQuestion(ctx context.Context, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, path: fmt.Sprintf("/questions/%d", id), auth: true})
}

// QuestionsByUser handles GET /questions/user/{id}
func (c *Client) QuestionsByUser(ctx context.Context, userID int64, p Page) ([]models.Question, error) {
	var out []models.Question
	err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/questions/user/%d", userID), query: p.values(), out: &out, optional: true})
	return out, err
}

// ListAnswers handles GET /answers/question/{id}
func (c *Client) ListAnswers(ctx context.Context, questionID int64, p Page) ([]models.Answer, error) {
	var out []models.Answer
	err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/answers/question/%d", questionID), query: p.values(), out: &out, optional: true})
	return out, err
}

// GetAnswer handles GET /answers/{id}
func (c *Client) GetAnswer(ctx context.Context, id int64) (models.Answer, error) {
	var out models.Answer
	err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/answers/%d", id), out: &out})
	return out, err
}

// CreateAnswer handles POST /answers/
func (c *Client) CreateAnswer(ctx context.Context, req models.CreateAnswerRequest) (models.Answer, error) {
	var out models.Answer
	err := c.do(ctx, call{method: http.MethodPost, path: "/answers/", body: req, out: &out, auth: true})
	return out, err
}

// UpdateAnswer handles PUT /answers/{id}
func (c *Client) UpdateAnswer(ctx context.Context, id int64, req models.UpdateAnswerRequest) (models.Answer, error) {
	var out models.Answer
	err := c.do(ctx, call{method: http.MethodPut, path: fmt.Sprintf("/answers/%d", id), body: req, out: &out, auth: true})
	return out, err
}

// DeleteAnswer handles DELETE /answers/{id}
func (c *Client) DeleteAnswer(ctx context.Context, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, path: fmt.Sprintf("/answers/%d", id), auth: true})
}

// AcceptAnswer handles POST /answers/accept. The backend may answer with the
// accepted answer or a bare message; a nil Answer means it sent no record.
func (c *Client) AcceptAnswer(ctx context.Context, answerID int64) (*models.Answer, error) {
	const path = "/answers/accept"
	var body json.RawMessage
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     path,
		body:     models.AcceptAnswerRequest{AnswerID: answerID},
		out:      &body,
		auth:     true,
		optional: true,
	})
	if err != nil || len(body) == 0 {
		return nil, err
	}

	var probe struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &probe); err != nil || probe.ID == 0 {
		return nil, nil
	}

	var answer models.Answer
	if err := json.Unmarshal(body, &answer); err != nil {
		return nil, &APIError{Kind: KindDecode, Message: MsgBadResponse, Method: http.MethodPost, Path: path, Err: err}
	}
	if err := c.validateValue(answer); err != nil {
		return nil, &APIError{Kind: KindDecode, Message: MsgBadResponse, Method: http.MethodPost, Path: path, Err: err}
	}
	return &answer, nil
}

// AnswersByUser handles GET /answers/user/{id}
func (c *Client) AnswersByUser(ctx context.Context, userID int64, p Page) ([]models.Answer, error) {
	var out []models.Answer
	err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/answers/user/%d", userID), query: p.values(), out: &out, optional: true})
	return out, err
}
