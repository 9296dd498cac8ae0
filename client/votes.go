// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielhkuo/stackit/models"
)

// CastVote handles POST /votes/
func (c *Client) CastVote(ctx context.Context, answerID int64, value int) (models.VoteResult, error) {
	var out models.VoteResult
	err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/votes/",
		body:     models.CastVoteRequest{AnswerID: answerID, Value: value},
		out:      &out,
		auth:     true,
		optional: true,
	})
	return out, err
}

// RemoveVote handles DELETE /votes/answer/{id}
func (c *Client) RemoveVote(ctx context.Context, answerID int64) (models.VoteResult, error) {
	var out models.VoteResult
	err := c.do(ctx, call{
		method:   http.MethodDelete,
		path:     fmt.Sprintf("/votes/answer/%d", answerID),
		out:      &out,
		auth:     true,
		optional: true,
	})
	return out, err
}

// VoteStats handles GET /votes/answer/{id}/stats
func (c *Client) VoteStats(ctx context.Context, answerID int64) (models.VoteStats, error) {
	var out models.VoteStats
	err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/votes/answer/%d/stats", answerID), out: &out})
	return out, err
}

// MyVote handles GET /votes/answer/{id}/my-vote. It returns 0 when the
// current user has not voted (null body or 404).
func (c *Client) MyVote(ctx context.Context, answerID int64) (int, error) {
	var out *models.Vote
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     fmt.Sprintf("/votes/answer/%d/my-vote", answerID),
		out:      &out,
		auth:     true,
		optional: true,
	})
	if IsNotFound(err) {
		return models.VoteNone, nil
	}
	if err != nil {
		return models.VoteNone, err
	}
	if out == nil {
		return models.VoteNone, nil
	}
	return out.Value, nil
}
