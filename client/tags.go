// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/danielhkuo/stackit/models"
)

// CreateTag handles POST /tags/
func (c *Client) CreateTag(ctx context.Context, req models.CreateTagRequest) (models.Tag, error) {
	var out models.Tag
	err := c.do(ctx, call{method: http.MethodPost, path: "/tags/", body: req, out: &out, auth: true})
	return out, err
}

// Tags handles GET /tags/
func (c *Client) Tags(ctx context.Context, p Page) ([]models.Tag, error) {
	var out []models.Tag
	err := c.do(ctx, call{method: http.MethodGet, path: "/tags/", query: p.values(), out: &out, optional: true})
	return out, err
}

// PopularTags handles GET /tags/popular
func (c *Client) PopularTags(ctx context.Context, p Page) ([]models.Tag, error) {
	var out []models.Tag
	err := c.do(ctx, call{method: http.MethodGet, path: "/tags/popular", query: p.values(), out: &out, optional: true})
	return out, err
}

// SearchTags handles GET /tags/search?q=
func (c *Client) SearchTags(ctx context.Context, query string, p Page) ([]models.Tag, error) {
	q := p.values()
	q.Set("q", query)
	var out []models.Tag
	err := c.do(ctx, call{method: http.MethodGet, path: "/tags/search", query: q, out: &out, optional: true})
	return out, err
}

// Tag handles GET /tags/{name}
func (c *Client) Tag(ctx context.Context, name string) (models.Tag, error) {
	var out models.Tag
	err := c.do(ctx, call{method: http.MethodGet, path: "/tags/" + url.PathEscape(name), out: &out})
	return out, err
}

// QuestionsByTag handles GET /tags/{name}/questions
func (c *Client) QuestionsByTag(ctx context.Context, name string, p Page) ([]models.Question, error) {
	var out []models.Question
	err := c.do(ctx, call{method: http.MethodGet, path: "/tags/" + url.PathEscape(name) + "/questions", query: p.values(), out: &out, optional: true})
	return out, err
}
