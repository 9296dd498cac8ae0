// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"net/http"

	"github.com/danielhkuo/stackit/models"
)

// Login handles POST /auth/login
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (models.TokenResponse, error) {
	var out models.TokenResponse
	err := c.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: req, out: &out})
	return out, err
}

// Register handles POST /auth/register
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	var out models.User
	err := c.do(ctx, call{method: http.MethodPost, path: "/auth/register", body: req, out: &out})
	return out, err
}

// Me handles GET /auth/me
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var out models.User
	err := c.do(ctx, call{method: http.MethodGet, path: "/auth/me", out: &out, auth: true})
	return out, err
}

// MeWithToken resolves the identity behind token before it is stored.
func (c *Client) MeWithToken(ctx context.Context, token string) (models.User, error) {
	var out models.User
	err := c.do(ctx, call{method: http.MethodGet, path: "/auth/me", out: &out, auth: true, token: token})
	return out, err
}

// VerifyToken handles GET /auth/verify-token
func (c *Client) VerifyToken(ctx context.Context) (models.TokenVerification, error) {
	var out models.TokenVerification
	err := c.do(ctx, call{method: http.MethodGet, path: "/auth/verify-token", out: &out, auth: true})
	return out, err
}
