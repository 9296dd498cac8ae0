// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token format")
	ErrExpiredToken = errors.New("token expired")
)

// Leeway absorbs clock skew between this machine and the backend.
const Leeway = 30 * time.Second

// Claims is the subset of the access token the client looks at.
type Claims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp claim
	IssuedAt  time.Time
}

// Inspect decodes the token payload without verifying the signature.
// The backend remains the only authority; this is only used to skip
// requests that are bound to fail with 401.
func Inspect(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrMissingToken
	}

	var rc jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &rc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	return c, nil
}

// CheckExpiry returns ErrExpiredToken when the token is past its exp claim
// at now (minus Leeway). Tokens without exp never expire client-side.
func CheckExpiry(token string, now time.Time) error {
	c, err := Inspect(token)
	if err != nil {
		return err
	}
	if c.ExpiresAt.IsZero() {
		return nil
	}
	if now.After(c.ExpiresAt.Add(Leeway)) {
		return ErrExpiredToken
	}
	return nil
}

// IssueToken signs an HS256 access token the same shape the backend issues.
// Used by the fake API in tests and by local development tooling.
func IssueToken(secret []byte, userID int64, username string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(userID, 10),
		"username": username,
		"iat":      now.Unix(),
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks an HS256 token issued by IssueToken and returns the user id.
func VerifyToken(secret []byte, token string, now time.Time) (int64, error) {
	var rc jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &rc, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseInt(rc.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}
