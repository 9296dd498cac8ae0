// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("test-secret")

func TestIssueAndInspect(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := IssueToken(testSecret, 42, "ada", now, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	// Three dot-separated segments
	if strings.Count(token, ".") != 2 {
		t.Errorf("IssueToken() = %q, want JWT with 3 segments", token)
	}

	claims, err := Inspect(token)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if claims.Subject != "42" {
		t.Errorf("Subject = %q, want 42", claims.Subject)
	}
	if !claims.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt, now.Add(time.Hour))
	}
	if !claims.IssuedAt.Equal(now) {
		t.Errorf("IssuedAt = %v, want %v", claims.IssuedAt, now)
	}
}

func TestInspect_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", ErrMissingToken},
		{"whitespace", "   ", ErrMissingToken},
		{"garbage", "not-a-jwt", ErrInvalidToken},
		{"bad payload", "a.b.c", ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Inspect(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Inspect() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	token, err := IssueToken(testSecret, 1, "ada", now, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	noExp, err := IssueToken(testSecret, 1, "ada", now, 0)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		token   string
		at      time.Time
		wantErr error
	}{
		{"fresh", token, now.Add(time.Minute), nil},
		{"within leeway", token, now.Add(time.Hour + 10*time.Second), nil},
		{"expired", token, now.Add(2 * time.Hour), ErrExpiredToken},
		{"no exp claim", noExp, now.Add(1000 * time.Hour), nil},
		{"missing", "", now, ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckExpiry(tt.token, tt.at)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckExpiry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyToken(t *testing.T) {
	now := time.Now()
	token, err := IssueToken(testSecret, 7, "grace", now, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	id, err := VerifyToken(testSecret, token, now)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if id != 7 {
		t.Errorf("VerifyToken() id = %d, want 7", id)
	}

	// Wrong secret
	if _, err := VerifyToken([]byte("other"), token, now); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyToken() with wrong secret error = %v, want %v", err, ErrInvalidToken)
	}

	// Expired
	if _, err := VerifyToken(testSecret, token, now.Add(2*time.Hour)); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("VerifyToken() after expiry error = %v, want %v", err, ErrExpiredToken)
	}
}
