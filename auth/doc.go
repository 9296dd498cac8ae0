// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth inspects and issues bearer tokens.

# Client-side Inspection

The backend issues JWT access tokens at login. The client never verifies
the signature (it has no key) but reads the exp claim so that an expired
session is reported as a login prompt before any request is sent:

	if err := auth.CheckExpiry(token, time.Now()); err != nil {
		// ErrMissingToken, ErrInvalidToken or ErrExpiredToken
	}

A Leeway of 30 seconds absorbs clock skew.

# Issuing Tokens

IssueToken and VerifyToken sign and check HS256 tokens with the same
claims the backend uses (sub, username, iat, exp). The fake API in
testutil uses them.
*/
package auth
