// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session keeps the logged-in identity of the client.

# Session

A Session holds the bearer token, the user resolved through /auth/me and
the UnreadCounter shared by every view. Its Token method is passed to the
API client as the token source:

	sess := session.New(cfg.APIURL, store, logger)
	if err := sess.Restore(ctx); err != nil {
		return err
	}
	c, err := client.New(cfg.APIURL, client.WithTokenSource(sess.Token))

Login runs the full flow: POST /auth/login, GET /auth/me with the new
token, then Start, which saves both. End logs out.

# Persistence

Store saves sessions in SQLite or PostgreSQL through package db, keyed by
API base URL. Expired tokens are dropped on Restore.
*/
package session
