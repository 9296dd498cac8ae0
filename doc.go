// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides stackit, the command-line client for the StackIt Q&A
platform.

Votes, accepted answers and notification changes show up immediately and
are rolled back, with the server's message, if the server refuses them.

# Configuration

Settings come from flags, then STACKIT_* environment variables (a .env file
is loaded first), then defaults:

  - STACKIT_API_URL (--api-url): API base URL (default: http://localhost:8000/api/v1)
  - STACKIT_SESSION_DB (--session-db): where the login is remembered (default: ~/.stackit/session.db)
  - STACKIT_SESSION_DB_TYPE (--session-db-type): sqlite or postgres
  - STACKIT_OUTPUT (-o): table, json or yaml
  - STACKIT_TIMEOUT, STACKIT_RATE_LIMIT, STACKIT_POLL_INTERVAL, STACKIT_DEBUG

# Usage

	stackit login -u alice
	stackit questions list --tag go
	stackit questions show 12
	stackit vote up 31
	stackit answers accept 12 31
	stackit notifications watch
	stackit quiz take go-basics -n 5

For local development, run an in-memory backend:

	stackit dev-server --seed --port 8000

# Architecture

  - optimistic: predict, reconcile and roll back keyed view state
  - viewstate: ordered keyed store the views render from
  - voting, acceptance, notifications, quiz: the optimistic flows
  - session: login persistence and the shared unread counter
  - client: typed API calls and the error taxonomy
  - middleware: request ID, logging, bearer and rate limit transports
  - auth: token inspection
  - db: session database connection and schema
  - cliparse: configuration parsing
  - handlers, router: the in-memory backend behind dev-server and tests

See package documentation for each component.
*/
package main
