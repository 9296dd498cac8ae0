// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes of the in-memory StackIt backend.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	store := handlers.NewStore(secret)
	mux := router.NewRouter(store, logger)

Every API route is registered under Prefix (/api/v1) and wrapped with
handlers.WithLogging.

# Endpoints

Health:

	GET /health

Authentication:

	POST /auth/register     - Create account
	POST /auth/login        - Issue bearer token
	GET  /auth/me           - Current user
	GET  /auth/verify-token - Token check

Questions and answers:

	GET    /questions/            - List (search, tags, skip, limit)
	POST   /questions/            - Ask
	GET    /questions/{id}        - Show
	PUT    /questions/{id}        - Edit (owner)
	DELETE /questions/{id}        - Delete (owner)
	GET    /questions/user/{id}   - By author
	POST   /answers/              - Answer
	POST   /answers/accept        - Accept (question owner)
	GET    /answers/question/{id} - Answers of a question, oldest first

Votes:

	POST   /votes/                      - Cast, toggle or switch
	DELETE /votes/answer/{id}           - Remove
	GET    /votes/answer/{id}/stats     - Aggregate
	GET    /votes/answer/{id}/my-vote   - Caller's vote or null

Notifications, tags and quizzes follow the same layout under
/notifications, /tags and /mcq.
*/
package router
