// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers implements an in-memory StackIt backend.

It serves the same REST surface as the real API so the client, the
optimistic flows and the CLI can run against it in tests and through the
dev-server command.

# Handler Types

Each handler is a struct sharing one *Store:

  - AuthHandler: register, login, token checks
  - QuestionHandler and AnswerHandler: Q&A threads and acceptance
  - VoteHandler: casting, removing and counting votes
  - NotificationHandler: the caller's inbox
  - TagHandler: tag listing and search
  - QuizHandler: MCQ quizzes, topic stats and leaderboards

Handlers are created via constructor functions:

	store := handlers.NewStore(secret)
	voteHandler := handlers.NewVoteHandler(store)

# Store

Store keeps users, questions, answers, votes, notifications, tags and
quizzes in maps behind a single mutex. Seeding helpers (AddUser,
AddQuestion, AddAnswer, AddNotification, AddQuizQuestions) let tests build
fixtures without HTTP round trips.

Two controls imitate a busy server:

	store.SetScoreOverride(answerID, 5) // other users voted meanwhile
	store.OmitVoteScore(true)           // vote responses lack total_score

# Errors

Errors use the backend's {"detail": "..."} body. Missing or invalid bearer
tokens get 401, acting on someone else's content gets 403, and bodies
failing validation get 422.
*/
package handlers
