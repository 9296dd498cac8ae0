// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the StackIt API.

Field names follow the backend's snake_case JSON. Every type carries
validate tags; the client validates each decoded record before returning it.

# Request Types

  - LoginRequest, RegisterRequest: credentials
  - CreateQuestionRequest, UpdateQuestionRequest: title, description, tags
  - CreateAnswerRequest, UpdateAnswerRequest, AcceptAnswerRequest
  - CastVoteRequest: answer_id, value (-1 or 1)
  - CreateTagRequest
  - CreateQuizRequest, QuizSubmission

# Response Types

  - TokenResponse: access_token, token_type
  - VoteResult: optional total_score echoed after a vote change
  - UnreadCount, NotificationStats
  - QuizResult, TopicStats, LeaderboardEntry
  - ErrorResponse: detail (string or field list), message, error

# Domain Types

  - User, Question, Answer, Vote, VoteStats
  - Notification, Tag
  - Quiz, QuizQuestion

# Timestamps

Timestamp accepts RFC 3339 as well as zone-less ISO timestamps, which are
read as UTC.
*/
package models
