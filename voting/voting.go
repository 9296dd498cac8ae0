// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"errors"

	"github.com/danielhkuo/stackit/models"
)

// ErrInvalidValue is returned for a vote value other than 1 or -1.
var ErrInvalidValue = errors.New("vote value must be 1 or -1")

// VoteState is the vote aggregate of one answer as seen by the current user.
type VoteState struct {
	AnswerID int64 `json:"answer_id" yaml:"answer_id"`
	UserVote int   `json:"user_vote" yaml:"user_vote"`
	Score    int   `json:"score" yaml:"score"`
}

// FromAnswer seeds a state from an answer record, before any vote is known.
func FromAnswer(a models.Answer) VoteState {
	return VoteState{AnswerID: a.ID, UserVote: models.VoteNone, Score: a.VoteScore}
}

// Toggle returns the state after the user casts value.
//
// Casting the value already cast removes the vote. Casting the opposite
// value replaces it, moving the score by value - previous.
func Toggle(s VoteState, value int) (VoteState, error) {
	if value != models.VoteUp && value != models.VoteDown {
		return s, ErrInvalidValue
	}

	if s.UserVote == value {
		s.Score -= value
		s.UserVote = models.VoteNone
		return s, nil
	}

	s.Score += value - s.UserVote
	s.UserVote = value
	return s, nil
}
