// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package acceptance

import (
	"errors"

	"github.com/danielhkuo/stackit/models"
)

var (
	ErrNotOwner        = errors.New("only the question owner can accept an answer")
	ErrAlreadyAccepted = errors.New("this question already has an accepted answer")
	ErrNoAnswers       = errors.New("the question has no answers to accept")
	ErrUnknownAnswer   = errors.New("answer does not belong to this question")
)

// State is the acceptance state of a question.
type State int

const (
	Unanswered State = iota
	HasAnswers
	Accepted
)

func (s State) String() string {
	switch s {
	case Unanswered:
		return "unanswered"
	case HasAnswers:
		return "has_answers"
	case Accepted:
		return "accepted"
	default:
		return "unknown"
	}
}

// Machine tracks whether a question has answers and which one is accepted.
// Accepted is terminal.
type Machine struct {
	ownerID  int64
	answers  int
	accepted int64
}

// NewMachine derives the state of q given how many answers it has.
func NewMachine(q models.Question, answers int) Machine {
	m := Machine{ownerID: q.UserID, answers: answers}
	if q.AcceptedAnswerID != nil {
		m.accepted = *q.AcceptedAnswerID
	}
	return m
}

// State returns the current state.
func (m Machine) State() State {
	switch {
	case m.accepted != 0:
		return Accepted
	case m.answers > 0:
		return HasAnswers
	default:
		return Unanswered
	}
}

// AcceptedAnswerID returns the accepted answer, if any.
func (m Machine) AcceptedAnswerID() (int64, bool) {
	return m.accepted, m.accepted != 0
}

// AddAnswer records a new answer.
func (m Machine) AddAnswer() Machine {
	m.answers++
	return m
}

// RemoveAnswer records a deleted answer. It never leaves Accepted.
func (m Machine) RemoveAnswer() Machine {
	if m.answers > 0 {
		m.answers--
	}
	return m
}

// CanAccept reports why actorID may not accept answerID. answerAccepted is
// the answer's own is_accepted flag.
func (m Machine) CanAccept(actorID, answerID int64, answerAccepted bool) error {
	if actorID == 0 || actorID != m.ownerID {
		return ErrNotOwner
	}
	if answerAccepted || m.State() == Accepted {
		return ErrAlreadyAccepted
	}
	if m.answers == 0 {
		return ErrNoAnswers
	}
	if answerID <= 0 {
		return ErrUnknownAnswer
	}
	return nil
}

// Accept moves HasAnswers to Accepted. On error m is returned unchanged.
func (m Machine) Accept(actorID, answerID int64, answerAccepted bool) (Machine, error) {
	if err := m.CanAccept(actorID, answerID, answerAccepted); err != nil {
		return m, err
	}
	m.accepted = answerID
	return m, nil
}
