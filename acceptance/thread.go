// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package acceptance

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/stackit/client"
	"github.com/danielhkuo/stackit/models"
	"github.com/danielhkuo/stackit/optimistic"
	"github.com/danielhkuo/stackit/viewstate"
)

// API is the part of the client a thread needs.
type API interface {
	GetQuestion(ctx context.Context, id int64) (models.Question, error)
	ListAnswers(ctx context.Context, questionID int64, p client.Page) ([]models.Answer, error)
	CreateAnswer(ctx context.Context, req models.CreateAnswerRequest) (models.Answer, error)
	DeleteAnswer(ctx context.Context, id int64) error
	AcceptAnswer(ctx context.Context, answerID int64) (*models.Answer, error)
}

// Thread is a question with its answers, as shown on the question page.
type Thread struct {
	api     API
	actor   func() int64
	answers *optimistic.Mutator[int64, models.Answer]

	mu       sync.Mutex
	question models.Question
}

// NewThread wraps an already loaded question and its answers. actor returns
// the logged-in user's id, or 0.
func NewThread(api API, q models.Question, answers []models.Answer, actor func() int64, opts ...optimistic.Option) *Thread {
	store := viewstate.New(func(a models.Answer) int64 { return a.ID })
	store.Replace(answers)
	opts = append([]optimistic.Option{optimistic.WithKind("answer")}, opts...)
	return &Thread{
		api:      api,
		actor:    actor,
		answers:  optimistic.NewMutator(store, opts...),
		question: q,
	}
}

// OpenThread fetches question id and its answers concurrently.
func OpenThread(ctx context.Context, api API, id int64, actor func() int64, opts ...optimistic.Option) (*Thread, error) {
	var (
		q       models.Question
		answers []models.Answer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		q, err = api.GetQuestion(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		answers, err = api.ListAnswers(gctx, id, client.Page{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to open question %d: %w", id, err)
	}
	return NewThread(api, q, answers, actor, opts...), nil
}

// Question returns the question as currently known.
func (t *Thread) Question() models.Question {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.question
}

// Answers returns the answers in display order.
func (t *Thread) Answers() []models.Answer {
	return t.answers.Store().Items()
}

// Subscribe forwards answer mutation events.
func (t *Thread) Subscribe() (<-chan optimistic.Event[int64, models.Answer], func()) {
	return t.answers.Subscribe()
}

// Machine returns the acceptance state machine for the current view.
func (t *Thread) Machine() Machine {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.machineLocked()
}

func (t *Thread) machineLocked() Machine {
	return NewMachine(t.question, t.answers.Store().Len())
}

// IsOwner reports whether the logged-in user asked the question.
func (t *Thread) IsOwner() bool {
	id := t.actor()
	return id != 0 && id == t.Question().UserID
}

// CanAccept reports whether the logged-in user may accept answerID now.
func (t *Thread) CanAccept(answerID int64) error {
	ans, ok := t.answers.Store().Get(answerID)
	if !ok {
		return ErrUnknownAnswer
	}
	return t.Machine().CanAccept(t.actor(), answerID, ans.IsAccepted)
}

// Accept marks answerID accepted. The answer and the question show the
// acceptance immediately; both are restored if the server refuses.
func (t *Thread) Accept(ctx context.Context, answerID int64) (models.Answer, error) {
	ans, ok := t.answers.Store().Get(answerID)
	if !ok {
		return models.Answer{}, ErrUnknownAnswer
	}

	t.mu.Lock()
	before := t.question
	if _, err := t.machineLocked().Accept(t.actor(), answerID, ans.IsAccepted); err != nil {
		t.mu.Unlock()
		return ans, err
	}
	accepted := answerID
	t.question.AcceptedAnswerID = &accepted
	t.mu.Unlock()

	got, err := t.answers.Apply(ctx, answerID, func(a models.Answer) (models.Answer, error) {
		a.IsAccepted = true
		return a, nil
	}, func(ctx context.Context, predicted models.Answer) (models.Answer, error) {
		confirmed, err := t.api.AcceptAnswer(ctx, answerID)
		if err != nil {
			return predicted, err
		}
		if confirmed != nil && confirmed.ID == answerID {
			return *confirmed, nil
		}
		return predicted, nil
	})
	if err != nil {
		t.mu.Lock()
		t.question = before
		t.mu.Unlock()
	}
	return got, err
}

// DeleteAnswer removes answerID at once and restores it at the same
// position if the server refuses.
func (t *Thread) DeleteAnswer(ctx context.Context, answerID int64) error {
	if t.actor() == 0 {
		return client.ErrUnauthenticated
	}

	t.mu.Lock()
	before := t.question.AnswerCount
	if t.question.AnswerCount > 0 {
		t.question.AnswerCount--
	}
	t.mu.Unlock()

	err := t.answers.Remove(ctx, answerID, func(ctx context.Context) error {
		return t.api.DeleteAnswer(ctx, answerID)
	})
	if err != nil {
		t.mu.Lock()
		t.question.AnswerCount = before
		t.mu.Unlock()
	}
	return err
}

// PostAnswer creates an answer and appends it. The server assigns the id,
// so nothing is shown until it responds.
func (t *Thread) PostAnswer(ctx context.Context, description string) (models.Answer, error) {
	if t.actor() == 0 {
		return models.Answer{}, client.ErrUnauthenticated
	}

	a, err := t.api.CreateAnswer(ctx, models.CreateAnswerRequest{
		QuestionID:  t.Question().ID,
		Description: description,
	})
	if err != nil {
		return models.Answer{}, err
	}

	t.answers.Store().Merge(a)
	t.mu.Lock()
	t.question.AnswerCount++
	t.mu.Unlock()
	return a, nil
}
