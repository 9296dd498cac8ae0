// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/stackit/client"
	"github.com/danielhkuo/stackit/models"
	"github.com/danielhkuo/stackit/optimistic"
	"github.com/danielhkuo/stackit/viewstate"
)

// ErrLoginRequired is returned when voting without a session.
var ErrLoginRequired = &client.APIError{
	Kind:    client.KindAuth,
	Message: "Please login to vote",
	Err:     client.ErrUnauthenticated,
}

// maxConcurrentLoads bounds the stats requests LoadAll issues at once.
const maxConcurrentLoads = 4

// API is the part of the client the board needs.
type API interface {
	VoteStats(ctx context.Context, answerID int64) (models.VoteStats, error)
	MyVote(ctx context.Context, answerID int64) (int, error)
	CastVote(ctx context.Context, answerID int64, value int) (models.VoteResult, error)
	RemoveVote(ctx context.Context, answerID int64) (models.VoteResult, error)
}

// Board holds the vote states of the answers shown in one view.
type Board struct {
	api      API
	loggedIn func() bool
	mut      *optimistic.Mutator[int64, VoteState]
}

// NewBoard creates an empty board. loggedIn reports whether the session
// holds a token.
func NewBoard(api API, loggedIn func() bool, opts ...optimistic.Option) *Board {
	store := viewstate.New(func(s VoteState) int64 { return s.AnswerID })
	opts = append([]optimistic.Option{optimistic.WithKind("vote")}, opts...)
	return &Board{
		api:      api,
		loggedIn: loggedIn,
		mut:      optimistic.NewMutator(store, opts...),
	}
}

// Seed adds states built from answers without contacting the server.
func (b *Board) Seed(answers []models.Answer) {
	for _, a := range answers {
		if _, ok := b.mut.Store().Get(a.ID); !ok {
			b.mut.Store().Merge(FromAnswer(a))
		}
	}
}

// State returns the state of answerID.
func (b *Board) State(answerID int64) (VoteState, bool) {
	return b.mut.Store().Get(answerID)
}

// States returns all states in the order they were added.
func (b *Board) States() []VoteState {
	return b.mut.Store().Items()
}

// Subscribe forwards the mutator's events.
func (b *Board) Subscribe() (<-chan optimistic.Event[int64, VoteState], func()) {
	return b.mut.Subscribe()
}

// Load fetches the aggregate score and, with a session, the user's own vote.
// Both requests run concurrently. A vote that starts while the requests are
// outstanding wins; the fetched values are then discarded.
func (b *Board) Load(ctx context.Context, answerID int64) (VoteState, error) {
	if b.mut.Pending(answerID) {
		cur, _ := b.State(answerID)
		return cur, optimistic.ErrInFlight
	}
	version := b.mut.Version(answerID)

	var (
		stats    models.VoteStats
		userVote int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = b.api.VoteStats(gctx, answerID)
		return err
	})
	if b.loggedIn() {
		g.Go(func() error {
			var err error
			userVote, err = b.api.MyVote(gctx, answerID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return VoteState{}, fmt.Errorf("failed to load votes for answer %d: %w", answerID, err)
	}

	if !b.loggedIn() {
		userVote = models.VoteNone
	}
	if pending := b.mut.Pending(answerID); pending || b.mut.Version(answerID) != version {
		cur, _ := b.State(answerID)
		if pending {
			return cur, optimistic.ErrInFlight
		}
		return cur, nil
	}
	state := VoteState{AnswerID: answerID, UserVote: userVote, Score: stats.TotalScore}
	b.mut.Store().Merge(state)
	return state, nil
}

// LoadAll loads every id, a few at a time. States already loaded are kept
// when one of the requests fails.
func (b *Board) LoadAll(ctx context.Context, answerIDs []int64) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for _, id := range answerIDs {
		g.Go(func() error {
			_, err := b.Load(gctx, id)
			return err
		})
	}
	return g.Wait()
}

// Refresh re-reads the server's view of answerID, discarding any local drift.
func (b *Board) Refresh(ctx context.Context, answerID int64) (VoteState, error) {
	return b.Load(ctx, answerID)
}

// Vote casts value on answerID with toggle semantics.
//
// The predicted state is visible before the request is sent. Exactly one
// request is made: DELETE when the toggle removes the vote, POST otherwise.
// A total_score in the response replaces the predicted score. On failure the
// previous state is restored.
func (b *Board) Vote(ctx context.Context, answerID int64, value int) (VoteState, error) {
	if !b.loggedIn() {
		cur, _ := b.State(answerID)
		return cur, ErrLoginRequired
	}

	if _, ok := b.State(answerID); !ok {
		if _, err := b.Load(ctx, answerID); err != nil {
			return VoteState{}, err
		}
	}

	predict := func(cur VoteState) (VoteState, error) {
		return Toggle(cur, value)
	}
	remote := func(ctx context.Context, predicted VoteState) (VoteState, error) {
		var (
			res models.VoteResult
			err error
		)
		if predicted.UserVote == models.VoteNone {
			res, err = b.api.RemoveVote(ctx, answerID)
		} else {
			res, err = b.api.CastVote(ctx, answerID, predicted.UserVote)
		}
		if err != nil {
			return predicted, err
		}
		if res.TotalScore != nil {
			predicted.Score = *res.TotalScore
		}
		return predicted, nil
	}

	return b.mut.Apply(ctx, answerID, predict, remote)
}
