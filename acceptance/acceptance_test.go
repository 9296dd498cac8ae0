// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package acceptance

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/stackit/client"
	"github.com/danielhkuo/stackit/models"
	"github.com/danielhkuo/stackit/optimistic"
)

const owner = int64(10)

func int64Ptr(n int64) *int64 { return &n }

func TestMachineStates(t *testing.T) {
	q := models.Question{ID: 1, UserID: owner}

	m := NewMachine(q, 0)
	assert.Equal(t, Unanswered, m.State())

	m = m.AddAnswer()
	assert.Equal(t, HasAnswers, m.State())

	m = m.RemoveAnswer()
	assert.Equal(t, Unanswered, m.State())

	m = m.AddAnswer().AddAnswer()
	m, err := m.Accept(owner, 5, false)
	require.NoError(t, err)
	assert.Equal(t, Accepted, m.State())

	m = m.RemoveAnswer().RemoveAnswer().RemoveAnswer()
	assert.Equal(t, Accepted, m.State(), "accepted is terminal")
}

func TestMachineCanAccept(t *testing.T) {
	solved := models.Question{ID: 1, UserID: owner, AcceptedAnswerID: int64Ptr(3)}
	open := models.Question{ID: 1, UserID: owner}

	tests := []struct {
		name     string
		m        Machine
		actor    int64
		answer   int64
		accepted bool
		want     error
	}{
		{"owner accepts", NewMachine(open, 2), owner, 4, false, nil},
		{"other user", NewMachine(open, 2), 99, 4, false, ErrNotOwner},
		{"logged out", NewMachine(open, 2), 0, 4, false, ErrNotOwner},
		{"already solved", NewMachine(solved, 2), owner, 4, false, ErrAlreadyAccepted},
		{"answer flagged accepted", NewMachine(open, 2), owner, 4, true, ErrAlreadyAccepted},
		{"no answers", NewMachine(open, 0), owner, 4, false, ErrNoAnswers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.CanAccept(tt.actor, tt.answer, tt.accepted)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestMachineAcceptTwiceKeepsFirst(t *testing.T) {
	m := NewMachine(models.Question{UserID: owner}, 2)
	m, err := m.Accept(owner, 4, false)
	require.NoError(t, err)

	m, err = m.Accept(owner, 5, false)
	assert.ErrorIs(t, err, ErrAlreadyAccepted)
	id, ok := m.AcceptedAnswerID()
	assert.True(t, ok)
	assert.Equal(t, int64(4), id)
}

type fakeAPI struct {
	acceptErr error
	deleteErr error
	accepted  *models.Answer
	calls     int
	during    func()
}

func (f *fakeAPI) GetQuestion(ctx context.Context, id int64) (models.Question, error) {
	return models.Question{ID: id, UserID: owner, Title: "How?", AnswerCount: 3}, nil
}

func (f *fakeAPI) ListAnswers(ctx context.Context, questionID int64, p client.Page) ([]models.Answer, error) {
	return threeAnswers(), nil
}

func (f *fakeAPI) CreateAnswer(ctx context.Context, req models.CreateAnswerRequest) (models.Answer, error) {
	return models.Answer{ID: 77, QuestionID: req.QuestionID, Description: req.Description, UserID: 20}, nil
}

func (f *fakeAPI) DeleteAnswer(ctx context.Context, id int64) error {
	f.calls++
	if f.during != nil {
		f.during()
	}
	return f.deleteErr
}

func (f *fakeAPI) AcceptAnswer(ctx context.Context, answerID int64) (*models.Answer, error) {
	f.calls++
	if f.during != nil {
		f.during()
	}
	if f.acceptErr != nil {
		return nil, f.acceptErr
	}
	return f.accepted, nil
}

func threeAnswers() []models.Answer {
	return []models.Answer{
		{ID: 41, QuestionID: 1, UserID: 20},
		{ID: 42, QuestionID: 1, UserID: 21},
		{ID: 43, QuestionID: 1, UserID: 22},
	}
}

func openThread(t *testing.T, api *fakeAPI, actor int64) *Thread {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	th, err := OpenThread(context.Background(), api, 1, func() int64 { return actor }, optimistic.WithLogger(logger))
	require.NoError(t, err)
	return th
}

func TestThreadAccept(t *testing.T) {
	api := &fakeAPI{}
	th := openThread(t, api, owner)
	api.during = func() {
		a, _ := th.answers.Store().Get(42)
		assert.True(t, a.IsAccepted)
		assert.Equal(t, Accepted, th.Machine().State())
	}

	got, err := th.Accept(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, got.IsAccepted)
	assert.Equal(t, int64(42), *th.Question().AcceptedAnswerID)
	assert.Equal(t, 1, api.calls)

	_, err = th.Accept(context.Background(), 43)
	assert.ErrorIs(t, err, ErrAlreadyAccepted)
	assert.Equal(t, int64(42), *th.Question().AcceptedAnswerID)
	assert.Equal(t, 1, api.calls)
}

func TestThreadAccept_ServerValueWins(t *testing.T) {
	api := &fakeAPI{accepted: &models.Answer{ID: 42, QuestionID: 1, UserID: 21, IsAccepted: true, VoteScore: 9}}
	th := openThread(t, api, owner)

	got, err := th.Accept(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 9, got.VoteScore)
}

func TestThreadAccept_Rollback(t *testing.T) {
	api := &fakeAPI{acceptErr: &client.APIError{Kind: client.KindValidation, Status: 400, Message: "Answer already accepted"}}
	th := openThread(t, api, owner)

	_, err := th.Accept(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, "Answer already accepted", client.Message(err))

	assert.Nil(t, th.Question().AcceptedAnswerID)
	assert.Equal(t, HasAnswers, th.Machine().State())
	a, _ := th.answers.Store().Get(42)
	assert.False(t, a.IsAccepted)
}

func TestThreadAccept_Rules(t *testing.T) {
	api := &fakeAPI{}

	_, err := openThread(t, api, 99).Accept(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = openThread(t, api, owner).Accept(context.Background(), 500)
	assert.ErrorIs(t, err, ErrUnknownAnswer)

	assert.Zero(t, api.calls)
}

func TestThreadDeleteAnswer(t *testing.T) {
	api := &fakeAPI{}
	th := openThread(t, api, 21)

	require.NoError(t, th.DeleteAnswer(context.Background(), 42))

	var ids []int64
	for _, a := range th.Answers() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []int64{41, 43}, ids)
	assert.Equal(t, 2, th.Question().AnswerCount)
}

func TestThreadDeleteAnswer_Rollback(t *testing.T) {
	api := &fakeAPI{deleteErr: &client.APIError{Kind: client.KindAuth, Status: 403, Message: "Not authorized"}}
	th := openThread(t, api, 21)
	api.during = func() {
		assert.Len(t, th.Answers(), 2)
	}

	err := th.DeleteAnswer(context.Background(), 42)
	assert.True(t, client.IsAuth(err))

	assert.Equal(t, threeAnswers(), th.Answers())
	assert.Equal(t, 3, th.Question().AnswerCount)
}

func TestThreadPostAnswer(t *testing.T) {
	api := &fakeAPI{}

	_, err := openThread(t, api, 0).PostAnswer(context.Background(), "Try this")
	assert.ErrorIs(t, err, client.ErrUnauthenticated)

	th := openThread(t, api, 20)
	a, err := th.PostAnswer(context.Background(), "Try this")
	require.NoError(t, err)
	assert.Equal(t, int64(77), a.ID)
	assert.Len(t, th.Answers(), 4)
	assert.Equal(t, 4, th.Question().AnswerCount)
}
