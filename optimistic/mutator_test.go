// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package optimistic

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/stackit/viewstate"
)

type note struct {
	ID   int64
	Read bool
	Text string
}

var errServer = errors.New("server unavailable")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newNotes(t *testing.T, opts ...Option) *Mutator[int64, note] {
	t.Helper()
	s := viewstate.New(func(n note) int64 { return n.ID })
	s.Replace([]note{{ID: 1}, {ID: 2}, {ID: 3}})
	opts = append([]Option{WithLogger(quietLogger()), WithKind("notification")}, opts...)
	return NewMutator(s, opts...)
}

func markRead(n note) (note, error) {
	n.Read = true
	return n, nil
}

func TestApplyValue(t *testing.T) {
	var visible int
	set := func(v int) { visible = v }

	t.Run("success stores server value", func(t *testing.T) {
		visible = 5
		got, err := Apply(context.Background(), 5, 6, func(ctx context.Context) (int, error) {
			assert.Equal(t, 6, visible, "prediction must be visible during the call")
			return 8, nil
		}, set)
		require.NoError(t, err)
		assert.Equal(t, 8, got)
		assert.Equal(t, 8, visible)
	})

	t.Run("failure restores current", func(t *testing.T) {
		visible = 5
		got, err := Apply(context.Background(), 5, 6, func(ctx context.Context) (int, error) {
			return 0, errServer
		}, set)
		var merr *MutationError
		require.ErrorAs(t, err, &merr)
		assert.ErrorIs(t, err, errServer)
		assert.Equal(t, 5, got)
		assert.Equal(t, 5, visible)
	})
}

func TestMutatorApply_Confirms(t *testing.T) {
	m := newNotes(t)
	calls := 0

	got, err := m.Apply(context.Background(), 2, markRead, func(ctx context.Context, predicted note) (note, error) {
		calls++
		cur, _ := m.Store().Get(2)
		assert.True(t, cur.Read, "prediction must be stored before the call")
		predicted.Text = "from server"
		return predicted, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "from server", got.Text)
	stored, _ := m.Store().Get(2)
	assert.Equal(t, got, stored)
	assert.False(t, m.Pending(2))
}

func TestMutatorApply_RollsBack(t *testing.T) {
	m := newNotes(t)

	got, err := m.Apply(context.Background(), 2, markRead, func(ctx context.Context, predicted note) (note, error) {
		return note{}, errServer
	})

	var merr *MutationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, int64(2), merr.Key)
	assert.ErrorIs(t, err, errServer)
	assert.False(t, got.Read)

	stored, _ := m.Store().Get(2)
	assert.False(t, stored.Read)
	assert.Equal(t, []int64{1, 2, 3}, m.Store().Keys())
}

func TestRollbackLogsOnlyAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	m := newNotes(t, WithLogger(logger))

	_, err := m.Apply(context.Background(), 1, markRead, func(ctx context.Context, predicted note) (note, error) {
		return note{}, errServer
	})
	require.Error(t, err)
	assert.Empty(t, buf.String(), "the caller reports the error")

	var debug bytes.Buffer
	m = newNotes(t, WithLogger(slog.New(slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	require.Error(t, m.Remove(context.Background(), 2, func(ctx context.Context) error { return errServer }))
	assert.Contains(t, debug.String(), "mutation rolled back")
}

func TestMutatorApply_PredictErrorChangesNothing(t *testing.T) {
	m := newNotes(t)
	errInvalid := errors.New("invalid")
	called := false

	_, err := m.Apply(context.Background(), 1, func(n note) (note, error) {
		return n, errInvalid
	}, func(ctx context.Context, predicted note) (note, error) {
		called = true
		return predicted, nil
	})

	assert.ErrorIs(t, err, errInvalid)
	assert.False(t, called)
}

func TestMutatorApply_NotFound(t *testing.T) {
	m := newNotes(t)

	_, err := m.Apply(context.Background(), 99, markRead, func(ctx context.Context, predicted note) (note, error) {
		return predicted, nil
	})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMutatorApply_KeyChange(t *testing.T) {
	m := newNotes(t)

	_, err := m.Apply(context.Background(), 1, func(n note) (note, error) {
		n.ID = 7
		return n, nil
	}, func(ctx context.Context, predicted note) (note, error) {
		return predicted, nil
	})

	assert.ErrorIs(t, err, ErrKeyChanged)
	assert.Equal(t, 3, m.Store().Len())
}

func TestMutatorApply_RejectsConcurrent(t *testing.T) {
	m := newNotes(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, err := m.Apply(context.Background(), 1, markRead, func(ctx context.Context, predicted note) (note, error) {
			close(entered)
			<-release
			return predicted, nil
		})
		done <- err
	}()
	<-entered

	calls := 0
	_, err := m.Apply(context.Background(), 1, markRead, func(ctx context.Context, predicted note) (note, error) {
		calls++
		return predicted, nil
	})
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Zero(t, calls)
	assert.True(t, m.Pending(1))

	// Other keys are independent.
	_, err = m.Apply(context.Background(), 2, markRead, func(ctx context.Context, predicted note) (note, error) {
		return predicted, nil
	})
	assert.NoError(t, err)

	// A list-wide change conflicts with any in-flight key.
	err = m.ApplyAll(context.Background(), func(n note) note { return n }, func(ctx context.Context) ([]note, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, m.Pending(1))
}

func TestMutatorApplyAll(t *testing.T) {
	all := func(n note) note {
		n.Read = true
		return n
	}

	t.Run("confirm", func(t *testing.T) {
		m := newNotes(t)
		err := m.ApplyAll(context.Background(), all, func(ctx context.Context) ([]note, error) {
			assert.Equal(t, 3, m.Store().Count(func(n note) bool { return n.Read }))
			return nil, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, m.Store().Count(func(n note) bool { return n.Read }))
	})

	t.Run("server values win", func(t *testing.T) {
		m := newNotes(t)
		err := m.ApplyAll(context.Background(), all, func(ctx context.Context) ([]note, error) {
			return []note{{ID: 3, Read: false}}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, m.Store().Count(func(n note) bool { return n.Read }))
	})

	t.Run("rollback", func(t *testing.T) {
		m := newNotes(t)
		err := m.ApplyAll(context.Background(), all, func(ctx context.Context) ([]note, error) {
			return nil, errServer
		})
		assert.ErrorIs(t, err, errServer)
		assert.Zero(t, m.Store().Count(func(n note) bool { return n.Read }))
		assert.Equal(t, []int64{1, 2, 3}, m.Store().Keys())
	})
}

func TestVersion(t *testing.T) {
	m := newNotes(t)
	ok := func(ctx context.Context, predicted note) (note, error) { return predicted, nil }

	v1, v2 := m.Version(1), m.Version(2)
	_, err := m.Apply(context.Background(), 2, markRead, ok)
	require.NoError(t, err)
	assert.Equal(t, v1, m.Version(1), "other keys are untouched")
	assert.NotEqual(t, v2, m.Version(2))

	// A rejected mutation never started.
	v2 = m.Version(2)
	_, _ = m.Apply(context.Background(), 2, markRead, func(ctx context.Context, predicted note) (note, error) {
		_, err := m.Apply(ctx, 2, markRead, ok)
		assert.ErrorIs(t, err, ErrInFlight)
		return predicted, nil
	})
	assert.Equal(t, v2+1, m.Version(2))

	v1 = m.Version(1)
	require.NoError(t, m.ApplyAll(context.Background(), func(n note) note { return n }, func(ctx context.Context) ([]note, error) {
		return nil, nil
	}))
	assert.NotEqual(t, v1, m.Version(1), "list-wide mutations touch every key")
}

func TestMutatorRemove(t *testing.T) {
	t.Run("confirm", func(t *testing.T) {
		m := newNotes(t)
		err := m.Remove(context.Background(), 2, func(ctx context.Context) error {
			_, ok := m.Store().Get(2)
			assert.False(t, ok, "entity must disappear before the call")
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 3}, m.Store().Keys())
	})

	t.Run("rollback reinserts at old position", func(t *testing.T) {
		m := newNotes(t)
		err := m.Remove(context.Background(), 2, func(ctx context.Context) error {
			return errServer
		})
		assert.ErrorIs(t, err, errServer)
		assert.Equal(t, []int64{1, 2, 3}, m.Store().Keys())
	})

	t.Run("missing", func(t *testing.T) {
		m := newNotes(t)
		err := m.Remove(context.Background(), 42, func(ctx context.Context) error { return nil })
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSubscribe(t *testing.T) {
	m := newNotes(t)
	events, cancel := m.Subscribe()
	defer cancel()

	_, _ = m.Apply(context.Background(), 1, markRead, func(ctx context.Context, predicted note) (note, error) {
		return predicted, nil
	})
	_, _ = m.Apply(context.Background(), 2, markRead, func(ctx context.Context, predicted note) (note, error) {
		return note{}, errServer
	})

	var phases []Phase
	for i := 0; i < 4; i++ {
		ev := <-events
		phases = append(phases, ev.Phase)
	}
	assert.Equal(t, []Phase{Predicted, Confirmed, Predicted, RolledBack}, phases)
}

func TestSubscribe_FullBufferDoesNotBlock(t *testing.T) {
	m := newNotes(t)
	_, cancel := m.Subscribe()

	for i := 0; i < defaultBuffer+5; i++ {
		_, err := m.Apply(context.Background(), 1, markRead, func(ctx context.Context, predicted note) (note, error) {
			return predicted, nil
		})
		require.NoError(t, err)
	}

	cancel()
	cancel()
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	again, err := NewMetrics(reg)
	require.NoError(t, err)

	m := newNotes(t, WithMetrics(metrics))
	ok := func(ctx context.Context, predicted note) (note, error) { return predicted, nil }
	fail := func(ctx context.Context, predicted note) (note, error) { return note{}, errServer }

	_, _ = m.Apply(context.Background(), 1, markRead, ok)
	_, _ = m.Apply(context.Background(), 2, markRead, fail)
	_, _ = m.Apply(context.Background(), 3, markRead, ok)

	assert.Equal(t, 2.0, promtest.ToFloat64(metrics.Counter("notification", outcomeConfirmed)))
	assert.Equal(t, 1.0, promtest.ToFloat64(again.Counter("notification", outcomeRolledBack)))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.observe("vote", outcomeConfirmed) })
}
