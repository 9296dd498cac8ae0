// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package optimistic

import (
	"context"
	"log/slog"
	"sync"

	"github.com/danielhkuo/stackit/viewstate"
)

// Phase is the stage of a mutation an Event reports.
type Phase int

const (
	Predicted Phase = iota
	Confirmed
	RolledBack
)

func (p Phase) String() string {
	switch p {
	case Predicted:
		return "predicted"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers at every phase of a mutation.
type Event[K comparable, T any] struct {
	Key     K
	All     bool // list-wide mutation; Key and Value are zero
	Removed bool // the mutation deletes Key
	Phase   Phase
	Value   T // entity as visible after this phase
	Err     error
}

const defaultBuffer = 16

type config struct {
	kind    string
	metrics *Metrics
	logger  *slog.Logger
}

// Option configures a Mutator.
type Option func(*config)

// WithKind labels the mutator in logs and metrics (for example "vote").
func WithKind(kind string) Option {
	return func(c *config) { c.kind = kind }
}

// WithMetrics records mutation outcomes.
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithLogger sets the logger for rollbacks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Mutator applies optimistic mutations to the entities of a viewstate.Store.
//
// At most one mutation per key is in flight; a second one fails with
// ErrInFlight without touching state. List-wide mutations exclude all
// per-key mutations and vice versa.
type Mutator[K comparable, T any] struct {
	store *viewstate.Store[K, T]
	cfg   config

	mu       sync.Mutex
	inflight map[K]struct{}
	all      bool
	started  map[K]uint64
	allRuns  uint64
	subs     map[int]chan Event[K, T]
	nextSub  int
}

// NewMutator binds a mutator to store.
func NewMutator[K comparable, T any](store *viewstate.Store[K, T], opts ...Option) *Mutator[K, T] {
	cfg := config{kind: "entity", logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Mutator[K, T]{
		store:    store,
		cfg:      cfg,
		inflight: make(map[K]struct{}),
		started:  make(map[K]uint64),
		subs:     make(map[int]chan Event[K, T]),
	}
}

// Store returns the store the mutator writes to.
func (m *Mutator[K, T]) Store() *viewstate.Store[K, T] {
	return m.store
}

// Pending reports whether a mutation on k is in flight.
func (m *Mutator[K, T]) Pending(k K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.inflight[k]
	return ok || m.all
}

// Version changes whenever a mutation touching k starts. Readers that fetch
// outside the mutator compare versions before merging so they never
// overwrite a newer local state with a stale response.
func (m *Mutator[K, T]) Version(k K) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started[k] + m.allRuns
}

// Subscribe registers an observer. The channel is buffered; events that do
// not fit are dropped. cancel unregisters and closes the channel.
func (m *Mutator[K, T]) Subscribe() (<-chan Event[K, T], func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Event[K, T], defaultBuffer)
	m.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (m *Mutator[K, T]) publish(ev Event[K, T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
			m.cfg.logger.Debug("dropped mutation event", "kind", m.cfg.kind, "phase", ev.Phase.String())
		}
	}
}

func (m *Mutator[K, T]) acquire(k K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.all {
		return false
	}
	if _, busy := m.inflight[k]; busy {
		return false
	}
	m.inflight[k] = struct{}{}
	m.started[k]++
	return true
}

func (m *Mutator[K, T]) release(k K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, k)
}

func (m *Mutator[K, T]) acquireAll() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.all || len(m.inflight) > 0 {
		return false
	}
	m.all = true
	m.allRuns++
	return true
}

func (m *Mutator[K, T]) releaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.all = false
}

func (m *Mutator[K, T]) rolledBack(key interface{}, err error) error {
	m.cfg.metrics.observe(m.cfg.kind, outcomeRolledBack)
	m.cfg.logger.Debug("mutation rolled back", "kind", m.cfg.kind, "key", key, "error", err)
	return &MutationError{Key: key, Err: err}
}

// Apply mutates the entity with id k.
//
// predict computes the next state from the current one; an error from
// predict aborts the mutation before anything changes. The prediction is
// stored synchronously, then remote is called once with it. The value remote
// returns replaces the prediction. If remote fails the entity is restored and
// a *MutationError is returned along with the restored value.
func (m *Mutator[K, T]) Apply(ctx context.Context, k K, predict func(current T) (T, error), remote func(ctx context.Context, predicted T) (T, error)) (T, error) {
	if !m.acquire(k) {
		m.cfg.metrics.observe(m.cfg.kind, outcomeRejected)
		var zero T
		if cur, ok := m.store.Get(k); ok {
			return cur, ErrInFlight
		}
		return zero, ErrInFlight
	}
	defer m.release(k)

	current, ok := m.store.Get(k)
	if !ok {
		return current, ErrNotFound
	}

	predicted, err := predict(current)
	if err != nil {
		return current, err
	}
	if m.store.Key(predicted) != k {
		return current, ErrKeyChanged
	}

	m.store.Merge(predicted)
	m.publish(Event[K, T]{Key: k, Phase: Predicted, Value: predicted})

	confirmed, err := remote(ctx, predicted)
	if err != nil {
		m.store.Merge(current)
		m.publish(Event[K, T]{Key: k, Phase: RolledBack, Value: current, Err: err})
		return current, m.rolledBack(k, err)
	}
	if m.store.Key(confirmed) != k {
		// Keep the prediction rather than storing a foreign entity.
		confirmed = predicted
	}

	m.store.Merge(confirmed)
	m.cfg.metrics.observe(m.cfg.kind, outcomeConfirmed)
	m.publish(Event[K, T]{Key: k, Phase: Confirmed, Value: confirmed})
	return confirmed, nil
}

// ApplyAll mutates every entity in the store with predict, then calls remote.
// Entities remote returns are merged as confirmed values; a nil slice keeps
// the prediction. On failure the whole store is restored.
func (m *Mutator[K, T]) ApplyAll(ctx context.Context, predict func(T) T, remote func(ctx context.Context) ([]T, error)) error {
	if !m.acquireAll() {
		m.cfg.metrics.observe(m.cfg.kind, outcomeRejected)
		return ErrInFlight
	}
	defer m.releaseAll()

	snap := m.store.Snapshot()
	m.store.UpdateAll(predict)
	m.publish(Event[K, T]{All: true, Phase: Predicted})

	confirmed, err := remote(ctx)
	if err != nil {
		m.store.Restore(snap)
		m.publish(Event[K, T]{All: true, Phase: RolledBack, Err: err})
		return m.rolledBack(nil, err)
	}

	if confirmed != nil {
		m.store.MergeAll(confirmed)
	}
	m.cfg.metrics.observe(m.cfg.kind, outcomeConfirmed)
	m.publish(Event[K, T]{All: true, Phase: Confirmed})
	return nil
}

// Remove deletes the entity with id k, then calls remote. On failure the
// entity is reinserted at its former position.
func (m *Mutator[K, T]) Remove(ctx context.Context, k K, remote func(ctx context.Context) error) error {
	if !m.acquire(k) {
		m.cfg.metrics.observe(m.cfg.kind, outcomeRejected)
		return ErrInFlight
	}
	defer m.release(k)

	removed, index, ok := m.store.RemoveByID(k)
	if !ok {
		return ErrNotFound
	}
	m.publish(Event[K, T]{Key: k, Removed: true, Phase: Predicted})

	if err := remote(ctx); err != nil {
		m.store.InsertAt(index, removed)
		m.publish(Event[K, T]{Key: k, Removed: true, Phase: RolledBack, Value: removed, Err: err})
		return m.rolledBack(k, err)
	}

	m.cfg.metrics.observe(m.cfg.kind, outcomeConfirmed)
	m.publish(Event[K, T]{Key: k, Removed: true, Phase: Confirmed})
	return nil
}
