// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package viewstate holds the entities a view currently renders, keyed by id
// and kept in insertion order.
package viewstate

import "sync"

// Store is an ordered set of entities keyed by K. No two entities share a
// key; Merge is last-write-wins. Safe for concurrent use.
type Store[K comparable, T any] struct {
	mu    sync.RWMutex
	keyOf func(T) K
	order []K
	items map[K]T
}

// Snapshot is an opaque copy of a Store's contents.
type Snapshot[K comparable, T any] struct {
	order []K
	items map[K]T
}

// New creates an empty store. keyOf extracts the id of an entity.
func New[K comparable, T any](keyOf func(T) K) *Store[K, T] {
	return &Store[K, T]{
		keyOf: keyOf,
		items: make(map[K]T),
	}
}

// Key returns the id of v.
func (s *Store[K, T]) Key(v T) K {
	return s.keyOf(v)
}

// Merge replaces the entity with v's id in place, or appends v.
func (s *Store[K, T]) Merge(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mergeLocked(v)
}

func (s *Store[K, T]) mergeLocked(v T) {
	k := s.keyOf(v)
	if _, ok := s.items[k]; !ok {
		s.order = append(s.order, k)
	}
	s.items[k] = v
}

// MergeAll merges vs in order.
func (s *Store[K, T]) MergeAll(vs []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vs {
		s.mergeLocked(v)
	}
}

// Replace discards the current contents and loads vs. A repeated id keeps
// the position of its first occurrence and the value of its last.
func (s *Store[K, T]) Replace(vs []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = s.order[:0]
	s.items = make(map[K]T, len(vs))
	for _, v := range vs {
		s.mergeLocked(v)
	}
}

// RemoveByID removes the entity with id k and returns it with its former
// index. ok is false when k was absent.
func (s *Store[K, T]) RemoveByID(k K) (v T, index int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok = s.items[k]
	if !ok {
		return v, -1, false
	}
	delete(s.items, k)
	index = s.indexLocked(k)
	s.order = append(s.order[:index], s.order[index+1:]...)
	return v, index, true
}

// InsertAt puts v at index (clamped to the valid range). If v's id is
// already present the entity is moved.
func (s *Store[K, T]) InsertAt(index int, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := s.keyOf(v)
	if _, ok := s.items[k]; ok {
		i := s.indexLocked(k)
		s.order = append(s.order[:i], s.order[i+1:]...)
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.order) {
		index = len(s.order)
	}
	s.order = append(s.order, k)
	copy(s.order[index+1:], s.order[index:])
	s.order[index] = k
	s.items[k] = v
}

// Update applies fn to the entity with id k. It returns false when absent.
// fn must not change the entity's id.
func (s *Store[K, T]) Update(k K, fn func(T) T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[k]
	if !ok {
		return false
	}
	s.items[k] = fn(v)
	return true
}

// UpdateAll applies fn to every entity in order.
func (s *Store[K, T]) UpdateAll(fn func(T) T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.order {
		s.items[k] = fn(s.items[k])
	}
}

// Get returns the entity with id k.
func (s *Store[K, T]) Get(k K) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[k]
	return v, ok
}

// Items returns a copy of the entities in insertion order.
func (s *Store[K, T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.items[k])
	}
	return out
}

// Keys returns the ids in insertion order.
func (s *Store[K, T]) Keys() []K {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]K(nil), s.order...)
}

// Len returns the number of entities.
func (s *Store[K, T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Count returns how many entities satisfy pred.
func (s *Store[K, T]) Count(pred func(T) bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, k := range s.order {
		if pred(s.items[k]) {
			n++
		}
	}
	return n
}

// Snapshot copies the current contents.
func (s *Store[K, T]) Snapshot() Snapshot[K, T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make(map[K]T, len(s.items))
	for k, v := range s.items {
		items[k] = v
	}
	return Snapshot[K, T]{order: append([]K(nil), s.order...), items: items}
}

// Restore replaces the contents with snap.
func (s *Store[K, T]) Restore(snap Snapshot[K, T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = append([]K(nil), snap.order...)
	s.items = make(map[K]T, len(snap.items))
	for k, v := range snap.items {
		s.items[k] = v
	}
}

func (s *Store[K, T]) indexLocked(k K) int {
	for i, key := range s.order {
		if key == k {
			return i
		}
	}
	return -1
}
