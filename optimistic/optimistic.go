// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package optimistic

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInFlight rejects a mutation on an entity that already has one pending.
	ErrInFlight = errors.New("a change to this item is already in progress")
	// ErrNotFound is returned when the entity is not in the view.
	ErrNotFound = errors.New("item not found")
	// ErrKeyChanged is returned when a prediction changes the entity's id.
	ErrKeyChanged = errors.New("prediction changed the item id")
)

// MutationError reports a remote failure after the local state was rolled back.
type MutationError struct {
	Key interface{}
	Err error
}

func (e *MutationError) Error() string {
	if e.Key == nil {
		return fmt.Sprintf("change rolled back: %v", e.Err)
	}
	return fmt.Sprintf("change to %v rolled back: %v", e.Key, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// RemoteCall performs the server side of a mutation and returns the
// server-confirmed value.
type RemoteCall[T any] func(ctx context.Context) (T, error)

// Apply runs one optimistic transition on a single value.
//
// set receives predicted before remote is called. On success it receives the
// confirmed value, which is also returned. On failure it receives current
// again and the error is wrapped in a MutationError. remote is called exactly
// once.
func Apply[T any](ctx context.Context, current, predicted T, remote RemoteCall[T], set func(T)) (T, error) {
	set(predicted)

	confirmed, err := remote(ctx)
	if err != nil {
		set(current)
		return current, &MutationError{Err: err}
	}

	set(confirmed)
	return confirmed, nil
}
