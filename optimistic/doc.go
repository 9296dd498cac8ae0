// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package optimistic applies local state changes before the server confirms them.

# Algorithm

Every mutation follows the same three steps:

 1. Store the predicted next state synchronously.
 2. Call the server exactly once. There is no retry.
 3. On success store the server's value (it wins over the prediction);
    on failure restore the previous state and return a *MutationError.

Apply implements this for a single value. Mutator implements it for the
entities of a viewstate.Store:

	m := optimistic.NewMutator(store, optimistic.WithKind("vote"))
	v, err := m.Apply(ctx, answerID, predict, remote)

ApplyAll covers list-wide changes (mark all as read) and Remove covers
deletes, which are reinserted at their old position on failure.

# Concurrent Mutations

A second mutation on a key whose first mutation is still in flight fails
immediately with ErrInFlight and changes nothing.

# Observers

Subscribe returns a buffered channel of Events (Predicted, Confirmed,
RolledBack). A full channel drops events instead of blocking the mutator.

# Metrics

NewMetrics registers stackit_mutations_total{kind,outcome} with outcome
one of confirmed, rolled_back or rejected.
*/
package optimistic
