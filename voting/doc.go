// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package voting implements answer voting with toggle semantics.
//
// Toggle is the pure rule. Board keeps the states of one view and applies
// votes optimistically through package optimistic.
package voting
