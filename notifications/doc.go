// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notifications implements the notifications page and the unread
// count poller.
//
// Read state is monotonic: MarkRead and MarkAllRead only ever set is_read
// to true. Every change is optimistic and restores both the notification
// and the unread count on failure.
package notifications
