// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notifications

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

// API is the part of the client the inbox needs.
type API interface {
	Notifications(ctx context.Context, f client.NotificationFilter) ([]models.Notification, error)
	NotificationStats(ctx context.Context) (models.NotificationStats, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id int64) error
}

// Counter holds the unread count shared with the rest of the client.
// session.UnreadCounter implements it.
type Counter interface {
	Get() int
	Set(n int)
	Add(delta int) int
}

// Inbox is the notifications page: the loaded notifications and their
// counts.
type Inbox struct {
	api     API
	counter Counter
	mut     *optimistic.Mutator[int64, models.Notification]

	mu    sync.Mutex
	total int
}

// NewInbox creates an empty inbox publishing unread counts to counter.
func NewInbox(api API, counter Counter, opts ...optimistic.Option) *Inbox {
	store := viewstate.New(func(n models.Notification) int64 { return n.ID })
	opts = append([]optimistic.Option{optimistic.WithKind("notification")}, opts...)
	return &Inbox{
		api:     api,
		counter: counter,
		mut:     optimistic.NewMutator(store, opts...),
	}
}

// Load replaces the inbox contents with one page of notifications and
// refreshes the counts.
func (in *Inbox) Load(ctx context.Context, f client.NotificationFilter) error {
	var (
		items []models.Notification
		stats models.NotificationStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = in.api.Notifications(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = in.api.NotificationStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load notifications: %w", err)
	}

	in.mut.Store().Replace(items)
	in.mu.Lock()
	in.total = stats.TotalCount
	in.mu.Unlock()
	in.counter.Set(stats.UnreadCount)
	return nil
}

// Items returns the loaded notifications in server order.
func (in *Inbox) Items() []models.Notification {
	return in.mut.Store().Items()
}

// Get returns one loaded notification.
func (in *Inbox) Get(id int64) (models.Notification, bool) {
	return in.mut.Store().Get(id)
}

// Stats returns the total and unread counts as currently known.
func (in *Inbox) Stats() models.NotificationStats {
	in.mu.Lock()
	defer in.mu.Unlock()
	return models.NotificationStats{TotalCount: in.total, UnreadCount: in.counter.Get()}
}

// UnreadCount returns the shared unread count.
func (in *Inbox) UnreadCount() int {
	return in.counter.Get()
}

// Subscribe forwards notification mutation events.
func (in *Inbox) Subscribe() (<-chan optimistic.Event[int64, models.Notification], func()) {
	return in.mut.Subscribe()
}

// MarkRead marks id as read. A notification that is already read is left
// alone and no request is sent; read state never goes back to unread.
func (in *Inbox) MarkRead(ctx context.Context, id int64) (models.Notification, error) {
	cur, ok := in.mut.Store().Get(id)
	if !ok {
		return cur, optimistic.ErrNotFound
	}
	if cur.IsRead {
		return cur, nil
	}

	decremented := in.counter.Get() > 0
	in.counter.Add(-1)

	got, err := in.mut.Apply(ctx, id, func(n models.Notification) (models.Notification, error) {
		n.IsRead = true
		return n, nil
	}, func(ctx context.Context, predicted models.Notification) (models.Notification, error) {
		return predicted, in.api.MarkNotificationRead(ctx, id)
	})
	if err != nil && decremented {
		in.counter.Add(1)
	}
	return got, err
}

// MarkAllRead marks every notification read and zeroes the unread count.
func (in *Inbox) MarkAllRead(ctx context.Context) error {
	before := in.counter.Get()
	in.counter.Set(0)

	err := in.mut.ApplyAll(ctx, func(n models.Notification) models.Notification {
		n.IsRead = true
		return n
	}, func(ctx context.Context) ([]models.Notification, error) {
		return nil, in.api.MarkAllNotificationsRead(ctx)
	})
	if err != nil {
		in.counter.Set(before)
	}
	return err
}

// Delete removes id at once and restores it, with its counts, if the server
// refuses.
func (in *Inbox) Delete(ctx context.Context, id int64) error {
	cur, ok := in.mut.Store().Get(id)
	if !ok {
		return optimistic.ErrNotFound
	}

	decremented := !cur.IsRead && in.counter.Get() > 0
	if decremented {
		in.counter.Add(-1)
	}
	in.mu.Lock()
	shrunk := in.total > 0
	if shrunk {
		in.total--
	}
	in.mu.Unlock()

	err := in.mut.Remove(ctx, id, func(ctx context.Context) error {
		return in.api.DeleteNotification(ctx, id)
	})
	if err != nil {
		if decremented {
			in.counter.Add(1)
		}
		if shrunk {
			in.mu.Lock()
			in.total++
			in.mu.Unlock()
		}
	}
	return err
}
