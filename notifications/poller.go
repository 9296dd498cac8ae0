// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notifications

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPollInterval matches how often the header badge refreshes.
const DefaultPollInterval = 30 * time.Second

// UnreadSource fetches the unread count.
type UnreadSource interface {
	UnreadCount(ctx context.Context) (int, error)
}

// Sink receives polled counts. session.Session implements it.
type Sink interface {
	LoggedIn() bool
	SetUnread(ctx context.Context, count int)
}

// Poller keeps the unread count fresh while a session is active.
type Poller struct {
	src      UnreadSource
	sink     Sink
	interval time.Duration
	logger   *slog.Logger
}

// NewPoller creates a poller. A non-positive interval uses
// DefaultPollInterval.
func NewPoller(src UnreadSource, sink Sink, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{src: src, sink: sink, interval: interval, logger: logger}
}

// Poll fetches the count once and publishes it. It does nothing while
// logged out.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	if !p.sink.LoggedIn() {
		return 0, nil
	}
	n, err := p.src.UnreadCount(ctx)
	if err != nil {
		return 0, err
	}
	p.sink.SetUnread(ctx, n)
	return n, nil
}

// Run polls immediately and then on every tick until ctx is done. Failed
// polls are logged and do not stop the loop.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if n, err := p.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn("unread count poll failed", "error", err)
		} else {
			p.logger.Debug("unread count polled", "count", n)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
