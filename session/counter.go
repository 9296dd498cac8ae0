// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import "sync"

// UnreadCounter is the unread notification count shared by every view of a
// session. Observers receive the latest value; intermediate values may be
// skipped when an observer falls behind.
type UnreadCounter struct {
	mu   sync.Mutex
	n    int
	subs map[int]chan int
	next int
}

// NewUnreadCounter returns a counter at zero.
func NewUnreadCounter() *UnreadCounter {
	return &UnreadCounter{subs: make(map[int]chan int)}
}

// Get returns the current count.
func (c *UnreadCounter) Get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Set replaces the count. Negative values are stored as 0.
func (c *UnreadCounter) Set(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(n)
}

// Add changes the count by delta, floored at 0, and returns the new value.
func (c *UnreadCounter) Add(delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(c.n + delta)
	return c.n
}

func (c *UnreadCounter) setLocked(n int) {
	if n < 0 {
		n = 0
	}
	if n == c.n {
		return
	}
	c.n = n
	for _, ch := range c.subs {
		// Keep only the newest value in the one-slot buffer.
		select {
		case <-ch:
		default:
		}
		ch <- n
	}
}

// Subscribe returns a channel that receives the count whenever it changes.
// cancel unregisters and closes the channel.
func (c *UnreadCounter) Subscribe() (<-chan int, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	c.next++
	ch := make(chan int, 1)
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// reset zeroes the count and closes every subscription.
func (c *UnreadCounter) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}
