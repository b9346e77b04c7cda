// Package actions holds the single ordered conduit through which every
// action reaches the dispatch loop, plus naming helpers used by logging and
// history.
package actions

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Recv once the channel is closed and drained.
var ErrClosed = errors.New("actions: channel closed")

// Sender is the producer side of a Channel. Registries and input sources
// only ever see this interface.
type Sender[A any] interface {
	// Send enqueues an action. It never blocks and reports false when the
	// channel no longer accepts actions.
	Send(a A) bool
}

// Channel is an unbounded multi-producer, single-consumer FIFO of actions.
//
// Send never blocks, so a registry may deliver while holding its own lock
// without risking a deadlock against the consumer.
type Channel[A any] struct {
	mu     sync.Mutex
	queue  []A
	ready  chan struct{}
	closed bool
}

// NewChannel creates an empty open channel.
func NewChannel[A any]() *Channel[A] {
	return &Channel[A]{ready: make(chan struct{}, 1)}
}

// Send appends a to the queue.
func (c *Channel[A]) Send(a A) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.queue = append(c.queue, a)
	c.mu.Unlock()

	select {
	case c.ready <- struct{}{}:
	default:
	}
	return true
}

// Recv blocks until an action is available, the channel is closed and
// drained, or ctx is done.
func (c *Channel[A]) Recv(ctx context.Context) (A, error) {
	for {
		c.mu.Lock()
		if len(c.queue) > 0 {
			a := c.queue[0]
			var zero A
			c.queue[0] = zero
			c.queue = c.queue[1:]
			c.mu.Unlock()
			return a, nil
		}
		closed := c.closed
		c.mu.Unlock()

		if closed {
			var zero A
			return zero, ErrClosed
		}

		select {
		case <-c.ready:
		case <-ctx.Done():
			var zero A
			return zero, ctx.Err()
		}
	}
}

// Drain removes and returns every queued action.
func (c *Channel[A]) Drain() []A {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.queue
	c.queue = nil
	return out
}

// Len reports the number of queued actions.
func (c *Channel[A]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Close stops accepting new actions. Already queued actions can still be
// received.
func (c *Channel[A]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	select {
	case c.ready <- struct{}{}:
	default:
	}
}
