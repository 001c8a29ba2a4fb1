package event

import (
	"context"
	"sync"
)

// Channel is an unbounded FIFO of events with many producers and one
// consumer. Send never blocks, so native input callbacks can feed it from a
// window thread. After Close, Send reports false so producers can stop.
type Channel struct {
	mu     sync.Mutex
	queue  []Event
	closed bool

	ready     chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewChannel creates an empty channel.
func NewChannel() *Channel {
	return &Channel{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Send enqueues ev without blocking. It returns false once the channel has
// been closed.
func (c *Channel) Send(ev Event) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.queue = append(c.queue, ev)
	c.mu.Unlock()

	select {
	case c.ready <- struct{}{}:
	default:
	}
	return true
}

// Recv blocks until an event is queued. ok is false once the channel is
// closed or ctx is done.
func (c *Channel) Recv(ctx context.Context) (Event, bool) {
	for {
		if ctx.Err() != nil {
			return nil, false
		}
		ev, ok, closed := c.pop()
		if closed {
			return nil, false
		}
		if ok {
			return ev, true
		}
		select {
		case <-c.ready:
		case <-c.done:
			return nil, false
		case <-ctx.Done():
			return nil, false
		}
	}
}

// TryRecv returns the next event without blocking. Tests use it to step a
// manager one event at a time.
func (c *Channel) TryRecv() (Event, bool) {
	ev, ok, _ := c.pop()
	return ev, ok
}

func (c *Channel) pop() (ev Event, ok, closed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, false, true
	}
	if len(c.queue) == 0 {
		return nil, false, false
	}
	ev = c.queue[0]
	c.queue[0] = nil
	c.queue = c.queue[1:]
	if len(c.queue) == 0 {
		c.queue = nil
	}
	return ev, true, false
}

// Close stops the channel. Pending events are dropped.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.queue = nil
		c.mu.Unlock()
		close(c.done)
	})
}

// Closed reports whether Close has been called. Producers rely on Send's
// result instead; this is for tests asserting shutdown.
func (c *Channel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
