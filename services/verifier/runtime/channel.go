// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidCapacity is returned by NewChannel for capacities below 1.
var ErrInvalidCapacity = errors.New("channel capacity must be >= 1")

// Channel is a bounded FIFO queue of values. Send blocks while the
// buffer is full, Recv blocks while it is empty; the n-th successful
// Recv returns the value of the n-th successful Send. All state is
// guarded by one mutex with a condition variable per direction, so the
// invariant 0 <= len <= cap holds at every observable point.
//
// Close requires that no operation is in flight; closing with a blocked
// sender or receiver is a programming error and panics rather than
// corrupting state. This precondition is the caller's to guarantee and
// is not otherwise detectable.
type Channel struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond

	buf      []Value
	capacity int
	size     int
	readPos  int
	writePos int

	waiters int
	closed  bool
}

// NewChannel returns a channel with the given fixed capacity.
func NewChannel(capacity int) (*Channel, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	ch := &Channel{
		buf:      make([]Value, capacity),
		capacity: capacity,
	}
	ch.notFull = sync.NewCond(&ch.mu)
	ch.notEmpty = sync.NewCond(&ch.mu)
	return ch, nil
}

// Cap returns the fixed capacity.
func (c *Channel) Cap() int { return c.capacity }

// Len returns the current number of buffered values.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Send enqueues v, blocking while the buffer is full.
func (c *Channel) Send(v Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkOpen("send")
	for c.size == c.capacity {
		c.waiters++
		c.notFull.Wait()
		c.waiters--
		c.checkOpen("send")
	}
	c.enqueue(v)
}

// SendContext enqueues v, blocking while the buffer is full, and
// honors context cancellation so a stuck consumer cannot hang a
// verification run.
func (c *Channel) SendContext(ctx context.Context, v Value) error {
	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		c.notFull.Broadcast()
		c.notEmpty.Broadcast()
		c.mu.Unlock()
	})
	defer stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkOpen("send")
	for c.size == c.capacity {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.waiters++
		c.notFull.Wait()
		c.waiters--
		c.checkOpen("send")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.enqueue(v)
	return nil
}

// TrySend enqueues v if there is space and reports whether it did.
func (c *Channel) TrySend(v Value) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkOpen("send")
	if c.size == c.capacity {
		return false
	}
	c.enqueue(v)
	return true
}

// Recv dequeues the oldest value, blocking while the buffer is empty.
func (c *Channel) Recv() Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkOpen("recv")
	for c.size == 0 {
		c.waiters++
		c.notEmpty.Wait()
		c.waiters--
		c.checkOpen("recv")
	}
	return c.dequeue()
}

// RecvContext dequeues the oldest value, blocking while the buffer is
// empty, and honors context cancellation.
func (c *Channel) RecvContext(ctx context.Context) (Value, error) {
	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		c.notFull.Broadcast()
		c.notEmpty.Broadcast()
		c.mu.Unlock()
	})
	defer stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkOpen("recv")
	for c.size == 0 {
		if err := ctx.Err(); err != nil {
			return Value{}, err
		}
		c.waiters++
		c.notEmpty.Wait()
		c.waiters--
		c.checkOpen("recv")
	}
	if err := ctx.Err(); err != nil {
		return Value{}, err
	}
	return c.dequeue(), nil
}

// TryRecv dequeues the oldest value if one is buffered.
func (c *Channel) TryRecv() (Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkOpen("recv")
	if c.size == 0 {
		return Value{}, false
	}
	return c.dequeue(), true
}

// Close releases the buffer. Precondition: no Send or Recv is in
// flight. A blocked waiter at close time means the precondition was
// violated; Close panics in that case, and any later operation on the
// closed channel panics too.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		panic("runtime: close of closed channel")
	}
	if c.waiters > 0 {
		panic(fmt.Sprintf("runtime: channel closed with %d blocked operation(s)", c.waiters))
	}
	c.closed = true
	c.buf = nil
	c.size = 0
}

// enqueue and dequeue assume c.mu is held and the respective
// precondition (space/value available) holds.

func (c *Channel) enqueue(v Value) {
	c.buf[c.writePos] = v
	c.writePos = (c.writePos + 1) % c.capacity
	c.size++
	c.notEmpty.Signal()
}

func (c *Channel) dequeue() Value {
	v := c.buf[c.readPos]
	c.buf[c.readPos] = Value{}
	c.readPos = (c.readPos + 1) % c.capacity
	c.size--
	c.notFull.Signal()
	return v
}

func (c *Channel) checkOpen(op string) {
	if c.closed {
		panic("runtime: " + op + " on closed channel")
	}
}
