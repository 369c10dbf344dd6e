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
	"fmt"
	"sync"
)

// Go runs fn detached: no handle, no join, no propagated cancellation.
// This is the language's baseline spawn semantics. A panic inside fn is
// swallowed, matching what a detached unit of work can observe anyway.
func Go(fn func()) {
	go func() {
		defer func() { _ = recover() }()
		fn()
	}()
}

// Task is a handle to a spawned unit of work, the additive capability
// layered over the detached baseline: callers that keep the handle may
// Join the result or request cooperative cancellation; callers that
// drop it get detached behavior.
type Task struct {
	done       chan struct{}
	cancel     chan struct{}
	cancelOnce sync.Once
	result     Value
	err        error
}

// Spawn starts fn on its own goroutine and returns its handle. fn
// receives the handle so it can poll Cancelled at safe points. A panic
// inside fn is recovered into the task's error.
func Spawn(fn func(t *Task) (Value, error)) *Task {
	t := &Task{
		done:   make(chan struct{}),
		cancel: make(chan struct{}),
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				t.result = Unit()
				t.err = fmt.Errorf("task panic: %v", r)
			}
			close(t.done)
		}()
		t.result, t.err = fn(t)
	}()
	return t
}

// Join blocks until the task finishes and returns its result.
func (t *Task) Join() (Value, error) {
	<-t.done
	return t.result, t.err
}

// JoinContext is Join with cancellation of the wait (the task itself
// keeps running; use Cancel to request it stop).
func (t *Task) JoinContext(ctx context.Context) (Value, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return Value{}, ctx.Err()
	}
}

// Cancel requests cooperative cancellation. Idempotent. The task must
// poll Cancelled to observe it.
func (t *Task) Cancel() {
	t.cancelOnce.Do(func() { close(t.cancel) })
}

// Cancelled reports whether cancellation was requested.
func (t *Task) Cancelled() bool {
	select {
	case <-t.cancel:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the task finishes.
func (t *Task) Done() <-chan struct{} { return t.done }
