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
	"sync"
)

// Future is a single-assignment cell. Complete sets the value exactly
// once and wakes every waiter; once completed the future never reverts,
// and all awaiters observe the same value (completion happens-before
// every Await return). Completing twice is a programming error and
// panics.
type Future struct {
	mu        sync.Mutex
	cond      *sync.Cond
	completed bool
	val       Value
}

// NewFuture returns an incomplete future.
func NewFuture() *Future {
	f := &Future{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Complete sets the value and broadcasts to all waiters. A second call
// panics: silently overwriting a completed future would let two
// awaiters observe different values.
func (f *Future) Complete(v Value) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completed {
		panic("runtime: future completed twice")
	}
	f.val = v
	f.completed = true
	f.cond.Broadcast()
}

// Await blocks until the future completes, then returns the memoized
// value. Calls after completion return immediately; repeated calls by
// any caller return the same value.
func (f *Future) Await() Value {
	f.mu.Lock()
	defer f.mu.Unlock()
	for !f.completed {
		f.cond.Wait()
	}
	return f.val
}

// AwaitContext is Await with cancellation, used by the engine's
// per-case timeout to turn a never-completed future into a reported
// failure instead of a hung run.
func (f *Future) AwaitContext(ctx context.Context) (Value, error) {
	stop := context.AfterFunc(ctx, func() {
		f.mu.Lock()
		f.cond.Broadcast()
		f.mu.Unlock()
	})
	defer stop()

	f.mu.Lock()
	defer f.mu.Unlock()
	for !f.completed {
		if err := ctx.Err(); err != nil {
			return Value{}, err
		}
		f.cond.Wait()
	}
	return f.val, nil
}

// Completed reports whether the future has a value.
func (f *Future) Completed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}
