// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package runtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewChannel_InvalidCapacity(t *testing.T) {
	for _, cap := range []int{0, -1} {
		if _, err := NewChannel(cap); !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("NewChannel(%d) err = %v, want ErrInvalidCapacity", cap, err)
		}
	}
}

func TestChannel_FIFO(t *testing.T) {
	ch, err := NewChannel(4)
	if err != nil {
		t.Fatal(err)
	}
	for i := int64(0); i < 4; i++ {
		ch.Send(Int(i))
	}
	if ch.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", ch.Len())
	}
	for i := int64(0); i < 4; i++ {
		got := ch.Recv()
		if got.AsInt() != i {
			t.Errorf("recv %d = %d, want %d", i, got.AsInt(), i)
		}
	}
}

func TestChannel_WrapAround(t *testing.T) {
	ch, _ := NewChannel(2)
	// Exercise cursor wrap by cycling more values than the capacity.
	for i := int64(0); i < 10; i++ {
		ch.Send(Int(i))
		if got := ch.Recv().AsInt(); got != i {
			t.Fatalf("recv = %d, want %d", got, i)
		}
	}
}

func TestChannel_SendBlocksWhileFull(t *testing.T) {
	ch, _ := NewChannel(1)
	ch.Send(Int(1))

	sent := make(chan struct{})
	go func() {
		ch.Send(Int(2))
		close(sent)
	}()

	select {
	case <-sent:
		t.Fatal("Send returned while channel full")
	case <-time.After(50 * time.Millisecond):
	}

	if got := ch.Recv().AsInt(); got != 1 {
		t.Fatalf("Recv = %d, want 1", got)
	}
	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("Send did not unblock after Recv")
	}
	if got := ch.Recv().AsInt(); got != 2 {
		t.Fatalf("Recv = %d, want 2", got)
	}
}

func TestChannel_ConcurrentFIFOAndBounds(t *testing.T) {
	const n = 1000
	ch, _ := NewChannel(8)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := int64(0); i < n; i++ {
			ch.Send(Int(i))
			if l := ch.Len(); l < 0 || l > ch.Cap() {
				t.Errorf("len %d outside [0, %d]", l, ch.Cap())
				return
			}
		}
	}()

	// Single producer, single consumer: receive order must equal send
	// order exactly.
	for i := int64(0); i < n; i++ {
		if got := ch.Recv().AsInt(); got != i {
			t.Fatalf("recv %d = %d, order violated", i, got)
		}
	}
	wg.Wait()
}

func TestChannel_TryOps(t *testing.T) {
	ch, _ := NewChannel(1)

	if _, ok := ch.TryRecv(); ok {
		t.Error("TryRecv on empty channel succeeded")
	}
	if !ch.TrySend(Int(1)) {
		t.Error("TrySend on empty channel failed")
	}
	if ch.TrySend(Int(2)) {
		t.Error("TrySend on full channel succeeded")
	}
	v, ok := ch.TryRecv()
	if !ok || v.AsInt() != 1 {
		t.Errorf("TryRecv = (%v, %v), want (1, true)", v, ok)
	}
}

func TestChannel_RecvContext_Timeout(t *testing.T) {
	ch, _ := NewChannel(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := ch.RecvContext(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RecvContext err = %v, want DeadlineExceeded", err)
	}
}

func TestChannel_SendContext_Timeout(t *testing.T) {
	ch, _ := NewChannel(1)
	ch.Send(Int(1))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := ch.SendContext(ctx, Int(2)); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("SendContext err = %v, want DeadlineExceeded", err)
	}
	// The buffered value is untouched.
	if got := ch.Recv().AsInt(); got != 1 {
		t.Errorf("Recv = %d, want 1", got)
	}
}

func TestChannel_CloseTwicePanics(t *testing.T) {
	ch, _ := NewChannel(1)
	ch.Close()
	defer func() {
		if recover() == nil {
			t.Error("second Close did not panic")
		}
	}()
	ch.Close()
}

func TestChannel_OperationAfterClosePanics(t *testing.T) {
	ch, _ := NewChannel(1)
	ch.Close()
	defer func() {
		if recover() == nil {
			t.Error("Send on closed channel did not panic")
		}
	}()
	ch.Send(Int(1))
}
