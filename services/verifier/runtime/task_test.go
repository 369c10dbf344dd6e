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

func TestGo_Detached(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	Go(func() {
		defer wg.Done()
	})
	wg.Wait()
}

func TestGo_SwallowsPanic(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	Go(func() {
		defer wg.Done()
		panic("detached panic")
	})
	wg.Wait()
	// Reaching here means the panic stayed inside the spawned unit.
}

func TestSpawn_Join(t *testing.T) {
	task := Spawn(func(t *Task) (Value, error) {
		return Int(99), nil
	})
	v, err := task.Join()
	if err != nil {
		t.Fatalf("Join err = %v", err)
	}
	if v.AsInt() != 99 {
		t.Errorf("Join = %d, want 99", v.AsInt())
	}
	// Join after completion still returns the same result.
	v2, _ := task.Join()
	if v2.AsInt() != 99 {
		t.Errorf("repeat Join = %d, want 99", v2.AsInt())
	}
}

func TestSpawn_PanicBecomesError(t *testing.T) {
	task := Spawn(func(t *Task) (Value, error) {
		panic("boom")
	})
	if _, err := task.Join(); err == nil {
		t.Error("Join err = nil, want recovered panic")
	}
}

func TestSpawn_Cancel(t *testing.T) {
	started := make(chan struct{})
	task := Spawn(func(t *Task) (Value, error) {
		close(started)
		for !t.Cancelled() {
			time.Sleep(time.Millisecond)
		}
		return Unit(), errors.New("cancelled")
	})
	<-started

	task.Cancel()
	task.Cancel() // idempotent

	if _, err := task.Join(); err == nil {
		t.Error("cooperatively cancelled task returned no error")
	}
}

func TestSpawn_JoinContext(t *testing.T) {
	release := make(chan struct{})
	task := Spawn(func(t *Task) (Value, error) {
		<-release
		return Unit(), nil
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := task.JoinContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("JoinContext err = %v, want DeadlineExceeded", err)
	}
}
