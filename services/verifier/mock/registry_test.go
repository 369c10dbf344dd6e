// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package mock

import (
	"sort"
	"testing"

	"github.com/AleutianAI/aisl/services/verifier/runtime"
)

func TestIntercept_Sequencing(t *testing.T) {
	r := NewRegistry()
	r.Install("fetch", runtime.Int(7))
	r.Install("fetch", runtime.Int(8))

	v, ok := r.Intercept("fetch")
	if !ok {
		t.Fatal("fetch should be intercepted")
	}
	if !runtime.Equal(v, runtime.Int(7)) {
		t.Errorf("first call = %s, want 7", runtime.Render(v))
	}

	v, _ = r.Intercept("fetch")
	if !runtime.Equal(v, runtime.Int(8)) {
		t.Errorf("second call = %s, want 8", runtime.Render(v))
	}
}

func TestIntercept_RepeatsLastValue(t *testing.T) {
	r := NewRegistry()
	r.Install("poll", runtime.Str("a"))
	r.Install("poll", runtime.Str("b"))

	r.Intercept("poll")
	r.Intercept("poll")
	for i := 0; i < 3; i++ {
		v, ok := r.Intercept("poll")
		if !ok {
			t.Fatal("poll should stay intercepted")
		}
		if !runtime.Equal(v, runtime.Str("b")) {
			t.Errorf("overflow call %d = %s, want \"b\"", i, runtime.Render(v))
		}
	}
}

func TestIntercept_SingleValueRepeats(t *testing.T) {
	r := NewRegistry()
	r.Install("now", runtime.Int(100))

	for i := 0; i < 5; i++ {
		v, ok := r.Intercept("now")
		if !ok || !runtime.Equal(v, runtime.Int(100)) {
			t.Fatalf("call %d = %s ok=%v, want 100", i, runtime.Render(v), ok)
		}
	}
}

func TestIntercept_Unmocked(t *testing.T) {
	r := NewRegistry()
	r.Install("fetch", runtime.Int(1))

	if _, ok := r.Intercept("other"); ok {
		t.Error("unmocked name should not be intercepted")
	}
	if r.Installed("other") {
		t.Error("Installed should be false for unmocked name")
	}
}

func TestIntercept_IndependentSequences(t *testing.T) {
	r := NewRegistry()
	r.Install("a", runtime.Int(1))
	r.Install("a", runtime.Int(2))
	r.Install("b", runtime.Str("x"))

	if v, _ := r.Intercept("b"); !runtime.Equal(v, runtime.Str("x")) {
		t.Errorf("b = %s, want \"x\"", runtime.Render(v))
	}
	if v, _ := r.Intercept("a"); !runtime.Equal(v, runtime.Int(1)) {
		t.Errorf("a first = %s, want 1", runtime.Render(v))
	}
	if v, _ := r.Intercept("a"); !runtime.Equal(v, runtime.Int(2)) {
		t.Errorf("a second = %s, want 2", runtime.Render(v))
	}
}

func TestCallCount(t *testing.T) {
	r := NewRegistry()
	r.Install("fetch", runtime.Int(7))

	if got := r.CallCount("fetch"); got != 0 {
		t.Errorf("CallCount before any call = %d, want 0", got)
	}
	r.Intercept("fetch")
	r.Intercept("fetch")
	r.Intercept("fetch")
	if got := r.CallCount("fetch"); got != 3 {
		t.Errorf("CallCount = %d, want 3", got)
	}
	if got := r.CallCount("other"); got != 0 {
		t.Errorf("CallCount for unmocked = %d, want 0", got)
	}
}

func TestNames(t *testing.T) {
	r := NewRegistry()
	r.Install("b", runtime.Unit())
	r.Install("a", runtime.Unit())
	r.Install("a", runtime.Unit())

	names := r.Names()
	sort.Strings(names)
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names = %v, want [a b]", names)
	}
}

func TestFreshRegistryIsEmpty(t *testing.T) {
	r := NewRegistry()
	if len(r.Names()) != 0 {
		t.Errorf("fresh registry has names %v", r.Names())
	}
	if _, ok := r.Intercept("anything"); ok {
		t.Error("fresh registry intercepted a call")
	}
}
