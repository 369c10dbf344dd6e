// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package mock implements the per-test-case interception table with
// call-sequenced return values.
//
// Contract: installing a test case's mocks collects the declared return
// values per intercepted function, in source order. Each interception
// consumes the next undelivered value; once the declared list is
// exhausted, further interceptions repeat the last declared value. The
// repeat-last policy is fixed deliberately — it keeps a case
// deterministic when the target calls a collaborator more often than
// the author anticipated, instead of turning the overflow into a
// nondeterministic error.
//
// A Registry lives exactly as long as one test case. The executor
// builds a fresh one per case and drops it when the case finishes,
// pass or fail, so sequences can never leak between cases.
package mock

import "github.com/AleutianAI/aisl/services/verifier/runtime"

// Registry maps intercepted function names to their canned return
// sequences. Not safe for concurrent use; each registry is owned by a
// single case execution.
type Registry struct {
	returns map[string][]runtime.Value
	next    map[string]int
	calls   map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		returns: make(map[string][]runtime.Value),
		next:    make(map[string]int),
		calls:   make(map[string]int),
	}
}

// Install appends one declared return value for name. Call order across
// Install calls must follow source order; the executor guarantees this
// by walking the case's mock specs front to back.
func (r *Registry) Install(name string, ret runtime.Value) {
	r.returns[name] = append(r.returns[name], ret)
}

// Installed reports whether name is intercepted.
func (r *Registry) Installed(name string) bool {
	_, ok := r.returns[name]
	return ok
}

// Intercept consumes and returns the next declared value for name.
// Beyond the declared list it repeats the last value. The second result
// is false when name is not mocked at all.
func (r *Registry) Intercept(name string) (runtime.Value, bool) {
	seq, ok := r.returns[name]
	if !ok {
		return runtime.Value{}, false
	}
	r.calls[name]++
	i := r.next[name]
	if i < len(seq)-1 {
		r.next[name] = i + 1
	}
	return seq[i], true
}

// CallCount returns how many interceptions name has served.
func (r *Registry) CallCount(name string) int {
	return r.calls[name]
}

// Names returns the intercepted function names (unordered).
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.returns))
	for name := range r.returns {
		names = append(names, name)
	}
	return names
}
