// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"time"

	"github.com/AleutianAI/aisl/services/verifier/typecheck"
)

// SpecKind distinguishes concrete test specs from property specs.
type SpecKind int

const (
	SpecTest SpecKind = iota
	SpecProperty
)

// String returns "test" or "property".
func (k SpecKind) String() string {
	if k == SpecProperty {
		return "property"
	}
	return "test"
}

// Binding is one quantified variable's rendered value in a
// counterexample.
type Binding struct {
	Name  string
	Value string
}

// CaseResult records one test case or one property's outcome.
// Expected/Actual are rendered values for concrete cases;
// Counterexample carries the failing bindings for properties.
type CaseResult struct {
	Desc     string
	Line     int
	Passed   bool
	Expected string
	Actual   string

	Counterexample []Binding
	Unsatisfiable  bool
	Trials         int // accepted trials run (properties only)

	Err      string // evaluation/invocation/timeout message, if any
	Duration time.Duration
}

// SpecResult aggregates one spec's cases in source order.
type SpecResult struct {
	Kind   SpecKind
	Target string
	Line   int

	Total   int
	Passed  int
	Failed  int
	Skipped int

	// Err is the spec-level error message (e.g. an unresolved target).
	// When set, zero cases ran and Skipped covers the declared cases.
	Err string

	Cases    []CaseResult
	Duration time.Duration
}

// ModuleResult is one full verification run over a module.
type ModuleResult struct {
	RunID  string
	Module string

	// TypeErr, when set, prevented all execution; Specs is empty.
	TypeErr *typecheck.Error

	Specs []SpecResult
	Notes []string

	Total    int
	Passed   int
	Failed   int
	Duration time.Duration
}

// Ok reports whether the run completed with no type error, no
// spec-level errors, and no failed cases.
func (r *ModuleResult) Ok() bool {
	if r.TypeErr != nil {
		return false
	}
	for _, s := range r.Specs {
		if s.Err != "" || s.Failed > 0 {
			return false
		}
	}
	return true
}

func (r *ModuleResult) tally() {
	r.Total, r.Passed, r.Failed = 0, 0, 0
	for _, s := range r.Specs {
		r.Total += s.Total
		r.Passed += s.Passed
		r.Failed += s.Failed
	}
}
