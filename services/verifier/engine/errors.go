// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import "errors"

// Spec-level errors abort a single spec; the module's other specs
// still run. Case-level errors are recorded as failed cases and never
// abort the remaining cases in their spec.
var (
	// ErrFunctionNotFound means a spec's target function is not
	// defined in the module. The whole spec fails, zero cases run.
	ErrFunctionNotFound = errors.New("function not found")

	// ErrValueMismatch means a case's actual value did not equal its
	// expected value.
	ErrValueMismatch = errors.New("value mismatch")

	// ErrEvaluation means an input, expected, mock-return, constraint,
	// or assertion expression failed to evaluate.
	ErrEvaluation = errors.New("evaluation error")

	// ErrInvocation means the execution-engine collaborator returned
	// an error for the target invocation.
	ErrInvocation = errors.New("invocation error")

	// ErrAssertionViolated means a property assertion evaluated false
	// for some accepted binding; the binding is the counterexample.
	ErrAssertionViolated = errors.New("assertion violated")

	// ErrConstraintUnsatisfiable means the attempt cap was exhausted
	// before the trial quota was met. Never reported as a pass.
	ErrConstraintUnsatisfiable = errors.New("constraint unsatisfiable")

	// ErrNoInvoker means an expression applied a function but the
	// engine was constructed without an execution collaborator.
	ErrNoInvoker = errors.New("no invoker configured")
)
