// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/aisl/services/verifier/ast"
	"github.com/AleutianAI/aisl/services/verifier/mock"
	"github.com/AleutianAI/aisl/services/verifier/runtime"
)

// runTestSpec executes one concrete test spec. Cases run in source
// order; a failed or errored case never aborts its siblings.
func (e *Engine) runTestSpec(ctx context.Context, log *slog.Logger, fns map[string]*ast.FuncDef, spec *ast.TestSpec) SpecResult {
	start := time.Now()
	sr := SpecResult{
		Kind:   SpecTest,
		Target: spec.Target,
		Line:   spec.Line,
		Total:  len(spec.Cases),
	}

	fn, ok := fns[spec.Target]
	if !ok {
		sr.Err = fmt.Sprintf("%v: %s", ErrFunctionNotFound, spec.Target)
		sr.Skipped = len(spec.Cases)
		sr.Duration = time.Since(start)
		log.Warn("spec skipped", "target", spec.Target, "error", sr.Err)
		return sr
	}

	for _, tc := range spec.Cases {
		cr := e.runCase(ctx, fn, tc)
		caseDuration.WithLabelValues("test").Observe(cr.Duration.Seconds())
		casesRun.WithLabelValues("test", outcomeLabel(cr.Passed)).Inc()
		if cr.Passed {
			sr.Passed++
		} else {
			sr.Failed++
			log.Debug("case failed", "target", spec.Target, "case", cr.Desc,
				"expected", cr.Expected, "actual", cr.Actual, "error", cr.Err)
		}
		sr.Cases = append(sr.Cases, cr)
	}

	sr.Duration = time.Since(start)
	return sr
}

// runCase executes one test case: install mocks, evaluate inputs and
// expected, invoke, compare. The mock registry is case-local; its
// lifetime ends with the case regardless of outcome.
func (e *Engine) runCase(ctx context.Context, fn *ast.FuncDef, tc *ast.TestCase) CaseResult {
	start := time.Now()
	cr := CaseResult{Desc: tc.Desc, Line: tc.Line}
	defer func() { cr.Duration = time.Since(start) }()

	caseCtx, cancel := context.WithTimeout(ctx, e.caseTimeout)
	defer cancel()

	env := NewEnv()
	reg := mock.NewRegistry()
	for _, m := range tc.Mocks {
		ret, err := Eval(caseCtx, m.Return, env, e.inv)
		if err != nil {
			cr.Err = fmt.Sprintf("mock %s: %v", m.FuncName, err)
			return cr
		}
		reg.Install(m.FuncName, ret)
	}
	caseCtx = WithInterceptor(caseCtx, reg)

	inputs := make([]runtime.Value, len(tc.Inputs))
	for i, in := range tc.Inputs {
		v, err := Eval(caseCtx, in, env, e.inv)
		if err != nil {
			cr.Err = fmt.Sprintf("input %d: %v", i, err)
			return cr
		}
		inputs[i] = v
	}

	expected, err := Eval(caseCtx, tc.Expected, env, e.inv)
	if err != nil {
		cr.Err = fmt.Sprintf("expected value: %v", err)
		return cr
	}
	cr.Expected = runtime.Render(expected)

	actual, err := e.invoke(caseCtx, fn.Name, inputs)
	if err != nil {
		cr.Err = err.Error()
		return cr
	}
	cr.Actual = runtime.Render(actual)
	cr.Passed = runtime.Equal(expected, actual)
	return cr
}

// invoke dispatches to the execution collaborator in its own
// goroutine so a non-cooperative hang still hits the case deadline.
func (e *Engine) invoke(ctx context.Context, name string, args []runtime.Value) (runtime.Value, error) {
	if e.inv == nil {
		return runtime.Value{}, fmt.Errorf("%w: cannot invoke %q", ErrNoInvoker, name)
	}

	type outcome struct {
		val runtime.Value
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: panic in %q: %v", ErrInvocation, name, r)}
			}
		}()
		v, err := e.inv.Invoke(ctx, name, args)
		if err != nil {
			err = fmt.Errorf("%w: %s: %v", ErrInvocation, name, err)
		}
		done <- outcome{val: v, err: err}
	}()

	select {
	case out := <-done:
		return out.val, out.err
	case <-ctx.Done():
		return runtime.Value{}, fmt.Errorf("%w: %s: %v", ErrInvocation, name, ctx.Err())
	}
}
