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
	"github.com/AleutianAI/aisl/services/verifier/generate"
	"github.com/AleutianAI/aisl/services/verifier/runtime"
)

// runPropertySpec executes one property spec. Properties run in
// source order against a spec-local generator, so a fixed engine seed
// reproduces every trial sequence exactly.
func (e *Engine) runPropertySpec(ctx context.Context, log *slog.Logger, fns map[string]*ast.FuncDef, spec *ast.PropertySpec, gen *generate.Generator) SpecResult {
	start := time.Now()
	sr := SpecResult{
		Kind:   SpecProperty,
		Target: spec.Target,
		Line:   spec.Line,
		Total:  len(spec.Props),
	}

	if _, ok := fns[spec.Target]; !ok {
		sr.Err = fmt.Sprintf("%v: %s", ErrFunctionNotFound, spec.Target)
		sr.Skipped = len(spec.Props)
		sr.Duration = time.Since(start)
		log.Warn("spec skipped", "target", spec.Target, "error", sr.Err)
		return sr
	}

	for _, prop := range spec.Props {
		cr := e.runProperty(ctx, prop, gen)
		caseDuration.WithLabelValues("property").Observe(cr.Duration.Seconds())
		casesRun.WithLabelValues("property", outcomeLabel(cr.Passed)).Inc()
		if cr.Passed {
			sr.Passed++
		} else {
			sr.Failed++
			log.Debug("property failed", "target", spec.Target, "property", cr.Desc,
				"counterexample", cr.Counterexample, "error", cr.Err)
		}
		sr.Cases = append(sr.Cases, cr)
	}

	sr.Duration = time.Since(start)
	return sr
}

// runProperty runs one quantified property: generate a fresh binding
// per forall param, filter by the constraint, check the assertion.
// The first violated assertion stops the property with its literal
// bindings as the counterexample.
func (e *Engine) runProperty(ctx context.Context, prop *ast.PropertyTest, gen *generate.Generator) CaseResult {
	start := time.Now()
	cr := CaseResult{Desc: prop.Desc, Line: prop.Line}
	defer func() { cr.Duration = time.Since(start) }()

	trials := prop.Trials
	if trials <= 0 {
		trials = ast.DefaultTrials
	}
	if e.trialsOverride > 0 {
		trials = e.trialsOverride
	}
	attemptCap := trials * e.attemptCapMult

	accepted := 0
	for attempts := 0; attempts < attemptCap && accepted < trials; attempts++ {
		env := NewEnv()
		bindings := make([]Binding, 0, len(prop.Params))
		for _, p := range prop.Params {
			v, err := gen.Value(p.Type)
			if err != nil {
				// Channel/future/function foralls cannot be generated.
				cr.Err = fmt.Sprintf("forall %s: %v", p.Name, err)
				cr.Trials = accepted
				return cr
			}
			env.Bind(p.Name, v)
			bindings = append(bindings, Binding{Name: p.Name, Value: runtime.Render(v)})
		}

		out, err := e.runTrial(ctx, prop, env)
		if err != nil {
			cr.Err = err.Error()
			cr.Trials = accepted
			return cr
		}
		if out.rejected {
			rejectedAttempts.Inc()
			continue
		}
		if !out.holds {
			cr.Err = ErrAssertionViolated.Error()
			cr.Counterexample = bindings
			cr.Trials = accepted
			return cr
		}
		accepted++
		propertyTrials.Inc()
	}

	cr.Trials = accepted
	if accepted < trials {
		cr.Unsatisfiable = true
		cr.Err = fmt.Sprintf("%v: %d of %d trials accepted within %d attempts",
			ErrConstraintUnsatisfiable, accepted, trials, attemptCap)
		return cr
	}
	cr.Passed = true
	return cr
}

// trialOutcome distinguishes constraint-rejected attempts from
// checked ones.
type trialOutcome struct {
	rejected bool
	holds    bool
}

// runTrial evaluates the constraint and assertion under one binding,
// each trial under its own deadline.
func (e *Engine) runTrial(ctx context.Context, prop *ast.PropertyTest, env *Env) (trialOutcome, error) {
	trialCtx, cancel := context.WithTimeout(ctx, e.caseTimeout)
	defer cancel()

	if prop.Constraint != nil {
		v, err := Eval(trialCtx, prop.Constraint, env, e.inv)
		if err != nil {
			return trialOutcome{}, fmt.Errorf("constraint: %w", err)
		}
		if v.Kind != ast.KindBool {
			return trialOutcome{}, fmt.Errorf("%w: constraint is %s, want bool",
				ErrEvaluation, v.Kind)
		}
		if !v.AsBool() {
			return trialOutcome{rejected: true}, nil
		}
	}

	v, err := Eval(trialCtx, prop.Assertion, env, e.inv)
	if err != nil {
		return trialOutcome{}, fmt.Errorf("assertion: %w", err)
	}
	if v.Kind != ast.KindBool {
		return trialOutcome{}, fmt.Errorf("%w: assertion is %s, want bool",
			ErrEvaluation, v.Kind)
	}
	return trialOutcome{holds: v.AsBool()}, nil
}
