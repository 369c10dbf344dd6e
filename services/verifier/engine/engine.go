// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package engine extracts test and property specifications from a
// module and executes them against an execution-engine collaborator.
//
// A run proceeds in three phases: the module type-check gate (a type
// error prevents all execution), ordered spec extraction, and per-spec
// execution. Execution within one spec is strictly sequential because
// mock call-sequence semantics and counterexample reproducibility
// depend on case order; independent specs may run concurrently since
// every spec gets its own mock registry and its own seeded generator.
//
// # Usage
//
//	eng := engine.New(invoker,
//	    engine.WithLogger(log),
//	    engine.WithSeed(42),
//	)
//	result, err := eng.Run(ctx, mod)
//
// # Thread Safety
//
// An Engine is immutable after construction and safe for concurrent
// Run calls.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/aisl/services/verifier/ast"
	"github.com/AleutianAI/aisl/services/verifier/generate"
	"github.com/AleutianAI/aisl/services/verifier/typecheck"
)

const (
	// DefaultCaseTimeout bounds a single case or trial; a hang becomes
	// a recorded failure instead of blocking the run.
	DefaultCaseTimeout = 5 * time.Second

	// DefaultAttemptCap is the multiplier on a property's trial count
	// that bounds constraint-rejected generation attempts.
	DefaultAttemptCap = 100
)

// Engine runs a module's test and property specs.
type Engine struct {
	inv            Invoker
	log            *slog.Logger
	seed           int64
	caseTimeout    time.Duration
	attemptCapMult int
	concurrency    int
	trialsOverride int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithSeed fixes the property generator seed for reproducible runs.
// Each spec derives its own generator from this seed, so results are
// stable regardless of spec scheduling.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithCaseTimeout overrides DefaultCaseTimeout.
func WithCaseTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.caseTimeout = d
		}
	}
}

// WithAttemptCap overrides the attempt-cap multiplier.
func WithAttemptCap(mult int) Option {
	return func(e *Engine) {
		if mult > 0 {
			e.attemptCapMult = mult
		}
	}
}

// WithTrials overrides every property's trial count. Zero keeps the
// counts the specs declare.
func WithTrials(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.trialsOverride = n
		}
	}
}

// WithConcurrency allows up to n specs to run concurrently.
// Default 1 (fully sequential, source order).
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// New creates an Engine bound to an execution collaborator.
func New(inv Invoker, opts ...Option) *Engine {
	e := &Engine{
		inv:            inv,
		log:            slog.Default(),
		seed:           time.Now().UnixNano(),
		caseTimeout:    DefaultCaseTimeout,
		attemptCapMult: DefaultAttemptCap,
		concurrency:    1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// specJob is one extracted spec with its source position.
type specJob struct {
	kind SpecKind
	test *ast.TestSpec
	prop *ast.PropertySpec
}

// Run verifies mod: type-check gate, ordered extraction, execution.
// The returned error covers engine misuse only; verification failures
// live in the result.
func (e *Engine) Run(ctx context.Context, mod *ast.Module) (*ModuleResult, error) {
	start := time.Now()
	res := &ModuleResult{
		RunID:  uuid.NewString(),
		Module: mod.Name,
	}
	for _, note := range mod.Notes() {
		res.Notes = append(res.Notes, note.Text)
	}

	log := e.log.With("run_id", res.RunID, "module", mod.Name)

	if terr := typecheck.CheckModule(mod); terr != nil {
		log.Error("module rejected by type check",
			"code", terr.Code, "line", terr.Line, "error", terr.Message)
		res.TypeErr = terr
		res.Duration = time.Since(start)
		return res, nil
	}

	fns := make(map[string]*ast.FuncDef)
	for _, fn := range mod.Functions() {
		// First definition wins; duplicates were rejected above.
		if _, ok := fns[fn.Name]; !ok {
			fns[fn.Name] = fn
		}
	}

	var jobs []specJob
	for _, def := range mod.Defs {
		switch d := def.(type) {
		case *ast.TestSpec:
			jobs = append(jobs, specJob{kind: SpecTest, test: d})
		case *ast.PropertySpec:
			jobs = append(jobs, specJob{kind: SpecProperty, prop: d})
		}
	}
	log.Info("verification started", "specs", len(jobs), "seed", e.seed)

	res.Specs = make([]SpecResult, len(jobs))
	if e.concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.concurrency)
		for i, job := range jobs {
			i, job := i, job
			g.Go(func() error {
				res.Specs[i] = e.runSpec(gctx, log, fns, job, i)
				return nil
			})
		}
		// Spec failures are recorded per result, never group errors.
		_ = g.Wait()
	} else {
		for i, job := range jobs {
			res.Specs[i] = e.runSpec(ctx, log, fns, job, i)
		}
	}

	res.tally()
	res.Duration = time.Since(start)
	log.Info("verification finished",
		"total", res.Total, "passed", res.Passed, "failed", res.Failed,
		"duration", res.Duration)
	return res, nil
}

func (e *Engine) runSpec(ctx context.Context, log *slog.Logger, fns map[string]*ast.FuncDef, job specJob, idx int) SpecResult {
	var sr SpecResult
	switch job.kind {
	case SpecProperty:
		// Seed derived per spec position so concurrent scheduling
		// cannot perturb reproducibility.
		gen := generate.New(e.seed + int64(idx))
		sr = e.runPropertySpec(ctx, log, fns, job.prop, gen)
	default:
		sr = e.runTestSpec(ctx, log, fns, job.test)
	}

	switch {
	case sr.Err != "":
		specsRun.WithLabelValues(sr.Kind.String(), "error").Inc()
	case sr.Failed > 0:
		specsRun.WithLabelValues(sr.Kind.String(), "fail").Inc()
	default:
		specsRun.WithLabelValues(sr.Kind.String(), "pass").Inc()
	}
	return sr
}
