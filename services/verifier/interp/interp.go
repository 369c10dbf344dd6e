// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package interp is the reference execution collaborator: a
// tree-walking evaluator over module function bodies. It implements
// engine.Invoker so the toolchain runs end-to-end without an external
// bytecode engine; a real VM slots in behind the same interface.
package interp

import (
	"context"
	"errors"
	"fmt"

	"github.com/AleutianAI/aisl/services/verifier/ast"
	"github.com/AleutianAI/aisl/services/verifier/engine"
	"github.com/AleutianAI/aisl/services/verifier/runtime"
)

// MaxCallDepth bounds recursion; beyond it an invocation errors
// instead of exhausting the goroutine stack.
const MaxCallDepth = 1000

// ErrUndefinedFunction means an invocation named a function the
// module does not define.
var ErrUndefinedFunction = errors.New("undefined function")

// ErrCallDepthExceeded means recursion passed MaxCallDepth.
var ErrCallDepthExceeded = errors.New("call depth exceeded")

type depthKey struct{}

// Interp evaluates function bodies of a single module. Immutable
// after construction; safe for concurrent Invoke calls.
type Interp struct {
	fns map[string]*ast.FuncDef
}

// New indexes mod's functions. The first definition of a name wins;
// modules with duplicates are rejected upstream by the type check.
func New(mod *ast.Module) *Interp {
	fns := make(map[string]*ast.FuncDef)
	for _, fn := range mod.Functions() {
		if _, ok := fns[fn.Name]; !ok {
			fns[fn.Name] = fn
		}
	}
	return &Interp{fns: fns}
}

// Invoke runs the named function with args bound to its parameters.
// Nested applications inside the body route back through the
// evaluator, so a ctx-scoped mock interceptor still sequences inner
// calls.
func (ip *Interp) Invoke(ctx context.Context, name string, args []runtime.Value) (runtime.Value, error) {
	fn, ok := ip.fns[name]
	if !ok {
		return runtime.Value{}, fmt.Errorf("%w: %s", ErrUndefinedFunction, name)
	}
	if len(args) != len(fn.Params) {
		return runtime.Value{}, fmt.Errorf("%s: arity mismatch: got %d args, want %d",
			name, len(args), len(fn.Params))
	}

	depth, _ := ctx.Value(depthKey{}).(int)
	if depth >= MaxCallDepth {
		return runtime.Value{}, fmt.Errorf("%w: %s at depth %d", ErrCallDepthExceeded, name, depth)
	}
	ctx = context.WithValue(ctx, depthKey{}, depth+1)

	env := engine.NewEnv()
	for i, p := range fn.Params {
		env.Bind(p.Name, args[i])
	}

	v, err := engine.Eval(ctx, fn.Body, env, ip)
	if err != nil {
		var ret *engine.ReturnValue
		if errors.As(err, &ret) {
			return ret.Val, nil
		}
		return runtime.Value{}, err
	}
	return v, nil
}
