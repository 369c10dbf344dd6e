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

	"github.com/AleutianAI/aisl/services/verifier/ast"
	"github.com/AleutianAI/aisl/services/verifier/runtime"
)

// Invoker is the execution-engine collaborator boundary: invoke a
// module function by name with argument values, get a result value or
// an error. The reference tree-walking interpreter implements it; a
// bytecode VM would slot in the same way.
type Invoker interface {
	Invoke(ctx context.Context, name string, args []runtime.Value) (runtime.Value, error)
}

// Env is a lexically scoped variable binding. Lookup walks outward
// through parent scopes.
type Env struct {
	vars   map[string]runtime.Value
	parent *Env
}

// NewEnv returns an empty top-level environment.
func NewEnv() *Env {
	return &Env{vars: make(map[string]runtime.Value)}
}

// Child returns a nested scope over e.
func (e *Env) Child() *Env {
	return &Env{vars: make(map[string]runtime.Value), parent: e}
}

// Bind sets name to v in this scope, shadowing any outer binding.
func (e *Env) Bind(name string, v runtime.Value) {
	e.vars[name] = v
}

// Lookup resolves name through this scope and its parents.
func (e *Env) Lookup(name string) (runtime.Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return runtime.Value{}, false
}

// ReturnValue signals early return from a function body. It travels
// the error path so every evaluation frame unwinds; the function-level
// caller unwraps it with errors.As and treats Val as the result.
type ReturnValue struct {
	Val runtime.Value
}

func (r *ReturnValue) Error() string { return "return outside function body" }

// Eval evaluates expr under env. Function applications consult the
// ctx-scoped Interceptor first (mock call-sequence semantics), then
// fall through to inv. Eval is used for test inputs, expected values,
// mock returns, property constraints and assertions, and by the
// reference interpreter for function bodies.
func Eval(ctx context.Context, expr ast.Expr, env *Env, inv Invoker) (runtime.Value, error) {
	switch n := expr.(type) {
	case *ast.IntLit:
		return runtime.Int(n.Val), nil
	case *ast.FloatLit:
		return runtime.Float(n.Val), nil
	case *ast.StringLit:
		return runtime.Str(n.Val), nil
	case *ast.BoolLit:
		return runtime.Bool(n.Val), nil
	case *ast.UnitLit:
		return runtime.Unit(), nil

	case *ast.VarRef:
		if v, ok := env.Lookup(n.Name); ok {
			return v, nil
		}
		return runtime.Value{}, fmt.Errorf("%w: unbound variable %q", ErrEvaluation, n.Name)

	case *ast.BinaryExpr:
		return evalBinary(ctx, n, env, inv)

	case *ast.ApplyExpr:
		return evalApply(ctx, n, env, inv)

	case *ast.IfExpr:
		cond, err := Eval(ctx, n.Cond, env, inv)
		if err != nil {
			return runtime.Value{}, err
		}
		if cond.Kind != ast.KindBool {
			return runtime.Value{}, fmt.Errorf("%w: if condition is %s, want bool",
				ErrEvaluation, cond.Kind)
		}
		if cond.AsBool() {
			return Eval(ctx, n.Then, env, inv)
		}
		return Eval(ctx, n.Else, env, inv)

	case *ast.SeqExpr:
		last := runtime.Unit()
		for _, sub := range n.Exprs {
			v, err := Eval(ctx, sub, env, inv)
			if err != nil {
				return runtime.Value{}, err
			}
			last = v
		}
		return last, nil

	case *ast.LetExpr:
		scope := env.Child()
		for _, b := range n.Bindings {
			v, err := Eval(ctx, b.Value, scope, inv)
			if err != nil {
				return runtime.Value{}, err
			}
			scope.Bind(b.Name, v)
		}
		return Eval(ctx, n.Body, scope, inv)

	case *ast.WhileExpr:
		for {
			if err := ctx.Err(); err != nil {
				return runtime.Value{}, fmt.Errorf("%w: %v", ErrEvaluation, err)
			}
			cond, err := Eval(ctx, n.Cond, env, inv)
			if err != nil {
				return runtime.Value{}, err
			}
			if cond.Kind != ast.KindBool {
				return runtime.Value{}, fmt.Errorf("%w: while condition is %s, want bool",
					ErrEvaluation, cond.Kind)
			}
			if !cond.AsBool() {
				return runtime.Unit(), nil
			}
			if _, err := Eval(ctx, n.Body, env, inv); err != nil {
				return runtime.Value{}, err
			}
		}

	case *ast.ReturnExpr:
		v, err := Eval(ctx, n.Value, env, inv)
		if err != nil {
			return runtime.Value{}, err
		}
		return runtime.Value{}, &ReturnValue{Val: v}

	case *ast.IOOpenExpr, *ast.IOReadExpr, *ast.IOWriteExpr, *ast.IOCloseExpr:
		return runtime.Value{}, fmt.Errorf("%w: io primitives are unavailable during verification",
			ErrEvaluation)

	default:
		return runtime.Value{}, fmt.Errorf("%w: unknown expression node %T", ErrEvaluation, expr)
	}
}

func evalApply(ctx context.Context, n *ast.ApplyExpr, env *Env, inv Invoker) (runtime.Value, error) {
	ref, ok := n.Fn.(*ast.VarRef)
	if !ok {
		return runtime.Value{}, fmt.Errorf("%w: indirect calls are not supported", ErrEvaluation)
	}

	args := make([]runtime.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := Eval(ctx, a, env, inv)
		if err != nil {
			return runtime.Value{}, err
		}
		args[i] = v
	}

	if ic, ok := InterceptorFrom(ctx); ok {
		if v, hit := ic.Intercept(ref.Name); hit {
			return v, nil
		}
	}

	if inv == nil {
		return runtime.Value{}, fmt.Errorf("%w: cannot apply %q", ErrNoInvoker, ref.Name)
	}
	return inv.Invoke(ctx, ref.Name, args)
}

func evalBinary(ctx context.Context, n *ast.BinaryExpr, env *Env, inv Invoker) (runtime.Value, error) {
	// and/or short-circuit before the right operand is evaluated.
	if n.Op == ast.OpAnd || n.Op == ast.OpOr {
		left, err := Eval(ctx, n.Left, env, inv)
		if err != nil {
			return runtime.Value{}, err
		}
		if left.Kind != ast.KindBool {
			return runtime.Value{}, fmt.Errorf("%w: %s operand is %s, want bool",
				ErrEvaluation, n.Op, left.Kind)
		}
		if n.Op == ast.OpAnd && !left.AsBool() {
			return runtime.Bool(false), nil
		}
		if n.Op == ast.OpOr && left.AsBool() {
			return runtime.Bool(true), nil
		}
		right, err := Eval(ctx, n.Right, env, inv)
		if err != nil {
			return runtime.Value{}, err
		}
		if right.Kind != ast.KindBool {
			return runtime.Value{}, fmt.Errorf("%w: %s operand is %s, want bool",
				ErrEvaluation, n.Op, right.Kind)
		}
		return right, nil
	}

	left, err := Eval(ctx, n.Left, env, inv)
	if err != nil {
		return runtime.Value{}, err
	}
	right, err := Eval(ctx, n.Right, env, inv)
	if err != nil {
		return runtime.Value{}, err
	}
	return applyBinary(n.Op, left, right)
}

func applyBinary(op ast.BinaryOp, l, r runtime.Value) (runtime.Value, error) {
	switch op {
	case ast.OpEq:
		return runtime.Bool(runtime.Equal(l, r)), nil
	case ast.OpNeq:
		return runtime.Bool(!runtime.Equal(l, r)), nil
	}

	switch {
	case l.Kind == ast.KindInt && r.Kind == ast.KindInt:
		return intBinary(op, l.AsInt(), r.AsInt())
	case l.Kind == ast.KindFloat && r.Kind == ast.KindFloat:
		return floatBinary(op, l.AsFloat(), r.AsFloat())
	case l.Kind == ast.KindString && r.Kind == ast.KindString:
		return stringBinary(op, l.AsStr(), r.AsStr())
	default:
		return runtime.Value{}, fmt.Errorf("%w: operator %s on %s and %s",
			ErrEvaluation, op, l.Kind, r.Kind)
	}
}

func intBinary(op ast.BinaryOp, l, r int64) (runtime.Value, error) {
	switch op {
	case ast.OpAdd:
		return runtime.Int(l + r), nil
	case ast.OpSub:
		return runtime.Int(l - r), nil
	case ast.OpMul:
		return runtime.Int(l * r), nil
	case ast.OpDiv:
		if r == 0 {
			return runtime.Value{}, fmt.Errorf("%w: division by zero", ErrEvaluation)
		}
		return runtime.Int(l / r), nil
	case ast.OpMod:
		if r == 0 {
			return runtime.Value{}, fmt.Errorf("%w: modulo by zero", ErrEvaluation)
		}
		return runtime.Int(l % r), nil
	case ast.OpLt:
		return runtime.Bool(l < r), nil
	case ast.OpGt:
		return runtime.Bool(l > r), nil
	case ast.OpLte:
		return runtime.Bool(l <= r), nil
	case ast.OpGte:
		return runtime.Bool(l >= r), nil
	default:
		return runtime.Value{}, fmt.Errorf("%w: operator %s on int operands", ErrEvaluation, op)
	}
}

func floatBinary(op ast.BinaryOp, l, r float64) (runtime.Value, error) {
	switch op {
	case ast.OpAdd:
		return runtime.Float(l + r), nil
	case ast.OpSub:
		return runtime.Float(l - r), nil
	case ast.OpMul:
		return runtime.Float(l * r), nil
	case ast.OpDiv:
		if r == 0 {
			return runtime.Value{}, fmt.Errorf("%w: division by zero", ErrEvaluation)
		}
		return runtime.Float(l / r), nil
	case ast.OpLt:
		return runtime.Bool(l < r), nil
	case ast.OpGt:
		return runtime.Bool(l > r), nil
	case ast.OpLte:
		return runtime.Bool(l <= r), nil
	case ast.OpGte:
		return runtime.Bool(l >= r), nil
	default:
		return runtime.Value{}, fmt.Errorf("%w: operator %s on float operands", ErrEvaluation, op)
	}
}

func stringBinary(op ast.BinaryOp, l, r string) (runtime.Value, error) {
	switch op {
	case ast.OpConcat:
		return runtime.Str(l + r), nil
	case ast.OpLt:
		return runtime.Bool(l < r), nil
	case ast.OpGt:
		return runtime.Bool(l > r), nil
	case ast.OpLte:
		return runtime.Bool(l <= r), nil
	case ast.OpGte:
		return runtime.Bool(l >= r), nil
	default:
		return runtime.Value{}, fmt.Errorf("%w: operator %s on string operands", ErrEvaluation, op)
	}
}
