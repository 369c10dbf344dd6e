// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sexpr

import "github.com/AleutianAI/aisl/services/verifier/ast"

// annotateModule propagates types onto the nodes the wire format
// leaves bare: variable references, calls, and the operators above
// them. Sources of truth are parameter lists, let bindings, forall
// declarations, and function signatures. Nodes that reference unknown
// names keep a nil type; the module pass decides whether that matters.
func annotateModule(mod *ast.Module) {
	sigs := make(map[string]*ast.FuncDef)
	for _, fn := range mod.Functions() {
		if _, ok := sigs[fn.Name]; !ok {
			sigs[fn.Name] = fn
		}
	}

	for _, def := range mod.Defs {
		switch d := def.(type) {
		case *ast.FuncDef:
			scope := make(map[string]*ast.Type, len(d.Params))
			for _, p := range d.Params {
				scope[p.Name] = p.Type
			}
			annotate(d.Body, scope, sigs)

		case *ast.TestSpec:
			empty := map[string]*ast.Type{}
			for _, tc := range d.Cases {
				for _, m := range tc.Mocks {
					for _, a := range m.Args {
						annotate(a, empty, sigs)
					}
					annotate(m.Return, empty, sigs)
				}
				for _, in := range tc.Inputs {
					annotate(in, empty, sigs)
				}
				annotate(tc.Expected, empty, sigs)
			}

		case *ast.PropertySpec:
			for _, prop := range d.Props {
				scope := make(map[string]*ast.Type, len(prop.Params))
				for _, p := range prop.Params {
					scope[p.Name] = p.Type
				}
				if prop.Constraint != nil {
					annotate(prop.Constraint, scope, sigs)
				}
				annotate(prop.Assertion, scope, sigs)
			}
		}
	}
}

// annotate fills in missing type annotations bottom-up and returns the
// expression's type (nil when unknown).
func annotate(e ast.Expr, scope map[string]*ast.Type, sigs map[string]*ast.FuncDef) *ast.Type {
	switch x := e.(type) {
	case *ast.VarRef:
		if x.T == nil {
			if t, ok := scope[x.Name]; ok {
				x.T = t.Clone()
			}
		}
		return x.T

	case *ast.BinaryExpr:
		lt := annotate(x.Left, scope, sigs)
		annotate(x.Right, scope, sigs)
		if x.T == nil {
			switch x.Op {
			case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpGt, ast.OpLte, ast.OpGte,
				ast.OpAnd, ast.OpOr:
				x.T = ast.Bool()
			case ast.OpConcat:
				x.T = ast.String()
			default:
				x.T = lt.Clone()
			}
		}
		return x.T

	case *ast.ApplyExpr:
		for _, a := range x.Args {
			annotate(a, scope, sigs)
		}
		ref, ok := x.Fn.(*ast.VarRef)
		if !ok {
			annotate(x.Fn, scope, sigs)
			return x.T
		}
		fn, known := sigs[ref.Name]
		if !known {
			return x.T
		}
		if ref.T == nil {
			params := make([]*ast.Type, len(fn.Params))
			for i, p := range fn.Params {
				params[i] = p.Type.Clone()
			}
			ref.T = ast.Function(params, fn.RetType.Clone())
		}
		if x.T == nil {
			x.T = fn.RetType.Clone()
		}
		return x.T

	case *ast.IfExpr:
		annotate(x.Cond, scope, sigs)
		tt := annotate(x.Then, scope, sigs)
		annotate(x.Else, scope, sigs)
		if x.T == nil {
			x.T = tt.Clone()
		}
		return x.T

	case *ast.SeqExpr:
		var last *ast.Type
		for _, sub := range x.Exprs {
			last = annotate(sub, scope, sigs)
		}
		if x.T == nil {
			if last != nil {
				x.T = last.Clone()
			} else {
				x.T = ast.Unit()
			}
		}
		return x.T

	case *ast.LetExpr:
		inner := make(map[string]*ast.Type, len(scope)+len(x.Bindings))
		for k, v := range scope {
			inner[k] = v
		}
		for i := range x.Bindings {
			b := &x.Bindings[i]
			vt := annotate(b.Value, inner, sigs)
			if b.TAnn != nil {
				inner[b.Name] = b.TAnn
			} else if vt != nil {
				inner[b.Name] = vt
			}
		}
		bt := annotate(x.Body, inner, sigs)
		if x.T == nil {
			x.T = bt.Clone()
		}
		return x.T

	case *ast.WhileExpr:
		annotate(x.Cond, scope, sigs)
		annotate(x.Body, scope, sigs)
		if x.T == nil {
			x.T = ast.Unit()
		}
		return x.T

	case *ast.ReturnExpr:
		vt := annotate(x.Value, scope, sigs)
		if x.T == nil {
			x.T = vt.Clone()
		}
		return x.T

	default:
		// Literals arrive annotated from the wire format.
		if e != nil {
			return e.ExprType()
		}
		return nil
	}
}
