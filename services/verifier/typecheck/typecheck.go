// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package typecheck implements the structural type relations the
// verification engine consumes, plus the fail-fast module pass that
// gates test execution.
//
// Compatibility is deliberately kind-only: composite element types are
// not compared. Widening it would change which channel/future-typed
// values are interchangeable, so the current relation is kept and the
// gap is documented rather than silently closed.
package typecheck

import (
	"fmt"

	"github.com/AleutianAI/aisl/services/verifier/ast"
)

// =============================================================================
// Errors
// =============================================================================

// Error codes surfaced by CheckModule. A module-level error aborts the
// whole pass; the engine reports it distinctly from test failures and
// runs nothing.
const (
	CodeMissingType       = "MISSING_TYPE"
	CodeTypeMismatch      = "TYPE_MISMATCH"
	CodeMissingReturnType = "MISSING_RETURN_TYPE"
	CodeMissingParamType  = "MISSING_PARAM_TYPE"
	CodeDuplicateFunction = "DUPLICATE_FUNCTION"
)

// Error is a module-level type error with a stable code for machine
// consumption and a human-readable message.
type Error struct {
	Code    string
	Message string
	Line    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (line %d)", e.Code, e.Message, e.Line)
}

// =============================================================================
// Type relations
// =============================================================================

func intFamily(k ast.Kind) bool {
	switch k {
	case ast.KindInt, ast.KindI8, ast.KindI16, ast.KindI32, ast.KindI64,
		ast.KindU8, ast.KindU16, ast.KindU32, ast.KindU64:
		return true
	}
	return false
}

func floatFamily(k ast.Kind) bool {
	switch k {
	case ast.KindFloat, ast.KindF32, ast.KindF64:
		return true
	}
	return false
}

// Equal reports strict kind equality.
func Equal(a, b *ast.Type) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Kind == b.Kind
}

// Compatible reports whether values of the two declared types may be
// compared: same kind, or both kinds in the integer family, or both in
// the float family. Element types of composites are not inspected.
func Compatible(a, b *ast.Type) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind == b.Kind {
		return true
	}
	if intFamily(a.Kind) && intFamily(b.Kind) {
		return true
	}
	if floatFamily(a.Kind) && floatFamily(b.Kind) {
		return true
	}
	return false
}

// =============================================================================
// Module pass
// =============================================================================

// CheckModule runs the fail-fast structural pass over a module. It
// returns the first error found, or nil. Duplicate function names are
// rejected here so that by-name resolution is never ambiguous later.
func CheckModule(mod *ast.Module) *Error {
	if mod == nil {
		return &Error{Code: CodeTypeMismatch, Message: "module is nil"}
	}
	seen := make(map[string]int, len(mod.Defs))
	for _, def := range mod.Defs {
		fn, ok := def.(*ast.FuncDef)
		if !ok {
			continue
		}
		if prev, dup := seen[fn.Name]; dup {
			return &Error{
				Code:    CodeDuplicateFunction,
				Message: fmt.Sprintf("function %q already defined at line %d", fn.Name, prev),
				Line:    fn.Line,
			}
		}
		seen[fn.Name] = fn.Line
		if err := checkFunction(fn); err != nil {
			return err
		}
	}
	return nil
}

func checkFunction(fn *ast.FuncDef) *Error {
	if fn.RetType == nil {
		return &Error{
			Code:    CodeMissingReturnType,
			Message: fmt.Sprintf("function %q missing return type", fn.Name),
			Line:    fn.Line,
		}
	}
	for _, p := range fn.Params {
		if p.Type == nil {
			return &Error{
				Code:    CodeMissingParamType,
				Message: fmt.Sprintf("parameter %q in function %q missing type", p.Name, fn.Name),
				Line:    fn.Line,
			}
		}
	}
	return checkExpr(fn.Body, fn.Line)
}

// checkExpr walks an expression and enforces the structural rules the
// exporter must have satisfied: literals annotated with the right kind,
// bool conditions, compatible if branches and binary operands.
func checkExpr(e ast.Expr, line int) *Error {
	if e == nil {
		return nil
	}
	switch x := e.(type) {
	case *ast.IntLit:
		if x.T == nil {
			return &Error{Code: CodeMissingType, Message: "integer literal missing type annotation", Line: line}
		}
	case *ast.FloatLit:
		if x.T == nil {
			return &Error{Code: CodeMissingType, Message: "float literal missing type annotation", Line: line}
		}
	case *ast.StringLit:
		if x.T == nil || x.T.Kind != ast.KindString {
			return &Error{Code: CodeTypeMismatch, Message: "string literal must have string type", Line: line}
		}
	case *ast.BoolLit:
		if x.T == nil || x.T.Kind != ast.KindBool {
			return &Error{Code: CodeTypeMismatch, Message: "boolean literal must have bool type", Line: line}
		}
	case *ast.UnitLit:
		if x.T == nil || x.T.Kind != ast.KindUnit {
			return &Error{Code: CodeTypeMismatch, Message: "unit literal must have unit type", Line: line}
		}
	case *ast.BinaryExpr:
		if err := checkExpr(x.Left, line); err != nil {
			return err
		}
		if err := checkExpr(x.Right, line); err != nil {
			return err
		}
		lt, rt := x.Left.ExprType(), x.Right.ExprType()
		if !Compatible(lt, rt) {
			return &Error{
				Code:    CodeTypeMismatch,
				Message: fmt.Sprintf("binary %s has incompatible operands: %s vs %s", x.Op, lt, rt),
				Line:    line,
			}
		}
	case *ast.ApplyExpr:
		if err := checkExpr(x.Fn, line); err != nil {
			return err
		}
		for _, arg := range x.Args {
			if err := checkExpr(arg, line); err != nil {
				return err
			}
		}
	case *ast.IfExpr:
		if err := checkExpr(x.Cond, line); err != nil {
			return err
		}
		if ct := x.Cond.ExprType(); ct != nil && ct.Kind != ast.KindBool {
			return &Error{Code: CodeTypeMismatch, Message: "if condition must be bool", Line: line}
		}
		if err := checkExpr(x.Then, line); err != nil {
			return err
		}
		if err := checkExpr(x.Else, line); err != nil {
			return err
		}
		if x.Then != nil && x.Else != nil {
			tt, et := x.Then.ExprType(), x.Else.ExprType()
			if !Compatible(tt, et) {
				return &Error{
					Code:    CodeTypeMismatch,
					Message: fmt.Sprintf("if branches have incompatible types: %s vs %s", tt, et),
					Line:    line,
				}
			}
		}
	case *ast.SeqExpr:
		for _, sub := range x.Exprs {
			if err := checkExpr(sub, line); err != nil {
				return err
			}
		}
	case *ast.LetExpr:
		for _, b := range x.Bindings {
			if err := checkExpr(b.Value, line); err != nil {
				return err
			}
		}
		return checkExpr(x.Body, line)
	case *ast.WhileExpr:
		if err := checkExpr(x.Cond, line); err != nil {
			return err
		}
		if ct := x.Cond.ExprType(); ct != nil && ct.Kind != ast.KindBool {
			return &Error{Code: CodeTypeMismatch, Message: "while condition must be bool", Line: line}
		}
		return checkExpr(x.Body, line)
	case *ast.ReturnExpr:
		return checkExpr(x.Value, line)
	case *ast.IOOpenExpr:
		if err := checkExpr(x.Path, line); err != nil {
			return err
		}
		return checkExpr(x.Mode, line)
	case *ast.IOReadExpr:
		return checkExpr(x.Handle, line)
	case *ast.IOWriteExpr:
		if err := checkExpr(x.Handle, line); err != nil {
			return err
		}
		return checkExpr(x.Data, line)
	case *ast.IOCloseExpr:
		return checkExpr(x.Handle, line)
	}
	return nil
}
