// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sexpr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/aisl/services/verifier/ast"
	"github.com/AleutianAI/aisl/services/verifier/typecheck"
)

const sampleModule = `
; exported by the compiler, annotations included
(mod calc
  (meta-note "arithmetic fixtures")
  (fn add ((a int) (b int)) -> int
    (bin + (var a) (var b)))
  (fn greet ((name string)) -> string
    (bin ++ (lit_string "hello ") (var name)))
  (test-spec add
    (case "adds small ints"
      (input (lit_int int 2) (lit_int int 3))
      (expect (lit_int int 5)))
    (case "mocked dependency"
      (mock (fetch (lit_int int 1)) (lit_int int 7))
      (input (lit_int int 0) (lit_int int 0))
      (expect (lit_int int 0))))
  (property-spec add
    (property "sum exceeds first positive addend"
      (forall ((x int) (y int)))
      (constraint (bin and (bin > (var x) (lit_int int 0))
                           (bin > (var y) (lit_int int 0))))
      (trials 50)
      (bin > (call (var add) (var x) (var y)) (var x)))))
`

func TestDecodeString_FullModule(t *testing.T) {
	mod, err := DecodeString(sampleModule)
	require.NoError(t, err)

	assert.Equal(t, "calc", mod.Name)
	require.Len(t, mod.Functions(), 2)
	require.Len(t, mod.TestSpecs(), 1)
	require.Len(t, mod.PropertySpecs(), 1)
	require.Len(t, mod.Notes(), 1)
	assert.Equal(t, "arithmetic fixtures", mod.Notes()[0].Text)

	add := mod.Functions()[0]
	assert.Equal(t, "add", add.Name)
	require.Len(t, add.Params, 2)
	assert.Equal(t, ast.KindInt, add.Params[0].Type.Kind)
	assert.Equal(t, ast.KindInt, add.RetType.Kind)

	spec := mod.TestSpecs()[0]
	assert.Equal(t, "add", spec.Target)
	require.Len(t, spec.Cases, 2)
	assert.Equal(t, "adds small ints", spec.Cases[0].Desc)
	assert.Len(t, spec.Cases[0].Inputs, 2)

	mocked := spec.Cases[1]
	require.Len(t, mocked.Mocks, 1)
	assert.Equal(t, "fetch", mocked.Mocks[0].FuncName)
	assert.Len(t, mocked.Mocks[0].Args, 1)

	prop := mod.PropertySpecs()[0].Props[0]
	assert.Equal(t, 50, prop.Trials)
	require.Len(t, prop.Params, 2)
	assert.NotNil(t, prop.Constraint)
	assert.NotNil(t, prop.Assertion)
}

func TestDecodeString_PassesTypeCheck(t *testing.T) {
	mod, err := DecodeString(sampleModule)
	require.NoError(t, err)
	require.Nil(t, typecheck.CheckModule(mod), "decoded module must be fully annotated")
}

func TestDecode_Reader(t *testing.T) {
	mod, err := Decode(strings.NewReader(sampleModule))
	require.NoError(t, err)
	assert.Equal(t, "calc", mod.Name)
}

func TestDecodeString_Expressions(t *testing.T) {
	decodeBody := func(t *testing.T, body string) ast.Expr {
		t.Helper()
		mod, err := DecodeString("(mod m (fn f ((n int)) -> int " + body + "))")
		require.NoError(t, err)
		return mod.Functions()[0].Body
	}

	t.Run("literals", func(t *testing.T) {
		mod, err := DecodeString(`(mod m
		  (fn a () -> int (lit_int int -42))
		  (fn b () -> float (lit_float float 2.5))
		  (fn c () -> string (lit_string "hi\nthere"))
		  (fn d () -> bool (lit_bool false))
		  (fn e () -> unit (unit)))`)
		require.NoError(t, err)
		fns := mod.Functions()

		assert.Equal(t, int64(-42), fns[0].Body.(*ast.IntLit).Val)
		assert.Equal(t, 2.5, fns[1].Body.(*ast.FloatLit).Val)
		assert.Equal(t, "hi\nthere", fns[2].Body.(*ast.StringLit).Val)
		assert.False(t, fns[3].Body.(*ast.BoolLit).Val)
		assert.IsType(t, &ast.UnitLit{}, fns[4].Body)
	})

	t.Run("if", func(t *testing.T) {
		e := decodeBody(t, `(if (bin > (var n) (lit_int int 0)) (var n) (lit_int int 0))`)
		ifx := e.(*ast.IfExpr)
		assert.IsType(t, &ast.BinaryExpr{}, ifx.Cond)
		assert.Equal(t, ast.KindInt, ifx.ExprType().Kind)
	})

	t.Run("seq", func(t *testing.T) {
		e := decodeBody(t, `(seq (lit_int int 1) (var n))`)
		seq := e.(*ast.SeqExpr)
		require.Len(t, seq.Exprs, 2)
		assert.Equal(t, ast.KindInt, seq.ExprType().Kind)
	})

	t.Run("let", func(t *testing.T) {
		e := decodeBody(t, `(let ((x (lit_int int 2)) (y (bin * (var x) (var n)))) (var y))`)
		let := e.(*ast.LetExpr)
		require.Len(t, let.Bindings, 2)
		assert.Equal(t, "x", let.Bindings[0].Name)
		assert.Equal(t, ast.KindInt, let.ExprType().Kind)
	})

	t.Run("while", func(t *testing.T) {
		e := decodeBody(t, `(seq (while (bin > (var n) (lit_int int 0)) (var n)) (var n))`)
		loop := e.(*ast.SeqExpr).Exprs[0].(*ast.WhileExpr)
		assert.Equal(t, ast.KindUnit, loop.ExprType().Kind)
	})

	t.Run("return", func(t *testing.T) {
		e := decodeBody(t, `(seq (return (lit_int int 9)) (var n))`)
		ret := e.(*ast.SeqExpr).Exprs[0].(*ast.ReturnExpr)
		assert.Equal(t, ast.KindInt, ret.ExprType().Kind)
	})

	t.Run("every binary operator", func(t *testing.T) {
		for _, op := range []string{"+", "-", "*", "/", "%", "==", "!=", "<", ">", "<=", ">=", "and", "or", "++"} {
			src := `(mod m (fn f () -> bool (bin ` + op + ` (lit_bool true) (lit_bool true))))`
			_, err := DecodeString(src)
			require.NoError(t, err, "operator %s", op)
		}
	})
}

func TestDecodeString_AnnotatesVarRefs(t *testing.T) {
	mod, err := DecodeString(sampleModule)
	require.NoError(t, err)

	body := mod.Functions()[0].Body.(*ast.BinaryExpr)
	left := body.Left.(*ast.VarRef)
	require.NotNil(t, left.T, "param reference must inherit the declared type")
	assert.Equal(t, ast.KindInt, left.T.Kind)

	// The call inside the property assertion resolves against the
	// function signature.
	assertion := mod.PropertySpecs()[0].Props[0].Assertion.(*ast.BinaryExpr)
	callExpr := assertion.Left.(*ast.ApplyExpr)
	require.NotNil(t, callExpr.ExprType())
	assert.Equal(t, ast.KindInt, callExpr.ExprType().Kind)
	fnRef := callExpr.Fn.(*ast.VarRef)
	require.NotNil(t, fnRef.T)
	assert.Equal(t, ast.KindFunction, fnRef.T.Kind)
}

func TestDecodeString_AnnotationClonesTypes(t *testing.T) {
	mod, err := DecodeString(`(mod m (fn f ((a int)) -> int (bin + (var a) (var a))))`)
	require.NoError(t, err)

	body := mod.Functions()[0].Body.(*ast.BinaryExpr)
	l := body.Left.(*ast.VarRef).T
	r := body.Right.(*ast.VarRef).T
	p := mod.Functions()[0].Params[0].Type
	assert.NotSame(t, l, r, "each reference owns its own type node")
	assert.NotSame(t, p, l, "references never alias the parameter declaration")
}

func TestDecodeString_CompositeTypes(t *testing.T) {
	mod, err := DecodeString(`(mod m
	  (fn f ((xs (array int))
	         (m (map string int))
	         (o (option float))
	         (r (result int string))
	         (ch (channel int))
	         (fu (future bool))) -> unit (unit)))`)
	require.NoError(t, err)

	params := mod.Functions()[0].Params
	assert.Equal(t, "array[int]", params[0].Type.String())
	assert.Equal(t, "map[string]int", params[1].Type.String())
	assert.Equal(t, "option[float]", params[2].Type.String())
	assert.Equal(t, "result[int, string]", params[3].Type.String())
	assert.Equal(t, "channel[int]", params[4].Type.String())
	assert.Equal(t, "future[bool]", params[5].Type.String())
}

func TestDecodeString_LegacyTypeAliases(t *testing.T) {
	mod, err := DecodeString(`(mod m (fn f ((a i64) (b f64)) -> i64 (var a)))`)
	require.NoError(t, err)

	params := mod.Functions()[0].Params
	assert.Equal(t, ast.KindI64, params[0].Type.Kind)
	assert.Equal(t, ast.KindF64, params[1].Type.Kind)
}

func TestDecodeString_DefaultTrials(t *testing.T) {
	mod, err := DecodeString(`(mod m
	  (fn f ((x int)) -> int (var x))
	  (property-spec f
	    (property "identity"
	      (forall ((x int)))
	      (bin == (call (var f) (var x)) (var x)))))`)
	require.NoError(t, err)

	prop := mod.PropertySpecs()[0].Props[0]
	assert.Equal(t, ast.DefaultTrials, prop.Trials)
	assert.Nil(t, prop.Constraint)
}

func TestDecodeString_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty input", ``},
		{"unbalanced open", `(mod m`},
		{"trailing input", `(mod m) (mod n)`},
		{"not a module", `(fn f () -> int (lit_int int 1))`},
		{"unknown definition", `(mod m (record r))`},
		{"fn missing arrow", `(mod m (fn f () int (lit_int int 1)))`},
		{"unknown type", `(mod m (fn f ((a complex))  -> int (var a)))`},
		{"unknown expr form", `(mod m (fn f () -> int (frob 1)))`},
		{"unknown operator", `(mod m (fn f () -> int (bin ** (lit_int int 1) (lit_int int 2))))`},
		{"bad int literal", `(mod m (fn f () -> int (lit_int int twelve)))`},
		{"case without expect", `(mod m (test-spec f (case "x" (input (lit_int int 1)))))`},
		{"case without input", `(mod m (test-spec f (case "x" (expect (lit_int int 1)))))`},
		{"property without forall", `(mod m (property-spec f (property "p" (lit_bool true) (lit_bool true))))`},
		{"zero trials", `(mod m (property-spec f (property "p" (forall ((x int))) (trials 0) (lit_bool true))))`},
		{"unterminated string", `(mod m (meta-note "oops))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeString(tt.src)
			require.ErrorIs(t, err, ErrSyntax, "src: %s", tt.src)
		})
	}
}

func TestDecodeString_ErrorsCarryLine(t *testing.T) {
	src := "(mod m\n  (fn f () -> int\n    (frob 1)))"
	_, err := DecodeString(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestDecodeString_CommentsAndWhitespace(t *testing.T) {
	src := `
; leading comment
(mod m ; inline comment
  ; a whole line of commentary
  (fn f () -> int (lit_int int 1)))
`
	mod, err := DecodeString(src)
	require.NoError(t, err)
	assert.Equal(t, "m", mod.Name)
}

func TestDecodeString_StringEscapes(t *testing.T) {
	mod, err := DecodeString(`(mod m (meta-note "tab\there \"quoted\" and \\ back"))`)
	require.NoError(t, err)
	assert.Equal(t, "tab\there \"quoted\" and \\ back", mod.Notes()[0].Text)
}
