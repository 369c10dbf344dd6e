// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package sexpr decodes the exported, type-annotated module format
// produced by the parser collaborator:
//
//	(mod calc
//	  (fn add ((a int) (b int)) -> int
//	    (bin + (var a) (var b)))
//	  (test-spec add
//	    (case "adds small ints"
//	      (input (lit_int int 2) (lit_int int 3))
//	      (expect (lit_int int 5))))
//	  (property-spec add
//	    (property "sum exceeds first addend"
//	      (forall ((x int) (y int)))
//	      (constraint (bin and (bin > (var x) (lit_int int 0)) (bin > (var y) (lit_int int 0))))
//	      (bin > (call (var add) (var x) (var y)) (var x)))))
//
// This is the exporter's wire format read back, not the language's
// surface syntax; lexing AISL source stays with the parser
// collaborator. Variable references arrive without annotations, so
// decoding finishes with a resolution pass that propagates types from
// parameter lists, let bindings, and function signatures.
package sexpr

import (
	"fmt"
	"io"
	"strconv"

	"github.com/AleutianAI/aisl/services/verifier/ast"
)

// Decode reads one exported module document from r.
func Decode(r io.Reader) (*ast.Module, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading module: %w", err)
	}
	return DecodeString(string(src))
}

// DecodeString decodes one exported module document.
func DecodeString(src string) (*ast.Module, error) {
	p := &parser{lex: newLexer(src)}
	root, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if t, err := p.peek(); err != nil {
		return nil, err
	} else if t.kind != tokEOF {
		return nil, fmt.Errorf("%w: trailing input at line %d", ErrSyntax, t.line)
	}

	mod, err := decodeModule(root)
	if err != nil {
		return nil, err
	}
	annotateModule(mod)
	return mod, nil
}

func decodeModule(n *node) (*ast.Module, error) {
	if n.head() != "mod" || len(n.kids) < 2 || n.kids[1].list {
		return nil, fmt.Errorf("%w: expected (mod <name> ...) at line %d", ErrSyntax, n.line)
	}
	mod := &ast.Module{Name: n.kids[1].atom}
	for _, kid := range n.kids[2:] {
		def, err := decodeDefinition(kid)
		if err != nil {
			return nil, err
		}
		mod.Defs = append(mod.Defs, def)
	}
	return mod, nil
}

func decodeDefinition(n *node) (ast.Definition, error) {
	switch n.head() {
	case "fn":
		return decodeFn(n)
	case "test-spec":
		return decodeTestSpec(n)
	case "property-spec":
		return decodePropertySpec(n)
	case "meta-note":
		if len(n.kids) != 2 || !n.kids[1].isStr {
			return nil, fmt.Errorf("%w: expected (meta-note \"...\") at line %d", ErrSyntax, n.line)
		}
		return &ast.MetaNote{Text: n.kids[1].atom, Line: n.line}, nil
	default:
		return nil, fmt.Errorf("%w: unknown definition %q at line %d", ErrSyntax, n.head(), n.line)
	}
}

// decodeFn parses (fn name ((p type)...) -> rettype body).
func decodeFn(n *node) (*ast.FuncDef, error) {
	if len(n.kids) != 6 || n.kids[1].list || !n.kids[2].list ||
		n.kids[3].atom != "->" {
		return nil, fmt.Errorf("%w: expected (fn <name> (<params>) -> <type> <body>) at line %d",
			ErrSyntax, n.line)
	}
	fn := &ast.FuncDef{Name: n.kids[1].atom, Line: n.line}

	for _, pn := range n.kids[2].kids {
		p, err := decodeParam(pn)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, p)
	}

	ret, err := decodeType(n.kids[4])
	if err != nil {
		return nil, err
	}
	fn.RetType = ret

	body, err := decodeExpr(n.kids[5])
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func decodeParam(n *node) (ast.Param, error) {
	if !n.list || len(n.kids) != 2 || n.kids[0].list {
		return ast.Param{}, fmt.Errorf("%w: expected (<name> <type>) at line %d", ErrSyntax, n.line)
	}
	t, err := decodeType(n.kids[1])
	if err != nil {
		return ast.Param{}, err
	}
	return ast.Param{Name: n.kids[0].atom, Type: t}, nil
}

var scalarTypes = map[string]func() *ast.Type{
	"int":    ast.Int,
	"float":  ast.Float,
	"string": ast.String,
	"bool":   ast.Bool,
	"unit":   ast.Unit,
	"bytes":  ast.Bytes,
	"json":   ast.Json,
	"i64":    ast.I64,
	"f64":    ast.F64,
}

func decodeType(n *node) (*ast.Type, error) {
	if !n.list {
		if mk, ok := scalarTypes[n.atom]; ok {
			return mk(), nil
		}
		return nil, fmt.Errorf("%w: unknown type %q at line %d", ErrSyntax, n.atom, n.line)
	}

	head := n.head()
	sub := func(i int) (*ast.Type, error) { return decodeType(n.kids[i]) }
	switch {
	case head == "array" && len(n.kids) == 2:
		elem, err := sub(1)
		if err != nil {
			return nil, err
		}
		return ast.Array(elem), nil
	case head == "map" && len(n.kids) == 3:
		key, err := sub(1)
		if err != nil {
			return nil, err
		}
		val, err := sub(2)
		if err != nil {
			return nil, err
		}
		return ast.Map(key, val), nil
	case head == "option" && len(n.kids) == 2:
		elem, err := sub(1)
		if err != nil {
			return nil, err
		}
		return ast.Option(elem), nil
	case head == "result" && len(n.kids) == 3:
		ok, err := sub(1)
		if err != nil {
			return nil, err
		}
		errT, err := sub(2)
		if err != nil {
			return nil, err
		}
		return ast.Result(ok, errT), nil
	case head == "channel" && len(n.kids) == 2:
		elem, err := sub(1)
		if err != nil {
			return nil, err
		}
		return ast.Channel(elem), nil
	case head == "future" && len(n.kids) == 2:
		elem, err := sub(1)
		if err != nil {
			return nil, err
		}
		return ast.Future(elem), nil
	default:
		return nil, fmt.Errorf("%w: unknown type form %q at line %d", ErrSyntax, head, n.line)
	}
}

var binOps = map[string]ast.BinaryOp{
	"+": ast.OpAdd, "-": ast.OpSub, "*": ast.OpMul, "/": ast.OpDiv, "%": ast.OpMod,
	"==": ast.OpEq, "!=": ast.OpNeq, "<": ast.OpLt, ">": ast.OpGt,
	"<=": ast.OpLte, ">=": ast.OpGte,
	"and": ast.OpAnd, "or": ast.OpOr, "++": ast.OpConcat,
}

func decodeExpr(n *node) (ast.Expr, error) {
	if !n.list {
		return nil, fmt.Errorf("%w: expected expression, got %q at line %d", ErrSyntax, n.atom, n.line)
	}
	switch head := n.head(); head {
	case "lit_int":
		if len(n.kids) != 3 {
			return nil, fmt.Errorf("%w: expected (lit_int <type> <value>) at line %d", ErrSyntax, n.line)
		}
		t, err := decodeType(n.kids[1])
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseInt(n.kids[2].atom, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad integer %q at line %d", ErrSyntax, n.kids[2].atom, n.line)
		}
		return &ast.IntLit{Val: v, T: t}, nil

	case "lit_float":
		if len(n.kids) != 3 {
			return nil, fmt.Errorf("%w: expected (lit_float <type> <value>) at line %d", ErrSyntax, n.line)
		}
		t, err := decodeType(n.kids[1])
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(n.kids[2].atom, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad float %q at line %d", ErrSyntax, n.kids[2].atom, n.line)
		}
		return &ast.FloatLit{Val: v, T: t}, nil

	case "lit_string":
		if len(n.kids) != 2 || !n.kids[1].isStr {
			return nil, fmt.Errorf("%w: expected (lit_string \"...\") at line %d", ErrSyntax, n.line)
		}
		return &ast.StringLit{Val: n.kids[1].atom, T: ast.String()}, nil

	case "lit_bool":
		if len(n.kids) != 2 || (n.kids[1].atom != "true" && n.kids[1].atom != "false") {
			return nil, fmt.Errorf("%w: expected (lit_bool true|false) at line %d", ErrSyntax, n.line)
		}
		return &ast.BoolLit{Val: n.kids[1].atom == "true", T: ast.Bool()}, nil

	case "unit":
		if len(n.kids) != 1 {
			return nil, fmt.Errorf("%w: expected (unit) at line %d", ErrSyntax, n.line)
		}
		return &ast.UnitLit{T: ast.Unit()}, nil

	case "var":
		if len(n.kids) != 2 || n.kids[1].list {
			return nil, fmt.Errorf("%w: expected (var <name>) at line %d", ErrSyntax, n.line)
		}
		return &ast.VarRef{Name: n.kids[1].atom}, nil

	case "call":
		if len(n.kids) < 2 {
			return nil, fmt.Errorf("%w: expected (call <fn> <args>...) at line %d", ErrSyntax, n.line)
		}
		fn, err := decodeExpr(n.kids[1])
		if err != nil {
			return nil, err
		}
		apply := &ast.ApplyExpr{Fn: fn}
		for _, an := range n.kids[2:] {
			arg, err := decodeExpr(an)
			if err != nil {
				return nil, err
			}
			apply.Args = append(apply.Args, arg)
		}
		return apply, nil

	case "if":
		if len(n.kids) != 4 {
			return nil, fmt.Errorf("%w: expected (if <cond> <then> <else>) at line %d", ErrSyntax, n.line)
		}
		cond, err := decodeExpr(n.kids[1])
		if err != nil {
			return nil, err
		}
		then, err := decodeExpr(n.kids[2])
		if err != nil {
			return nil, err
		}
		els, err := decodeExpr(n.kids[3])
		if err != nil {
			return nil, err
		}
		return &ast.IfExpr{Cond: cond, Then: then, Else: els}, nil

	case "seq":
		seq := &ast.SeqExpr{}
		for _, kn := range n.kids[1:] {
			sub, err := decodeExpr(kn)
			if err != nil {
				return nil, err
			}
			seq.Exprs = append(seq.Exprs, sub)
		}
		return seq, nil

	case "bin":
		if len(n.kids) != 4 || n.kids[1].list {
			return nil, fmt.Errorf("%w: expected (bin <op> <left> <right>) at line %d", ErrSyntax, n.line)
		}
		op, ok := binOps[n.kids[1].atom]
		if !ok {
			return nil, fmt.Errorf("%w: unknown operator %q at line %d", ErrSyntax, n.kids[1].atom, n.line)
		}
		left, err := decodeExpr(n.kids[2])
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(n.kids[3])
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Op: op, Left: left, Right: right}, nil

	case "let":
		if len(n.kids) != 3 || !n.kids[1].list {
			return nil, fmt.Errorf("%w: expected (let (<bindings>) <body>) at line %d", ErrSyntax, n.line)
		}
		let := &ast.LetExpr{}
		for _, bn := range n.kids[1].kids {
			if !bn.list || len(bn.kids) != 2 || bn.kids[0].list {
				return nil, fmt.Errorf("%w: expected (<name> <value>) binding at line %d", ErrSyntax, bn.line)
			}
			val, err := decodeExpr(bn.kids[1])
			if err != nil {
				return nil, err
			}
			let.Bindings = append(let.Bindings, ast.Binding{Name: bn.kids[0].atom, Value: val})
		}
		body, err := decodeExpr(n.kids[2])
		if err != nil {
			return nil, err
		}
		let.Body = body
		return let, nil

	case "while":
		if len(n.kids) != 3 {
			return nil, fmt.Errorf("%w: expected (while <cond> <body>) at line %d", ErrSyntax, n.line)
		}
		cond, err := decodeExpr(n.kids[1])
		if err != nil {
			return nil, err
		}
		body, err := decodeExpr(n.kids[2])
		if err != nil {
			return nil, err
		}
		return &ast.WhileExpr{Cond: cond, Body: body, T: ast.Unit()}, nil

	case "return":
		if len(n.kids) != 2 {
			return nil, fmt.Errorf("%w: expected (return <value>) at line %d", ErrSyntax, n.line)
		}
		val, err := decodeExpr(n.kids[1])
		if err != nil {
			return nil, err
		}
		return &ast.ReturnExpr{Value: val}, nil

	default:
		return nil, fmt.Errorf("%w: unknown expression form %q at line %d", ErrSyntax, head, n.line)
	}
}

func decodeTestSpec(n *node) (*ast.TestSpec, error) {
	if len(n.kids) < 2 || n.kids[1].list {
		return nil, fmt.Errorf("%w: expected (test-spec <target> ...) at line %d", ErrSyntax, n.line)
	}
	spec := &ast.TestSpec{Target: n.kids[1].atom, Line: n.line}
	for _, cn := range n.kids[2:] {
		tc, err := decodeCase(cn)
		if err != nil {
			return nil, err
		}
		spec.Cases = append(spec.Cases, tc)
	}
	return spec, nil
}

// decodeCase parses (case "desc" <mock>* (input ...) (expect e)).
func decodeCase(n *node) (*ast.TestCase, error) {
	if n.head() != "case" || len(n.kids) < 2 || !n.kids[1].isStr {
		return nil, fmt.Errorf("%w: expected (case \"<desc>\" ...) at line %d", ErrSyntax, n.line)
	}
	tc := &ast.TestCase{Desc: n.kids[1].atom, Line: n.line}

	sawInput, sawExpect := false, false
	for _, kn := range n.kids[2:] {
		switch kn.head() {
		case "mock":
			m, err := decodeMock(kn)
			if err != nil {
				return nil, err
			}
			tc.Mocks = append(tc.Mocks, m)
		case "input":
			for _, in := range kn.kids[1:] {
				e, err := decodeExpr(in)
				if err != nil {
					return nil, err
				}
				tc.Inputs = append(tc.Inputs, e)
			}
			sawInput = true
		case "expect":
			if len(kn.kids) != 2 {
				return nil, fmt.Errorf("%w: expected (expect <value>) at line %d", ErrSyntax, kn.line)
			}
			e, err := decodeExpr(kn.kids[1])
			if err != nil {
				return nil, err
			}
			tc.Expected = e
			sawExpect = true
		default:
			return nil, fmt.Errorf("%w: unknown case entry %q at line %d", ErrSyntax, kn.head(), kn.line)
		}
	}
	if !sawInput || !sawExpect {
		return nil, fmt.Errorf("%w: case %q missing input or expect at line %d",
			ErrSyntax, tc.Desc, n.line)
	}
	return tc, nil
}

// decodeMock parses (mock (<fname> <args>...) <return>).
func decodeMock(n *node) (*ast.MockSpec, error) {
	if len(n.kids) != 3 || !n.kids[1].list || len(n.kids[1].kids) < 1 || n.kids[1].kids[0].list {
		return nil, fmt.Errorf("%w: expected (mock (<fn> <args>...) <return>) at line %d",
			ErrSyntax, n.line)
	}
	m := &ast.MockSpec{FuncName: n.kids[1].kids[0].atom}
	for _, an := range n.kids[1].kids[1:] {
		arg, err := decodeExpr(an)
		if err != nil {
			return nil, err
		}
		m.Args = append(m.Args, arg)
	}
	ret, err := decodeExpr(n.kids[2])
	if err != nil {
		return nil, err
	}
	m.Return = ret
	return m, nil
}

func decodePropertySpec(n *node) (*ast.PropertySpec, error) {
	if len(n.kids) < 2 || n.kids[1].list {
		return nil, fmt.Errorf("%w: expected (property-spec <target> ...) at line %d", ErrSyntax, n.line)
	}
	spec := &ast.PropertySpec{Target: n.kids[1].atom, Line: n.line}
	for _, pn := range n.kids[2:] {
		p, err := decodeProperty(pn)
		if err != nil {
			return nil, err
		}
		spec.Props = append(spec.Props, p)
	}
	return spec, nil
}

// decodeProperty parses
// (property "desc" (forall ((x t)...)) (constraint e)? (trials N)? <assertion>).
func decodeProperty(n *node) (*ast.PropertyTest, error) {
	if n.head() != "property" || len(n.kids) < 4 || !n.kids[1].isStr {
		return nil, fmt.Errorf("%w: expected (property \"<desc>\" (forall ...) <assertion>) at line %d",
			ErrSyntax, n.line)
	}
	prop := &ast.PropertyTest{Desc: n.kids[1].atom, Trials: ast.DefaultTrials, Line: n.line}

	fa := n.kids[2]
	if fa.head() != "forall" || len(fa.kids) != 2 || !fa.kids[1].list {
		return nil, fmt.Errorf("%w: expected (forall ((<name> <type>)...)) at line %d", ErrSyntax, fa.line)
	}
	for _, vn := range fa.kids[1].kids {
		p, err := decodeParam(vn)
		if err != nil {
			return nil, err
		}
		prop.Params = append(prop.Params, p)
	}

	rest := n.kids[3:]
	for len(rest) > 1 {
		switch rest[0].head() {
		case "constraint":
			if len(rest[0].kids) != 2 {
				return nil, fmt.Errorf("%w: expected (constraint <expr>) at line %d", ErrSyntax, rest[0].line)
			}
			c, err := decodeExpr(rest[0].kids[1])
			if err != nil {
				return nil, err
			}
			prop.Constraint = c
		case "trials":
			if len(rest[0].kids) != 2 || rest[0].kids[1].list {
				return nil, fmt.Errorf("%w: expected (trials <count>) at line %d", ErrSyntax, rest[0].line)
			}
			t, err := strconv.Atoi(rest[0].kids[1].atom)
			if err != nil || t <= 0 {
				return nil, fmt.Errorf("%w: bad trial count %q at line %d",
					ErrSyntax, rest[0].kids[1].atom, rest[0].line)
			}
			prop.Trials = t
		default:
			return nil, fmt.Errorf("%w: unknown property entry %q at line %d",
				ErrSyntax, rest[0].head(), rest[0].line)
		}
		rest = rest[1:]
	}

	assertion, err := decodeExpr(rest[0])
	if err != nil {
		return nil, err
	}
	prop.Assertion = assertion
	return prop, nil
}
