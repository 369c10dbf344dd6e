// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

// Definition is a top-level module definition: a function, a test spec,
// a property spec, or a meta note.
type Definition interface {
	// DefLine returns the 1-based source line of the definition,
	// or 0 when the exporter did not record one.
	DefLine() int
	defNode()
}

// Param is a named, typed function or forall parameter.
type Param struct {
	Name string
	Type *Type
}

// FuncDef is a module-level function definition.
type FuncDef struct {
	Name    string
	Params  []Param
	RetType *Type
	Body    Expr
	Line    int
}

// TestSpec attaches ordered concrete test cases to one target function.
type TestSpec struct {
	Target string
	Cases  []*TestCase
	Line   int
}

// TestCase is one concrete test case: evaluate Inputs, invoke the
// target, compare against Expected. Created by the parser collaborator
// and consumed read-only by the executor.
type TestCase struct {
	Desc     string
	Inputs   []Expr
	Expected Expr
	Mocks    []*MockSpec
	Line     int
}

// MockSpec declares one canned return value for an intercepted function.
// Args identify and describe the call site for reporting; they are not
// matched against actual call arguments. Call sequencing over multiple
// MockSpecs naming the same function is handled by the mock registry.
type MockSpec struct {
	FuncName string
	Args     []Expr
	Return   Expr
}

// PropertySpec attaches ordered property tests to one target function.
type PropertySpec struct {
	Target string
	Props  []*PropertyTest
	Line   int
}

// DefaultTrials is the number of accepted cases a property test runs
// when the spec does not override it.
const DefaultTrials = 100

// PropertyTest is one quantified, randomized test: for Trials accepted
// assignments of Params satisfying Constraint, Assertion must hold.
type PropertyTest struct {
	Desc       string
	Params     []Param
	Constraint Expr // may be nil
	Assertion  Expr
	Trials     int
	Line       int
}

// MetaNote is free-form commentary carried through to reports.
type MetaNote struct {
	Text string
	Line int
}

func (d *FuncDef) DefLine() int      { return d.Line }
func (d *TestSpec) DefLine() int     { return d.Line }
func (d *PropertySpec) DefLine() int { return d.Line }
func (d *MetaNote) DefLine() int     { return d.Line }

func (*FuncDef) defNode()      {}
func (*TestSpec) defNode()     {}
func (*PropertySpec) defNode() {}
func (*MetaNote) defNode()     {}

// Module is one compilation unit: a name plus its ordered definitions.
type Module struct {
	Name string
	Defs []Definition
}

// Functions returns the module's function definitions in source order.
func (m *Module) Functions() []*FuncDef {
	var fns []*FuncDef
	for _, d := range m.Defs {
		if fn, ok := d.(*FuncDef); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// TestSpecs returns the module's test specs in source order.
func (m *Module) TestSpecs() []*TestSpec {
	var specs []*TestSpec
	for _, d := range m.Defs {
		if s, ok := d.(*TestSpec); ok {
			specs = append(specs, s)
		}
	}
	return specs
}

// PropertySpecs returns the module's property specs in source order.
func (m *Module) PropertySpecs() []*PropertySpec {
	var specs []*PropertySpec
	for _, d := range m.Defs {
		if s, ok := d.(*PropertySpec); ok {
			specs = append(specs, s)
		}
	}
	return specs
}

// Notes returns the module's meta notes in source order.
func (m *Module) Notes() []*MetaNote {
	var notes []*MetaNote
	for _, d := range m.Defs {
		if n, ok := d.(*MetaNote); ok {
			notes = append(notes, n)
		}
	}
	return notes
}
