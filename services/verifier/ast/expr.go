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

// Expr is an expression node. Every node carries the type the checker
// collaborator annotated it with; ExprType returns nil only for nodes a
// broken exporter left unannotated, which the module type-check pass
// rejects before any verification runs.
type Expr interface {
	// ExprType returns the annotated type of the expression.
	ExprType() *Type
	exprNode()
}

// BinaryOp identifies a binary operator.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpGt
	OpLte
	OpGte
	OpAnd
	OpOr
	OpConcat
)

var opNames = map[BinaryOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpEq: "==", OpNeq: "!=", OpLt: "<", OpGt: ">", OpLte: "<=", OpGte: ">=",
	OpAnd: "and", OpOr: "or", OpConcat: "++",
}

// String returns the surface-syntax spelling of the operator.
func (op BinaryOp) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return "?"
}

// IntLit is an integer literal.
type IntLit struct {
	Val int64
	T   *Type
}

// FloatLit is a float literal.
type FloatLit struct {
	Val float64
	T   *Type
}

// StringLit is a string literal.
type StringLit struct {
	Val string
	T   *Type
}

// BoolLit is a boolean literal.
type BoolLit struct {
	Val bool
	T   *Type
}

// UnitLit is the unit literal ().
type UnitLit struct {
	T *Type
}

// VarRef references a bound variable or a module-level function by name.
type VarRef struct {
	Name string
	T    *Type
}

// BinaryExpr applies a binary operator to two operands.
type BinaryExpr struct {
	Op          BinaryOp
	Left, Right Expr
	T           *Type
}

// ApplyExpr applies a function to arguments. Fn is typically a VarRef
// naming a module-level function.
type ApplyExpr struct {
	Fn   Expr
	Args []Expr
	T    *Type
}

// IfExpr is a conditional expression; both branches are required.
type IfExpr struct {
	Cond, Then, Else Expr
	T                *Type
}

// SeqExpr evaluates expressions in order; its value is the last one.
type SeqExpr struct {
	Exprs []Expr
	T     *Type
}

// Binding is one name = value pair in a let expression.
type Binding struct {
	Name  string
	TAnn  *Type
	Value Expr
}

// LetExpr binds names in order, then evaluates Body under the bindings.
type LetExpr struct {
	Bindings []Binding
	Body     Expr
	T        *Type
}

// WhileExpr evaluates Body while Cond is true; its value is unit.
type WhileExpr struct {
	Cond, Body Expr
	T          *Type
}

// ReturnExpr returns early from the enclosing function.
type ReturnExpr struct {
	Value Expr
	T     *Type
}

// IOOpenExpr opens the resource at Path with the given Mode.
type IOOpenExpr struct {
	Path, Mode Expr
	T          *Type
}

// IOReadExpr reads from an open handle.
type IOReadExpr struct {
	Handle Expr
	T      *Type
}

// IOWriteExpr writes Data to an open handle.
type IOWriteExpr struct {
	Handle, Data Expr
	T            *Type
}

// IOCloseExpr closes an open handle.
type IOCloseExpr struct {
	Handle Expr
	T      *Type
}

func (e *IntLit) ExprType() *Type      { return e.T }
func (e *FloatLit) ExprType() *Type    { return e.T }
func (e *StringLit) ExprType() *Type   { return e.T }
func (e *BoolLit) ExprType() *Type     { return e.T }
func (e *UnitLit) ExprType() *Type     { return e.T }
func (e *VarRef) ExprType() *Type      { return e.T }
func (e *BinaryExpr) ExprType() *Type  { return e.T }
func (e *ApplyExpr) ExprType() *Type   { return e.T }
func (e *IfExpr) ExprType() *Type      { return e.T }
func (e *SeqExpr) ExprType() *Type     { return e.T }
func (e *LetExpr) ExprType() *Type     { return e.T }
func (e *WhileExpr) ExprType() *Type   { return e.T }
func (e *ReturnExpr) ExprType() *Type  { return e.T }
func (e *IOOpenExpr) ExprType() *Type  { return e.T }
func (e *IOReadExpr) ExprType() *Type  { return e.T }
func (e *IOWriteExpr) ExprType() *Type { return e.T }
func (e *IOCloseExpr) ExprType() *Type { return e.T }

func (*IntLit) exprNode()      {}
func (*FloatLit) exprNode()    {}
func (*StringLit) exprNode()   {}
func (*BoolLit) exprNode()     {}
func (*UnitLit) exprNode()     {}
func (*VarRef) exprNode()      {}
func (*BinaryExpr) exprNode()  {}
func (*ApplyExpr) exprNode()   {}
func (*IfExpr) exprNode()      {}
func (*SeqExpr) exprNode()     {}
func (*LetExpr) exprNode()     {}
func (*WhileExpr) exprNode()   {}
func (*ReturnExpr) exprNode()  {}
func (*IOOpenExpr) exprNode()  {}
func (*IOReadExpr) exprNode()  {}
func (*IOWriteExpr) exprNode() {}
func (*IOCloseExpr) exprNode() {}
