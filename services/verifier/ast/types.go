// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ast defines the type-annotated abstract syntax tree for AISL
// modules as handed over by the parser collaborator: types, expressions,
// definitions, and the embedded test/property specification nodes.
//
// Every composite node exclusively owns its children. The tree is never
// mutated after construction, so no synchronization is needed to read it
// from multiple goroutines.
package ast

import (
	"fmt"
	"strings"
)

// =============================================================================
// Types
// =============================================================================

// Kind identifies a type variant.
type Kind int

const (
	// KindInt is the canonical integer type (64-bit).
	KindInt Kind = iota
	// KindFloat is the canonical float type (64-bit).
	KindFloat
	KindString
	KindBool
	KindUnit
	KindBytes
	KindArray
	KindMap
	KindJson
	KindOption
	KindResult
	KindChannel
	KindFuture
	KindFunction

	// Legacy fixed-width aliases. The surface language no longer produces
	// them, but older exported ASTs still carry them; the type checker
	// folds them into the Int/Float families.
	KindI8
	KindI16
	KindI32
	KindI64
	KindU8
	KindU16
	KindU32
	KindU64
	KindF32
	KindF64
)

// kindNames maps kinds to their canonical lowercase names.
var kindNames = map[Kind]string{
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindBool:     "bool",
	KindUnit:     "unit",
	KindBytes:    "bytes",
	KindArray:    "array",
	KindMap:      "map",
	KindJson:     "json",
	KindOption:   "option",
	KindResult:   "result",
	KindChannel:  "channel",
	KindFuture:   "future",
	KindFunction: "function",
	KindI8:       "i8",
	KindI16:      "i16",
	KindI32:      "i32",
	KindI64:      "i64",
	KindU8:       "u8",
	KindU16:      "u16",
	KindU32:      "u32",
	KindU64:      "u64",
	KindF32:      "f32",
	KindF64:      "f64",
}

// String returns the canonical lowercase name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Type is a tagged type node. Which pointer fields are populated depends
// on Kind:
//
//   - Array, Option, Channel, Future: Elem
//   - Map: Key (key type) and Elem (value type)
//   - Result: Elem (ok type) and Err (error type)
//   - Function: Params and Ret
//
// A Type exclusively owns its nested nodes; builders must not share
// subtrees between types.
type Type struct {
	Kind   Kind
	Elem   *Type
	Key    *Type
	Err    *Type
	Params []*Type
	Ret    *Type
}

// Scalar constructors.

func Int() *Type    { return &Type{Kind: KindInt} }
func Float() *Type  { return &Type{Kind: KindFloat} }
func String() *Type { return &Type{Kind: KindString} }
func Bool() *Type   { return &Type{Kind: KindBool} }
func Unit() *Type   { return &Type{Kind: KindUnit} }
func Bytes() *Type  { return &Type{Kind: KindBytes} }
func Json() *Type   { return &Type{Kind: KindJson} }

// Legacy alias constructors, kept for decoding older exported ASTs.

func I64() *Type { return &Type{Kind: KindI64} }
func F64() *Type { return &Type{Kind: KindF64} }

// Composite constructors.

// Array returns an array type with the given element type.
func Array(elem *Type) *Type { return &Type{Kind: KindArray, Elem: elem} }

// Map returns a map type with the given key and value types.
func Map(key, value *Type) *Type { return &Type{Kind: KindMap, Key: key, Elem: value} }

// Option returns an option type wrapping elem.
func Option(elem *Type) *Type { return &Type{Kind: KindOption, Elem: elem} }

// Result returns a result type with ok and err payload types.
func Result(ok, err *Type) *Type { return &Type{Kind: KindResult, Elem: ok, Err: err} }

// Channel returns a channel type carrying elem values.
func Channel(elem *Type) *Type { return &Type{Kind: KindChannel, Elem: elem} }

// Future returns a future type resolving to elem.
func Future(elem *Type) *Type { return &Type{Kind: KindFuture, Elem: elem} }

// Function returns a function type with the given parameter and return types.
func Function(params []*Type, ret *Type) *Type {
	return &Type{Kind: KindFunction, Params: params, Ret: ret}
}

// String renders the type for diagnostics, including element types of
// composites: "array[int]", "map[string]int", "result[int, string]".
func (t *Type) String() string {
	if t == nil {
		return "unknown"
	}
	switch t.Kind {
	case KindArray:
		return "array[" + t.Elem.String() + "]"
	case KindMap:
		return "map[" + t.Key.String() + "]" + t.Elem.String()
	case KindOption:
		return "option[" + t.Elem.String() + "]"
	case KindResult:
		return "result[" + t.Elem.String() + ", " + t.Err.String() + "]"
	case KindChannel:
		return "channel[" + t.Elem.String() + "]"
	case KindFuture:
		return "future[" + t.Elem.String() + "]"
	case KindFunction:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return "fn(" + strings.Join(parts, ", ") + ") -> " + t.Ret.String()
	default:
		return t.Kind.String()
	}
}

// Clone returns a deep copy of the type tree. Decoders use it when the
// same written form appears in several positions, preserving exclusive
// ownership of nested nodes.
func (t *Type) Clone() *Type {
	if t == nil {
		return nil
	}
	cp := &Type{Kind: t.Kind, Elem: t.Elem.Clone(), Key: t.Key.Clone(), Err: t.Err.Clone(), Ret: t.Ret.Clone()}
	if t.Params != nil {
		cp.Params = make([]*Type, len(t.Params))
		for i, p := range t.Params {
			cp.Params[i] = p.Clone()
		}
	}
	return cp
}
