// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package runtime implements the AISL runtime value domain and the
// concurrency primitives (bounded channel, single-assignment future,
// task spawn) that values under verification may depend on.
//
// Values are tagged: Kind selects the variant and Data holds the typed
// payload. The equality and rendering relations defined here are the
// ones the verification engine uses to compare and report values, so
// they are total over every kind.
package runtime

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/AleutianAI/aisl/services/verifier/ast"
)

// Value is one runtime value. Only canonical kinds appear at runtime:
// the legacy fixed-width type aliases normalize to KindInt/KindFloat
// before a value is ever constructed.
//
// Data holds, per kind: int64, float64, string, bool, nil (unit),
// []byte, []Value (array), *MapValue, any (decoded JSON), *Value
// (option; nil means none), *ResultValue, *Channel, *Future, or
// string (function name).
type Value struct {
	Kind ast.Kind
	Data any
}

// MapValue is an ordered map from values to values. Insertion order is
// preserved for rendering; equality is key-set based.
type MapValue struct {
	Entries []MapEntry
}

// MapEntry is one key/value pair.
type MapEntry struct {
	Key, Val Value
}

// Get returns the value stored under key, if any.
func (m *MapValue) Get(key Value) (Value, bool) {
	for _, e := range m.Entries {
		if Equal(e.Key, key) {
			return e.Val, true
		}
	}
	return Value{}, false
}

// Set stores val under key, replacing an existing entry.
func (m *MapValue) Set(key, val Value) {
	for i, e := range m.Entries {
		if Equal(e.Key, key) {
			m.Entries[i].Val = val
			return
		}
	}
	m.Entries = append(m.Entries, MapEntry{Key: key, Val: val})
}

// ResultValue is the payload of a result value: the ok/err branch tag
// plus the wrapped value.
type ResultValue struct {
	OK  bool
	Val Value
}

// Constructors.

func Int(v int64) Value        { return Value{Kind: ast.KindInt, Data: v} }
func Float(v float64) Value    { return Value{Kind: ast.KindFloat, Data: v} }
func Str(v string) Value       { return Value{Kind: ast.KindString, Data: v} }
func Bool(v bool) Value        { return Value{Kind: ast.KindBool, Data: v} }
func Unit() Value              { return Value{Kind: ast.KindUnit} }
func BytesVal(v []byte) Value  { return Value{Kind: ast.KindBytes, Data: v} }
func Array(vs []Value) Value   { return Value{Kind: ast.KindArray, Data: vs} }
func MapVal(m *MapValue) Value { return Value{Kind: ast.KindMap, Data: m} }
func JsonVal(v any) Value      { return Value{Kind: ast.KindJson, Data: v} }
func None() Value              { return Value{Kind: ast.KindOption, Data: (*Value)(nil)} }
func FuncVal(name string) Value {
	return Value{Kind: ast.KindFunction, Data: name}
}

// Some wraps v in an option.
func Some(v Value) Value { return Value{Kind: ast.KindOption, Data: &v} }

// Ok wraps v in the ok branch of a result.
func Ok(v Value) Value { return Value{Kind: ast.KindResult, Data: &ResultValue{OK: true, Val: v}} }

// Err wraps v in the err branch of a result.
func Err(v Value) Value { return Value{Kind: ast.KindResult, Data: &ResultValue{Val: v}} }

// ChanVal wraps a live channel.
func ChanVal(ch *Channel) Value { return Value{Kind: ast.KindChannel, Data: ch} }

// FutVal wraps a live future.
func FutVal(f *Future) Value { return Value{Kind: ast.KindFuture, Data: f} }

// Accessors used pervasively by the evaluator. They panic on kind
// confusion, which only a bug in the caller can cause.

func (v Value) AsInt() int64     { return v.Data.(int64) }
func (v Value) AsFloat() float64 { return v.Data.(float64) }
func (v Value) AsStr() string    { return v.Data.(string) }
func (v Value) AsBool() bool     { return v.Data.(bool) }

// IsUnit reports whether v is the unit value.
func (v Value) IsUnit() bool { return v.Kind == ast.KindUnit }

// =============================================================================
// Equality
// =============================================================================

// Equal is the value-equality relation: kinds must match exactly;
// scalars compare by value; strings and bytes compare bytewise;
// composites compare element-wise/key-wise recursively; unit always
// equals unit. Live channels and futures compare by identity, since
// two distinct primitives are never interchangeable even when their
// element types agree.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ast.KindInt:
		return a.AsInt() == b.AsInt()
	case ast.KindFloat:
		return a.AsFloat() == b.AsFloat()
	case ast.KindString:
		return a.AsStr() == b.AsStr()
	case ast.KindBool:
		return a.AsBool() == b.AsBool()
	case ast.KindUnit:
		return true
	case ast.KindBytes:
		return bytes.Equal(a.Data.([]byte), b.Data.([]byte))
	case ast.KindArray:
		as, bs := a.Data.([]Value), b.Data.([]Value)
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !Equal(as[i], bs[i]) {
				return false
			}
		}
		return true
	case ast.KindMap:
		am, bm := a.Data.(*MapValue), b.Data.(*MapValue)
		if len(am.Entries) != len(bm.Entries) {
			return false
		}
		for _, e := range am.Entries {
			bv, ok := bm.Get(e.Key)
			if !ok || !Equal(e.Val, bv) {
				return false
			}
		}
		return true
	case ast.KindJson:
		return jsonEqual(a.Data, b.Data)
	case ast.KindOption:
		ap, bp := a.Data.(*Value), b.Data.(*Value)
		if ap == nil || bp == nil {
			return ap == bp
		}
		return Equal(*ap, *bp)
	case ast.KindResult:
		ar, br := a.Data.(*ResultValue), b.Data.(*ResultValue)
		return ar.OK == br.OK && Equal(ar.Val, br.Val)
	case ast.KindChannel:
		return a.Data.(*Channel) == b.Data.(*Channel)
	case ast.KindFuture:
		return a.Data.(*Future) == b.Data.(*Future)
	case ast.KindFunction:
		return a.Data.(string) == b.Data.(string)
	}
	return false
}

// jsonEqual compares decoded JSON trees (nil, bool, float64, string,
// []any, map[string]any).
func jsonEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !jsonEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, present := bv[k]
			if !present || !jsonEqual(v, bvv) {
				return false
			}
		}
		return true
	}
	return false
}

// =============================================================================
// Rendering
// =============================================================================

// Render produces the textual form of a value used in reports:
// 5, 3.14, "s", true, (), 0x6869, [1 2 3], {k: v}, (some v), none,
// (ok v), (err v).
func Render(v Value) string {
	switch v.Kind {
	case ast.KindInt:
		return strconv.FormatInt(v.AsInt(), 10)
	case ast.KindFloat:
		return strconv.FormatFloat(v.AsFloat(), 'g', -1, 64)
	case ast.KindString:
		return strconv.Quote(v.AsStr())
	case ast.KindBool:
		return strconv.FormatBool(v.AsBool())
	case ast.KindUnit:
		return "()"
	case ast.KindBytes:
		return "0x" + hex.EncodeToString(v.Data.([]byte))
	case ast.KindArray:
		vs := v.Data.([]Value)
		parts := make([]string, len(vs))
		for i, e := range vs {
			parts[i] = Render(e)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case ast.KindMap:
		m := v.Data.(*MapValue)
		parts := make([]string, len(m.Entries))
		for i, e := range m.Entries {
			parts[i] = Render(e.Key) + ": " + Render(e.Val)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case ast.KindJson:
		b, err := json.Marshal(v.Data)
		if err != nil {
			return fmt.Sprintf("<json %v>", v.Data)
		}
		return string(b)
	case ast.KindOption:
		p := v.Data.(*Value)
		if p == nil {
			return "none"
		}
		return "(some " + Render(*p) + ")"
	case ast.KindResult:
		r := v.Data.(*ResultValue)
		if r.OK {
			return "(ok " + Render(r.Val) + ")"
		}
		return "(err " + Render(r.Val) + ")"
	case ast.KindChannel:
		ch := v.Data.(*Channel)
		return fmt.Sprintf("<channel cap=%d len=%d>", ch.Cap(), ch.Len())
	case ast.KindFuture:
		f := v.Data.(*Future)
		if f.Completed() {
			return "<future completed>"
		}
		return "<future pending>"
	case ast.KindFunction:
		return "<fn " + v.Data.(string) + ">"
	}
	return "<unknown>"
}
