// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package generate produces pseudo-random runtime values of a declared
// type for property testing. Generation is seedable: two generators
// built from the same seed emit the same value sequence, which is what
// makes counterexamples reproducible.
package generate

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/AleutianAI/aisl/services/verifier/ast"
	"github.com/AleutianAI/aisl/services/verifier/runtime"
)

// ErrUnsupported is returned for types that have no meaningful random
// value outside a live execution: channels, futures, and functions.
// Property specs quantifying over such a type are rejected by the
// executor.
var ErrUnsupported = errors.New("type is not a supported generation target")

// Bounds used by the generator. Integers stay small enough that sums
// and products of a few generated values cannot overflow int64, which
// keeps arithmetic-shaped assertions meaningful.
const (
	intBound     = 1000
	floatBound   = 1000.0
	maxStringLen = 16
	maxBytesLen  = 16
	maxElems     = 8
	maxJsonDepth = 3
)

// intEdges are always-interesting integers mixed into the stream.
var intEdges = []int64{0, 1, -1, intBound, -intBound}

// floatEdges include both zeros; NaN and infinities are deliberately
// absent (nothing in the type system declares them representable).
var floatEdges = []float64{0.0, math.Copysign(0, -1), 1.0, -1.0, 0.5, -0.5}

// Generator produces random values. Not safe for concurrent use; the
// engine gives each spec its own generator so seed state stays
// spec-local.
type Generator struct {
	rng  *rand.Rand
	seed int64
}

// New returns a generator with a fixed seed.
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), seed: seed}
}

// NewRandom returns a time-seeded generator. Seed() exposes the chosen
// seed so a failing run can still be replayed.
func NewRandom() *Generator {
	return New(time.Now().UnixNano())
}

// Seed returns the seed this generator was built with.
func (g *Generator) Seed() int64 { return g.seed }

// Value produces one pseudo-random value consistent with t.
func (g *Generator) Value(t *ast.Type) (runtime.Value, error) {
	if t == nil {
		return runtime.Value{}, fmt.Errorf("%w: nil type", ErrUnsupported)
	}
	switch t.Kind {
	case ast.KindInt, ast.KindI8, ast.KindI16, ast.KindI32, ast.KindI64,
		ast.KindU8, ast.KindU16, ast.KindU32, ast.KindU64:
		return runtime.Int(g.genInt()), nil
	case ast.KindFloat, ast.KindF32, ast.KindF64:
		return runtime.Float(g.genFloat()), nil
	case ast.KindString:
		return runtime.Str(g.genString()), nil
	case ast.KindBool:
		return runtime.Bool(g.rng.Intn(2) == 0), nil
	case ast.KindUnit:
		return runtime.Unit(), nil
	case ast.KindBytes:
		b := make([]byte, g.rng.Intn(maxBytesLen+1))
		g.rng.Read(b)
		return runtime.BytesVal(b), nil
	case ast.KindArray:
		n := g.rng.Intn(maxElems + 1)
		vs := make([]runtime.Value, n)
		for i := range vs {
			v, err := g.Value(t.Elem)
			if err != nil {
				return runtime.Value{}, err
			}
			vs[i] = v
		}
		return runtime.Array(vs), nil
	case ast.KindMap:
		n := g.rng.Intn(maxElems + 1)
		m := &runtime.MapValue{}
		for i := 0; i < n; i++ {
			k, err := g.Value(t.Key)
			if err != nil {
				return runtime.Value{}, err
			}
			v, err := g.Value(t.Elem)
			if err != nil {
				return runtime.Value{}, err
			}
			m.Set(k, v)
		}
		return runtime.MapVal(m), nil
	case ast.KindJson:
		return runtime.JsonVal(g.genJson(0)), nil
	case ast.KindOption:
		if g.rng.Intn(4) == 0 {
			return runtime.None(), nil
		}
		v, err := g.Value(t.Elem)
		if err != nil {
			return runtime.Value{}, err
		}
		return runtime.Some(v), nil
	case ast.KindResult:
		if g.rng.Intn(4) == 0 {
			v, err := g.Value(t.Err)
			if err != nil {
				return runtime.Value{}, err
			}
			return runtime.Err(v), nil
		}
		v, err := g.Value(t.Elem)
		if err != nil {
			return runtime.Value{}, err
		}
		return runtime.Ok(v), nil
	case ast.KindChannel, ast.KindFuture, ast.KindFunction:
		return runtime.Value{}, fmt.Errorf("%w: %s", ErrUnsupported, t)
	}
	return runtime.Value{}, fmt.Errorf("%w: %s", ErrUnsupported, t)
}

// genInt draws from the edge set one time in eight, otherwise uniform
// in [-intBound, intBound].
func (g *Generator) genInt() int64 {
	if g.rng.Intn(8) == 0 {
		return intEdges[g.rng.Intn(len(intEdges))]
	}
	return int64(g.rng.Intn(2*intBound+1) - intBound)
}

// genFloat draws from the edge set one time in eight, otherwise uniform
// in (-floatBound, floatBound). The result is always finite.
func (g *Generator) genFloat() float64 {
	if g.rng.Intn(8) == 0 {
		return floatEdges[g.rng.Intn(len(floatEdges))]
	}
	return (g.rng.Float64()*2 - 1) * floatBound
}

// genString builds a printable-ASCII string of bounded length.
func (g *Generator) genString() string {
	n := g.rng.Intn(maxStringLen + 1)
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(' ' + g.rng.Intn('~'-' '+1))
	}
	return string(b)
}

// genJson builds a small random JSON tree, scalar-only past maxJsonDepth.
func (g *Generator) genJson(depth int) any {
	choice := g.rng.Intn(6)
	if depth >= maxJsonDepth && choice >= 4 {
		choice = g.rng.Intn(4)
	}
	switch choice {
	case 0:
		return nil
	case 1:
		return g.rng.Intn(2) == 0
	case 2:
		return float64(g.genInt())
	case 3:
		return g.genString()
	case 4:
		n := g.rng.Intn(4)
		arr := make([]any, n)
		for i := range arr {
			arr[i] = g.genJson(depth + 1)
		}
		return arr
	default:
		n := g.rng.Intn(4)
		obj := make(map[string]any, n)
		for i := 0; i < n; i++ {
			obj[g.genString()] = g.genJson(depth + 1)
		}
		return obj
	}
}
