// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/aisl/services/verifier/ast"
	"github.com/AleutianAI/aisl/services/verifier/runtime"
)

func TestDeterminism(t *testing.T) {
	types := []*ast.Type{
		ast.Int(),
		ast.Float(),
		ast.String(),
		ast.Bool(),
		ast.Bytes(),
		ast.Array(ast.Int()),
		ast.Map(ast.String(), ast.Int()),
		ast.Option(ast.Float()),
		ast.Result(ast.Int(), ast.String()),
		ast.Json(),
	}

	a := New(42)
	b := New(42)
	for i := 0; i < 200; i++ {
		typ := types[i%len(types)]
		va, errA := a.Value(typ)
		vb, errB := b.Value(typ)
		require.NoError(t, errA)
		require.NoError(t, errB)
		assert.True(t, runtime.Equal(va, vb),
			"iteration %d (%s): %s != %s", i, typ, runtime.Render(va), runtime.Render(vb))
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)

	same := 0
	for i := 0; i < 100; i++ {
		va, err := a.Value(ast.Int())
		require.NoError(t, err)
		vb, err := b.Value(ast.Int())
		require.NoError(t, err)
		if runtime.Equal(va, vb) {
			same++
		}
	}
	assert.Less(t, same, 100, "different seeds produced identical streams")
}

func TestSeed(t *testing.T) {
	assert.Equal(t, int64(99), New(99).Seed())

	g := NewRandom()
	replay := New(g.Seed())
	v1, err := g.Value(ast.Int())
	require.NoError(t, err)
	v2, err := replay.Value(ast.Int())
	require.NoError(t, err)
	assert.True(t, runtime.Equal(v1, v2))
}

func TestIntBounds(t *testing.T) {
	g := New(7)
	for i := 0; i < 1000; i++ {
		v, err := g.Value(ast.Int())
		require.NoError(t, err)
		require.Equal(t, ast.KindInt, v.Kind)
		n := v.Data.(int64)
		assert.GreaterOrEqual(t, n, int64(-intBound))
		assert.LessOrEqual(t, n, int64(intBound))
	}
}

func TestFloatsAlwaysFinite(t *testing.T) {
	g := New(7)
	for i := 0; i < 1000; i++ {
		v, err := g.Value(ast.Float())
		require.NoError(t, err)
		require.Equal(t, ast.KindFloat, v.Kind)
		f := v.Data.(float64)
		assert.False(t, math.IsNaN(f), "generated NaN")
		assert.False(t, math.IsInf(f, 0), "generated Inf")
		assert.LessOrEqual(t, math.Abs(f), floatBound)
	}
}

func TestStringsPrintableAndBounded(t *testing.T) {
	g := New(7)
	for i := 0; i < 500; i++ {
		v, err := g.Value(ast.String())
		require.NoError(t, err)
		s := v.Data.(string)
		assert.LessOrEqual(t, len(s), maxStringLen)
		for _, r := range s {
			assert.True(t, r >= ' ' && r <= '~', "non-printable rune %q in %q", r, s)
		}
	}
}

func TestEdgeValuesAppear(t *testing.T) {
	g := New(3)
	seen := map[int64]bool{}
	for i := 0; i < 2000; i++ {
		v, err := g.Value(ast.Int())
		require.NoError(t, err)
		seen[v.Data.(int64)] = true
	}
	for _, edge := range []int64{0, 1, -1, intBound, -intBound} {
		assert.True(t, seen[edge], "edge value %d never generated", edge)
	}
}

func TestCompositeValues(t *testing.T) {
	g := New(11)

	t.Run("array elements match element type", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			v, err := g.Value(ast.Array(ast.Int()))
			require.NoError(t, err)
			require.Equal(t, ast.KindArray, v.Kind)
			for _, el := range v.Data.([]runtime.Value) {
				assert.Equal(t, ast.KindInt, el.Kind)
			}
		}
	})

	t.Run("map keys and values match declared types", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			v, err := g.Value(ast.Map(ast.String(), ast.Bool()))
			require.NoError(t, err)
			require.Equal(t, ast.KindMap, v.Kind)
			m := v.Data.(*runtime.MapValue)
			for _, e := range m.Entries {
				assert.Equal(t, ast.KindString, e.Key.Kind)
				assert.Equal(t, ast.KindBool, e.Val.Kind)
			}
		}
	})

	t.Run("option produces both arms", func(t *testing.T) {
		some, none := false, false
		for i := 0; i < 200 && !(some && none); i++ {
			v, err := g.Value(ast.Option(ast.Int()))
			require.NoError(t, err)
			require.Equal(t, ast.KindOption, v.Kind)
			if v.Data.(*runtime.Value) == nil {
				none = true
			} else {
				some = true
			}
		}
		assert.True(t, some, "never generated some")
		assert.True(t, none, "never generated none")
	})

	t.Run("result produces both arms", func(t *testing.T) {
		okSeen, errSeen := false, false
		for i := 0; i < 200 && !(okSeen && errSeen); i++ {
			v, err := g.Value(ast.Result(ast.Int(), ast.String()))
			require.NoError(t, err)
			require.Equal(t, ast.KindResult, v.Kind)
			r := v.Data.(*runtime.ResultValue)
			if r.OK {
				okSeen = true
			} else {
				errSeen = true
			}
		}
		assert.True(t, okSeen, "never generated ok")
		assert.True(t, errSeen, "never generated err")
	})

	t.Run("deep nesting", func(t *testing.T) {
		typ := ast.Array(ast.Map(ast.String(), ast.Option(ast.Result(ast.Int(), ast.String()))))
		for i := 0; i < 20; i++ {
			_, err := g.Value(typ)
			require.NoError(t, err)
		}
	})
}

func TestUnsupportedTypes(t *testing.T) {
	g := New(1)
	for _, typ := range []*ast.Type{
		ast.Channel(ast.Int()),
		ast.Future(ast.String()),
		ast.Function([]*ast.Type{ast.Int()}, ast.Int()),
		nil,
	} {
		_, err := g.Value(typ)
		require.ErrorIs(t, err, ErrUnsupported, "type %s", typ)
	}

	t.Run("unsupported element type propagates", func(t *testing.T) {
		_, err := g.Value(ast.Array(ast.Channel(ast.Int())))
		require.ErrorIs(t, err, ErrUnsupported)
	})
}
