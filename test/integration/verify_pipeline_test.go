// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Integration tests for the full verification pipeline: decode an
// exported module document, run its specs through the engine against
// the reference interpreter, and render the report.
package integration

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/aisl/services/verifier/engine"
	"github.com/AleutianAI/aisl/services/verifier/interp"
	"github.com/AleutianAI/aisl/services/verifier/report"
	"github.com/AleutianAI/aisl/services/verifier/sexpr"
)

const calcModule = `
(mod calc
  (meta-note "arithmetic reference module")
  (fn add ((a int) (b int)) -> int
    (bin + (var a) (var b)))
  (fn clamp ((n int)) -> int
    (if (bin > (var n) (lit_int int 100))
        (lit_int int 100)
        (var n)))
  (fn scaled ((n int)) -> int
    (bin * (call (var fetch_factor)) (var n)))
  (fn fetch_factor () -> int
    (lit_int int 2))
  (test-spec add
    (case "adds positives"
      (input (lit_int int 2) (lit_int int 3))
      (expect (lit_int int 5)))
    (case "identity on zero"
      (input (lit_int int 9) (lit_int int 0))
      (expect (lit_int int 9))))
  (test-spec clamp
    (case "passes small values"
      (input (lit_int int 42))
      (expect (lit_int int 42)))
    (case "caps large values"
      (input (lit_int int 500))
      (expect (lit_int int 100))))
  (test-spec scaled
    (case "mocked factor overrides the real one"
      (mock (fetch_factor) (lit_int int 10))
      (input (lit_int int 3))
      (expect (lit_int int 30)))
    (case "real factor applies without a mock"
      (input (lit_int int 3))
      (expect (lit_int int 6))))
  (property-spec add
    (property "sum of positives exceeds each addend"
      (forall ((x int) (y int)))
      (constraint (bin and (bin > (var x) (lit_int int 0))
                           (bin > (var y) (lit_int int 0))))
      (trials 60)
      (bin and (bin > (call (var add) (var x) (var y)) (var x))
               (bin > (call (var add) (var x) (var y)) (var y))))))
`

func runModule(t *testing.T, src string, opts ...engine.Option) *engine.ModuleResult {
	t.Helper()
	mod, err := sexpr.DecodeString(src)
	require.NoError(t, err)

	opts = append([]engine.Option{engine.WithSeed(42)}, opts...)
	eng := engine.New(interp.New(mod), opts...)
	res, err := eng.Run(context.Background(), mod)
	require.NoError(t, err)
	return res
}

func TestPipeline_AllPassing(t *testing.T) {
	res := runModule(t, calcModule)

	require.True(t, res.Ok(), "pipeline result: %+v", res.Specs)
	assert.Equal(t, "calc", res.Module)
	assert.Equal(t, 7, res.Total)
	assert.Equal(t, 7, res.Passed)
	assert.Equal(t, 0, res.Failed)

	var b strings.Builder
	require.NoError(t, report.WriteSExpr(&b, res))
	out := b.String()
	assert.Contains(t, out, "(module calc)")
	assert.Contains(t, out, "(summary (total 7) (passed 7) (failed 0))")
	assert.Contains(t, out, `(note "arithmetic reference module")`)
	assert.NotContains(t, out, "(failures")
}

func TestPipeline_FailureReporting(t *testing.T) {
	src := `
(mod broken
  (fn add ((a int) (b int)) -> int
    (bin + (var a) (var b)))
  (test-spec add
    (case "wrong expectation"
      (input (lit_int int 2) (lit_int int 2))
      (expect (lit_int int 5))))
  (test-spec missing_target
    (case "never runs"
      (input (lit_int int 1))
      (expect (lit_int int 1)))))
`
	res := runModule(t, src)

	require.False(t, res.Ok())
	out := report.SExpr(res)
	assert.Contains(t, out, "(summary (total 2) (passed 0) (failed 1) (skipped 1))")
	assert.Contains(t, out, `(test "wrong expectation"`)
	assert.Contains(t, out, "(expected 5)")
	assert.Contains(t, out, "(actual 4)")
	assert.Contains(t, out, "(spec missing_target")
}

func TestPipeline_PropertyCounterexampleReported(t *testing.T) {
	src := `
(mod falsifiable
  (fn id ((x int)) -> int (var x))
  (property-spec id
    (property "everything is positive"
      (forall ((x int)))
      (trials 40)
      (bin > (call (var id) (var x)) (lit_int int 0)))))
`
	res := runModule(t, src)

	require.False(t, res.Ok())
	out := report.SExpr(res)
	assert.Contains(t, out, `(property "everything is positive"`)
	assert.Contains(t, out, "(counterexample (x ")
}

func TestPipeline_TypeErrorDocument(t *testing.T) {
	src := `
(mod dup
  (fn f () -> int (lit_int int 1))
  (fn f () -> int (lit_int int 2)))
`
	res := runModule(t, src)

	require.NotNil(t, res.TypeErr)
	out := report.SExpr(res)
	assert.Contains(t, out, "(type-error")
	assert.Contains(t, out, "(code DUPLICATE_FUNCTION)")
	assert.NotContains(t, out, "(test-results")
}

func TestPipeline_SeedReproducesReport(t *testing.T) {
	src := `
(mod falsifiable
  (fn id ((x int)) -> int (var x))
  (property-spec id
    (property "too optimistic"
      (forall ((x int)))
      (trials 30)
      (bin > (call (var id) (var x)) (lit_int int 500)))))
`
	first := runModule(t, src)
	second := runModule(t, src)

	ce1 := first.Specs[0].Cases[0].Counterexample
	ce2 := second.Specs[0].Cases[0].Counterexample
	require.Len(t, ce1, 1)
	require.Len(t, ce2, 1)
	assert.Equal(t, ce1[0].Value, ce2[0].Value, "same seed must replay the same counterexample")
}

func TestPipeline_RecursiveFunction(t *testing.T) {
	src := `
(mod rec
  (fn fact ((n int)) -> int
    (if (bin <= (var n) (lit_int int 1))
        (lit_int int 1)
        (bin * (var n) (call (var fact) (bin - (var n) (lit_int int 1))))))
  (test-spec fact
    (case "factorial of five"
      (input (lit_int int 5))
      (expect (lit_int int 120)))
    (case "base case"
      (input (lit_int int 0))
      (expect (lit_int int 1)))))
`
	res := runModule(t, src)
	require.True(t, res.Ok(), "recursive module failed: %+v", res.Specs)
	assert.Equal(t, 2, res.Passed)
}
