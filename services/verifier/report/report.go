// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package report renders verification results as S-expression
// documents, one document per module run:
//
//	(test-results
//	  (module <name>)
//	  (summary (total N) (passed N) (failed N))
//	  (failures
//	    (test "<description>" (line L)
//	      (expected <rendered>)
//	      (actual <rendered>)))
//	  (duration-us N))
//
// Property failures carry (counterexample (<name> <rendered>) ...)
// entries instead of expected/actual. A module-level type error
// produces a distinct (type-error ...) document; no tests ran in that
// case. The summary line is always present, even when every spec
// failed to resolve.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AleutianAI/aisl/services/verifier/engine"
)

// WriteSExpr writes the report document for res to w.
func WriteSExpr(w io.Writer, res *engine.ModuleResult) error {
	_, err := io.WriteString(w, SExpr(res))
	return err
}

// SExpr renders the report document for res.
func SExpr(res *engine.ModuleResult) string {
	var b strings.Builder

	if res.TypeErr != nil {
		fmt.Fprintf(&b, "(type-error\n")
		fmt.Fprintf(&b, "  (module %s)\n", res.Module)
		fmt.Fprintf(&b, "  (code %s)\n", res.TypeErr.Code)
		fmt.Fprintf(&b, "  (message %s)\n", strconv.Quote(res.TypeErr.Message))
		fmt.Fprintf(&b, "  (line %d))\n", res.TypeErr.Line)
		return b.String()
	}

	fmt.Fprintf(&b, "(test-results\n")
	fmt.Fprintf(&b, "  (module %s)\n", res.Module)

	skipped := 0
	for _, s := range res.Specs {
		skipped += s.Skipped
	}
	if skipped > 0 {
		fmt.Fprintf(&b, "  (summary (total %d) (passed %d) (failed %d) (skipped %d))\n",
			res.Total, res.Passed, res.Failed, skipped)
	} else {
		fmt.Fprintf(&b, "  (summary (total %d) (passed %d) (failed %d))\n",
			res.Total, res.Passed, res.Failed)
	}

	for _, note := range res.Notes {
		fmt.Fprintf(&b, "  (note %s)\n", strconv.Quote(note))
	}

	if failures := renderFailures(res); failures != "" {
		fmt.Fprintf(&b, "  (failures\n%s)\n", failures)
	}

	fmt.Fprintf(&b, "  (duration-us %d))\n", res.Duration.Microseconds())
	return b.String()
}

func renderFailures(res *engine.ModuleResult) string {
	var b strings.Builder
	for _, spec := range res.Specs {
		if spec.Err != "" {
			fmt.Fprintf(&b, "    (spec %s (line %d)\n", spec.Target, spec.Line)
			fmt.Fprintf(&b, "      (error %s))\n", strconv.Quote(spec.Err))
			continue
		}
		for _, c := range spec.Cases {
			if c.Passed {
				continue
			}
			renderFailedCase(&b, spec.Kind, c)
		}
	}
	return b.String()
}

func renderFailedCase(b *strings.Builder, kind engine.SpecKind, c engine.CaseResult) {
	fmt.Fprintf(b, "    (%s %s (line %d)\n", kind, strconv.Quote(c.Desc), c.Line)

	switch {
	case len(c.Counterexample) > 0:
		fmt.Fprintf(b, "      (counterexample")
		for _, bind := range c.Counterexample {
			fmt.Fprintf(b, " (%s %s)", bind.Name, bind.Value)
		}
		fmt.Fprintf(b, ")")
	case c.Unsatisfiable:
		fmt.Fprintf(b, "      (unsatisfiable (trials %d))", c.Trials)
	case c.Err != "":
		fmt.Fprintf(b, "      (error %s)", strconv.Quote(c.Err))
	default:
		fmt.Fprintf(b, "      (expected %s)\n", c.Expected)
		fmt.Fprintf(b, "      (actual %s)", c.Actual)
	}

	if c.Err != "" && (len(c.Counterexample) > 0 || c.Unsatisfiable) {
		fmt.Fprintf(b, "\n      (error %s)", strconv.Quote(c.Err))
	}
	fmt.Fprintf(b, ")\n")
}
