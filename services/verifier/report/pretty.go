// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package report

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/aisl/pkg/ux"
	"github.com/AleutianAI/aisl/services/verifier/engine"
)

// PrintSummary writes the human-facing run summary to stdout. Styling
// degrades to plain text when stdout is not a terminal.
func PrintSummary(res *engine.ModuleResult) {
	ux.Title(fmt.Sprintf("module %s", res.Module))
	ux.Muted(fmt.Sprintf("run %s", res.RunID))

	if res.TypeErr != nil {
		ux.Error(fmt.Sprintf("type check failed [%s] line %d: %s",
			res.TypeErr.Code, res.TypeErr.Line, res.TypeErr.Message))
		return
	}

	for _, note := range res.Notes {
		ux.Info("note: " + note)
	}

	for _, spec := range res.Specs {
		if spec.Err != "" {
			ux.SpecStatus(specLabel(spec), 0, spec.Total, spec.Err)
			continue
		}
		ux.SpecStatus(specLabel(spec), spec.Passed, spec.Total, "")
		for _, c := range spec.Cases {
			if c.Passed {
				continue
			}
			printFailure(spec.Kind, c)
		}
	}

	ux.Summary(res.Passed, res.Failed, res.Total, res.Duration)
}

func specLabel(spec engine.SpecResult) string {
	if spec.Kind == engine.SpecProperty {
		return spec.Target + " (properties)"
	}
	return spec.Target
}

func printFailure(kind engine.SpecKind, c engine.CaseResult) {
	switch {
	case len(c.Counterexample) > 0:
		parts := make([]string, len(c.Counterexample))
		for i, b := range c.Counterexample {
			parts[i] = fmt.Sprintf("%s = %s", b.Name, b.Value)
		}
		ux.FailureBox(c.Desc, c.Line, "assertion to hold", strings.Join(parts, ", "))
	case c.Unsatisfiable:
		ux.Warning(fmt.Sprintf("%s (line %d): %s", c.Desc, c.Line, c.Err))
	case c.Err != "":
		ux.Error(fmt.Sprintf("%s (line %d): %s", c.Desc, c.Line, c.Err))
	default:
		ux.FailureBox(c.Desc, c.Line, c.Expected, c.Actual)
	}
}
