// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics for Verification Runs
// =============================================================================

var (
	// specsRun counts verified specs.
	// Labels: kind (test, property), outcome (pass, fail, error)
	specsRun = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aisl",
		Subsystem: "engine",
		Name:      "specs_total",
		Help:      "Total specs verified",
	}, []string{"kind", "outcome"})

	// casesRun counts executed test cases and properties.
	// Labels: kind (test, property), outcome (pass, fail)
	casesRun = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aisl",
		Subsystem: "engine",
		Name:      "cases_total",
		Help:      "Total test cases and properties executed",
	}, []string{"kind", "outcome"})

	// propertyTrials counts accepted property trials.
	propertyTrials = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aisl",
		Subsystem: "engine",
		Name:      "property_trials_total",
		Help:      "Total accepted property trials",
	})

	// rejectedAttempts counts constraint-rejected generation attempts.
	rejectedAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aisl",
		Subsystem: "engine",
		Name:      "rejected_attempts_total",
		Help:      "Total property attempts rejected by constraints",
	})

	// caseDuration measures per-case execution time.
	// Labels: kind (test, property)
	caseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "aisl",
		Subsystem: "engine",
		Name:      "case_duration_seconds",
		Help:      "Per-case execution time in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
	}, []string{"kind"})
)

func outcomeLabel(passed bool) string {
	if passed {
		return "pass"
	}
	return "fail"
}
