// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/aisl/pkg/logging"
)

// Config is the optional aisl-verify.yaml file. Flags override it.
type Config struct {
	// Trials overrides every property's trial count when > 0.
	Trials int `yaml:"trials" validate:"omitempty,gt=0"`

	// AttemptCap is the multiplier bounding constraint-rejected
	// generation attempts per property.
	AttemptCap int `yaml:"attempt_cap" validate:"omitempty,gt=0"`

	// CaseTimeoutMS bounds one test case or property trial.
	CaseTimeoutMS int `yaml:"case_timeout_ms" validate:"omitempty,gt=0"`

	// Seed fixes the property generator seed; 0 means time-seeded.
	Seed int64 `yaml:"seed"`

	// Concurrency is the max number of specs verified in parallel.
	Concurrency int `yaml:"concurrency" validate:"omitempty,gte=1"`

	// MetricsAddr exposes Prometheus metrics when set, e.g. ":9102".
	MetricsAddr string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`

	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogDir   string `yaml:"log_dir"`
	LogJSON  bool   `yaml:"log_json"`
}

// loadConfig reads and validates path. A missing file is not an
// error; the zero Config is fully usable.
func loadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) logLevel() logging.Level {
	switch c.LogLevel {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}
