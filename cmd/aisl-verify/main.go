// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command aisl-verify runs the test and property specifications
// embedded in an exported AISL module.
//
// Usage:
//
//	aisl-verify verify calc.sexpr
//	aisl-verify verify calc.sexpr --seed 42 --trials 500
//	aisl-verify verify calc.sexpr --watch
//	aisl-verify check calc.sexpr
//
// The module file is the S-expression AST the parser collaborator
// exports. The machine-readable report goes to stdout (or --out); the
// styled summary goes to the terminal.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/aisl/pkg/logging"
	"github.com/AleutianAI/aisl/pkg/ux"
	"github.com/AleutianAI/aisl/services/verifier/ast"
	"github.com/AleutianAI/aisl/services/verifier/engine"
	"github.com/AleutianAI/aisl/services/verifier/interp"
	"github.com/AleutianAI/aisl/services/verifier/report"
	"github.com/AleutianAI/aisl/services/verifier/sexpr"
	"github.com/AleutianAI/aisl/services/verifier/typecheck"
)

const version = "0.3.0"

var (
	config Config
	logger *logging.Logger

	flagConfig   string
	flagSeed     int64
	flagTrials   int
	flagTimeout  time.Duration
	flagParallel int
	flagWatch    bool
	flagOut      string
	flagPlain    bool
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:           "aisl-verify",
	Short:         "Verification engine for AISL modules",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		config, err = loadConfig(flagConfig)
		if err != nil {
			return err
		}
		logger = logging.New(logging.Config{
			Level:   config.logLevel(),
			LogDir:  config.LogDir,
			Service: "aisl-verify",
			JSON:    config.LogJSON,
			Quiet:   flagQuiet,
		})
		if flagPlain {
			ux.SetPlain(true)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Close()
		}
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <module-file>",
	Short: "Run a module's test and property specs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.MetricsAddr != "" {
			go serveMetrics(config.MetricsAddr)
		}
		if flagWatch {
			return watchAndVerify(cmd.Context(), args[0])
		}
		ok, err := runVerify(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			os.Exit(1)
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <module-file>",
	Short: "Type-check a module without running any specs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mod, err := decodeFile(args[0])
		if err != nil {
			return err
		}
		if terr := typecheck.CheckModule(mod); terr != nil {
			ux.Error(terr.Error())
			os.Exit(1)
		}
		ux.Success(fmt.Sprintf("module %s: %d functions, no type errors",
			mod.Name, len(mod.Functions())))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the aisl-verify version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("aisl-verify %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "aisl-verify.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVar(&flagPlain, "plain", false, "disable styled output")
	rootCmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "suppress log output")

	verifyCmd.Flags().Int64Var(&flagSeed, "seed", 0, "property generator seed (0 = time-seeded)")
	verifyCmd.Flags().IntVar(&flagTrials, "trials", 0, "override property trial counts")
	verifyCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "per-case timeout (e.g. 2s)")
	verifyCmd.Flags().IntVar(&flagParallel, "parallel", 0, "max specs verified concurrently")
	verifyCmd.Flags().BoolVar(&flagWatch, "watch", false, "re-run on module file change")
	verifyCmd.Flags().StringVar(&flagOut, "out", "", "write the report to a file instead of stdout")

	rootCmd.AddCommand(verifyCmd, checkCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ux.Error(err.Error())
		os.Exit(2)
	}
}

func decodeFile(path string) (*ast.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening module: %w", err)
	}
	defer f.Close()
	return sexpr.Decode(f)
}

// runVerify decodes, verifies, and reports one module run. The bool
// is the verification verdict; err covers operational failures only.
func runVerify(ctx context.Context, path string) (bool, error) {
	mod, err := decodeFile(path)
	if err != nil {
		return false, err
	}

	opts := []engine.Option{engine.WithLogger(logger.Slog())}
	if seed := pick64(flagSeed, config.Seed); seed != 0 {
		opts = append(opts, engine.WithSeed(seed))
	}
	if n := pick(flagTrials, config.Trials); n > 0 {
		opts = append(opts, engine.WithTrials(n))
	}
	if flagTimeout > 0 {
		opts = append(opts, engine.WithCaseTimeout(flagTimeout))
	} else if config.CaseTimeoutMS > 0 {
		opts = append(opts, engine.WithCaseTimeout(time.Duration(config.CaseTimeoutMS)*time.Millisecond))
	}
	if config.AttemptCap > 0 {
		opts = append(opts, engine.WithAttemptCap(config.AttemptCap))
	}
	if n := pick(flagParallel, config.Concurrency); n > 1 {
		opts = append(opts, engine.WithConcurrency(n))
	}

	eng := engine.New(interp.New(mod), opts...)
	res, err := eng.Run(ctx, mod)
	if err != nil {
		return false, err
	}

	out := os.Stdout
	if flagOut != "" {
		f, err := os.Create(flagOut)
		if err != nil {
			return false, fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := report.WriteSExpr(out, res); err != nil {
		return false, fmt.Errorf("writing report: %w", err)
	}
	report.PrintSummary(res)
	return res.Ok(), nil
}

// watchAndVerify re-runs verification whenever the module file is
// written. Exit code reflects the last run.
func watchAndVerify(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	run := func() {
		if _, err := runVerify(ctx, path); err != nil {
			ux.Error(err.Error())
		}
	}
	run()
	ux.Muted(fmt.Sprintf("watching %s (ctrl-c to stop)", path))

	// Editors fire bursts of events per save; coalesce them.
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				pending = time.After(200 * time.Millisecond)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-pending:
			pending = nil
			run()
		}
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("metrics listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}

func pick(flag, cfg int) int {
	if flag != 0 {
		return flag
	}
	return cfg
}

func pick64(flag, cfg int64) int64 {
	if flag != 0 {
		return flag
	}
	return cfg
}
