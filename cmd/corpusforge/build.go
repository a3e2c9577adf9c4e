// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kraklabs/corpusforge/internal/bootstrap"
	"github.com/kraklabs/corpusforge/internal/errors"
	"github.com/kraklabs/corpusforge/internal/output"
	"github.com/kraklabs/corpusforge/internal/ui"
	"github.com/kraklabs/corpusforge/pkg/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BuildResult represents a completed build for JSON output.
type BuildResult struct {
	TrainPath    string          `json:"train_path"`
	EvalPath     string          `json:"eval_path"`
	StatsPath    string          `json:"stats_path"`
	OutputDir    string          `json:"output_dir"`
	Stats        *pipeline.Stats `json:"stats"`
	DurationSecs float64         `json:"duration_seconds"`
}

// runBuild executes the 'build' CLI command, assembling the dataset.
//
// With a configuration document the declared sources drive the build.
// Without one, positional arguments name local source directories and an
// optional output directory, and the documented defaults apply.
//
// Flags:
//   - --workspace: Override the scratch directory for remote checkouts
//   - --compress: Gzip the split files regardless of configuration
//   - --json: Output the result as JSON
//   - --debug: Enable debug logging
//   - --metrics-addr: HTTP address for Prometheus metrics (default: disabled)
//
// Examples:
//
//	corpusforge build                       Build using ./dataset.yaml
//	corpusforge build ./src ./out           Build ./src into ./out without config
//	corpusforge build --metrics-addr :9090  Expose /metrics while building
func runBuild(args []string, configPath string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	workspace := fs.String("workspace", "", "Scratch directory for remote checkouts")
	compress := fs.Bool("compress", false, "Gzip the split files")
	jsonOutput := fs.Bool("json", false, "Output result as JSON")
	debug := fs.Bool("debug", false, "Enable debug logging")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: corpusforge build [options] [source-dir ...] [output-dir]

Assembles a train/eval dataset. With a configuration document
(./dataset.yaml or --config) the declared sources are used; otherwise
the positional source directories are ingested with default settings,
and the last positional argument names the output directory when two or
more are given.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Start Prometheus metrics endpoint (optional)
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: *metricsAddr, Handler: mux}
			logger.Info("metrics.http.start", "addr", *metricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.http.error", "err", err)
			}
		}()
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

	positional := fs.Args()
	start := time.Now()

	var result *pipeline.Result
	var err error

	if configPath == "" {
		configPath = bootstrap.FindConfig(".")
	}

	switch {
	case configPath != "":
		var cfg *pipeline.Config
		cfg, err = pipeline.LoadConfig(configPath)
		if err != nil {
			errors.FatalError(errors.NewConfigError(
				"Cannot load pipeline configuration",
				err.Error(),
				"Check the document syntax or run: corpusforge init",
				err,
			), *jsonOutput)
		}
		if *workspace != "" {
			cfg.Workspace = *workspace
		}
		if *compress {
			cfg.Dataset.Compress = true
		}
		logger.Info("build.config", "path", configPath)
		result, err = pipeline.Run(ctx, cfg, logger)

	case len(positional) > 0:
		sources := positional
		outputDir := "dataset"
		if len(positional) >= 2 {
			sources = positional[:len(positional)-1]
			outputDir = positional[len(positional)-1]
		}
		result, err = pipeline.RunFromPaths(ctx, sources, outputDir, logger)

	default:
		errors.FatalError(errors.NewConfigError(
			"No configuration found",
			"No dataset.yaml exists here and no source directories were given",
			"Run 'corpusforge init' or pass source directories: corpusforge build <dir> [out]",
			nil,
		), *jsonOutput)
	}

	if err != nil {
		errors.FatalError(errors.NewSourceError(
			"Dataset build failed",
			err.Error(),
			"Re-run with --debug for per-stage logging",
			err,
		), *jsonOutput)
	}

	if *jsonOutput {
		if err := output.JSON(&BuildResult{
			TrainPath:    result.TrainPath,
			EvalPath:     result.EvalPath,
			StatsPath:    result.StatsPath,
			OutputDir:    result.OutputDir,
			Stats:        result.Stats,
			DurationSecs: time.Since(start).Seconds(),
		}); err != nil {
			errors.FatalError(err, true)
		}
		return
	}

	printBuildResult(result, time.Since(start))
}

// printBuildResult prints the build summary to stdout.
func printBuildResult(result *pipeline.Result, elapsed time.Duration) {
	fmt.Println()
	ui.Header("Dataset Build Complete")
	fmt.Printf("%s %s\n", ui.Label("Train split:"), result.TrainPath)
	fmt.Printf("%s  %s\n", ui.Label("Eval split:"), result.EvalPath)
	fmt.Println()

	stats := result.Stats
	fmt.Printf("Files:  %s scanned, %s emitted, %s deduplicated, %s filtered\n",
		ui.CountText(stats.FilesScanned), ui.CountText(stats.FilesEmitted),
		ui.CountText(stats.FilesDeduplicated), ui.CountText(stats.FilesFiltered))
	fmt.Printf("Chunks: %s generated, %s emitted, %s deduplicated\n",
		ui.CountText(stats.ChunksGenerated), ui.CountText(stats.ChunksEmitted),
		ui.CountText(stats.ChunksDeduplicated))

	if len(stats.LanguageDist) > 0 {
		fmt.Println()
		ui.SubHeader("Languages:")
		for _, lang := range sortedKeys(stats.LanguageDist) {
			fmt.Printf("  %-12s %s\n", lang, ui.CountText(stats.LanguageDist[lang]))
		}
	}

	fmt.Println()
	ui.Successf("Done in %s", elapsed.Round(time.Millisecond))
	fmt.Printf("Artifacts stored in: %s\n", ui.DimText(result.OutputDir))
}
