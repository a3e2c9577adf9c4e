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
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/kraklabs/corpusforge/internal/bootstrap"
	"github.com/kraklabs/corpusforge/internal/errors"
	"github.com/kraklabs/corpusforge/internal/output"
	"github.com/kraklabs/corpusforge/internal/ui"
	"github.com/kraklabs/corpusforge/pkg/pipeline"
)

// runStatus executes the 'status' CLI command, displaying statistics of
// the last build.
//
// It reads dataset_stats.json from the configured output directory and
// renders it for humans or as JSON.
//
// Flags:
//   - --json: Output results as JSON (default: false)
//
// Examples:
//
//	corpusforge status           Display formatted statistics
//	corpusforge status --json    Output as JSON for programmatic use
func runStatus(args []string, configPath string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: corpusforge status [options]

Shows statistics of the last dataset build.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	outputDir := "dataset"
	if configPath == "" {
		configPath = bootstrap.FindConfig(".")
	}
	if configPath != "" {
		cfg, err := pipeline.LoadConfig(configPath)
		if err != nil {
			errors.FatalError(errors.NewConfigError(
				"Cannot load pipeline configuration",
				err.Error(),
				"Check the document syntax or run: corpusforge init",
				err,
			), *jsonOutput)
		}
		outputDir = cfg.OutputDir
	}

	statsPath := filepath.Join(outputDir, "dataset_stats.json")
	data, err := os.ReadFile(statsPath)
	if err != nil {
		errors.FatalError(errors.NewNotFoundError(
			"Dataset statistics not found",
			fmt.Sprintf("No dataset_stats.json exists in %s", outputDir),
			"Run 'corpusforge build' first",
		), *jsonOutput)
	}

	var stats pipeline.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot parse dataset statistics",
			err.Error(),
			"Delete the output directory and rebuild",
			err,
		), *jsonOutput)
	}

	if *jsonOutput {
		if err := output.JSON(&stats); err != nil {
			errors.FatalError(err, true)
		}
		return
	}

	ui.Header("Dataset Status")
	fmt.Printf("%s %s\n", ui.Label("Output:"), outputDir)
	fmt.Println()
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

	if len(stats.SourceFileCounts) > 0 {
		fmt.Println()
		ui.SubHeader("Sources:")
		for _, name := range sortedKeys(stats.SourceFileCounts) {
			fmt.Printf("  %-20s %s\n", name, ui.CountText(stats.SourceFileCounts[name]))
		}
	}
}

// sortedKeys returns map keys in ascending order for stable output.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
