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
// Package main implements the corpusforge CLI for assembling training
// corpora from code repositories and terminal command logs.
//
// Usage:
//
//	corpusforge init                     Create dataset.yaml configuration
//	corpusforge build [options]          Assemble the dataset
//	corpusforge status [--json]          Show statistics of the last build
package main

import (
	"flag"
	"fmt"
	"os"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// main is the entry point for the corpusforge CLI.
//
// It parses global flags and dispatches to command handlers.
//
// Global flags:
//   - --version: Display version information and exit
//   - --config: Path to the pipeline configuration document
//
// Commands:
//   - init: Create a starter dataset.yaml configuration
//   - build: Assemble the dataset from the configured sources
//   - status: Show statistics of the last build
//   - completion: Generate shell completion script
func main() {
	// Global flags
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "", "Path to configuration document (default: ./dataset.yaml)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `corpusforge - Training Corpus Assembly

corpusforge turns code repositories and terminal command logs into
train/eval JSONL datasets. Sources are cloned or read locally, every
file is filtered, normalized and chunked, and the resulting samples are
split deterministically.

Usage:
  corpusforge <command> [options]

Commands:
  init          Create a starter dataset.yaml configuration
  build         Assemble the dataset from the configured sources
  status        Show statistics of the last build
  completion    Generate shell completion script (bash|zsh|fish)

Global Options:
  --config      Path to configuration document
  --version     Show version and exit

Examples:
  corpusforge init                   Create dataset.yaml in the current directory
  corpusforge build                  Build using ./dataset.yaml
  corpusforge build . out/           Build from a root directory into out/
  corpusforge build --compress       Gzip the split files
  corpusforge status --json          Output last build statistics as JSON
  corpusforge completion bash        Generate bash completion script

Getting Started:
  1. Create a configuration:   corpusforge init
  2. Declare your sources in dataset.yaml
  3. Build the dataset:        corpusforge build
  4. Inspect the result:       corpusforge status

Output Layout:
  <output_dir>/train.jsonl              Training split
  <output_dir>/eval.jsonl               Evaluation split
  <output_dir>/dataset_stats.json       Run statistics
  <output_dir>/repository_metadata.json Per-source inventory
  <output_dir>/pipeline_config.json     Effective configuration

For detailed command help: corpusforge <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("corpusforge version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs)
	case "build":
		runBuild(cmdArgs, *configPath)
	case "status":
		runStatus(cmdArgs, *configPath)
	case "completion":
		runCompletion(cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
