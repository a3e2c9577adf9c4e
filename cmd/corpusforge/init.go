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
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/kraklabs/corpusforge/internal/bootstrap"
	"github.com/kraklabs/corpusforge/internal/errors"
	"github.com/kraklabs/corpusforge/internal/ui"
)

// runInit executes the 'init' CLI command, creating a starter
// configuration document.
//
// Flags:
//   - --dir: Project directory (default: current directory)
//   - --output: Output directory recorded in the configuration
//   - --force: Overwrite an existing configuration file
//
// Examples:
//
//	corpusforge init                 Create ./dataset.yaml
//	corpusforge init --force         Replace an existing dataset.yaml
func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dir := fs.String("dir", ".", "Project directory")
	outputDir := fs.String("output", "dataset", "Output directory recorded in the configuration")
	force := fs.Bool("force", false, "Overwrite an existing configuration file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: corpusforge init [options]

Creates a starter dataset.yaml in the project directory. Existing
configuration files are left alone unless --force is given.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	info, err := bootstrap.InitProject(bootstrap.ProjectConfig{
		Dir:       *dir,
		OutputDir: *outputDir,
		Force:     *force,
	}, slog.Default())
	if err != nil {
		errors.FatalError(errors.NewPermissionError(
			"Cannot scaffold dataset project",
			err.Error(),
			"Check write permissions for the project directory",
			err,
		), false)
	}

	if !info.Created {
		ui.Warningf("Configuration already exists: %s (use --force to replace)", info.ConfigPath)
		return
	}

	ui.Successf("Created %s", info.ConfigPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Declare your sources in the configuration")
	fmt.Println("  2. Run: corpusforge build")
}
