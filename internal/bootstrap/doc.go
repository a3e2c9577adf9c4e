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

// Package bootstrap handles dataset project scaffolding.
//
// This internal package creates the starter configuration a new dataset
// project needs before its first build.
//
// # Initialization Workflow
//
// A typical workflow for setting up a new dataset project:
//
//	// Scaffold the project (creates dataset.yaml)
//	info, err := bootstrap.InitProject(bootstrap.ProjectConfig{
//	    Dir: ".",
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Configuration written to: %s\n", info.ConfigPath)
//
// # Idempotency
//
// InitProject is idempotent: an existing configuration file is never
// overwritten unless Force is set, so re-running it in scripts is safe.
//
// # Configuration Discovery
//
// Find the configuration document in a directory:
//
//	path := bootstrap.FindConfig(".")
//	if path == "" {
//	    // no configuration present
//	}
package bootstrap
