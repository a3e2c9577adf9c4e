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

// Package testing provides test helpers for corpusforge tests.
//
// The helpers build throwaway source trees on disk and read back the
// artifacts a pipeline run produces, so tests exercise real filesystem
// walks instead of mocks.
//
// # Quick Start
//
// Use WriteTree to create a populated temporary source tree:
//
//	func TestMyFeature(t *testing.T) {
//	    root := testing.WriteTree(t, map[string]string{
//	        "main.go":       "package main\n",
//	        "docs/notes.md": "# Notes\n",
//	    })
//
//	    // Run the pipeline against root...
//	}
//
// # Inspecting Output
//
// ReadJSONL decodes dataset split files, transparently handling gzip:
//
//	records := testing.ReadJSONL(t, result.TrainPath)
//	require.NotEmpty(t, records)
//
// ReadJSON loads the JSON documents written next to the splits
// (dataset_stats.json, repository_metadata.json, pipeline_config.json).
package testing
