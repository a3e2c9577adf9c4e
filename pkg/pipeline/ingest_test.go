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

package pipeline

import (
	"testing"

	cftest "github.com/kraklabs/corpusforge/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(root string, cfg IngestionConfig) []FileRecord {
	var records []FileRecord
	for record := range ScanFiles(root, cfg, nil) {
		records = append(records, record)
	}
	return records
}

func relPaths(records []FileRecord) []string {
	paths := make([]string, 0, len(records))
	for _, r := range records {
		paths = append(paths, r.RelativePath)
	}
	return paths
}

func testIngestionConfig() IngestionConfig {
	return IngestionConfig{
		IncludeExtensions: []string{".go", ".py", ".md"},
		ExcludeDirs:       []string{".git", "node_modules"},
		MaxFileSizeMB:     5,
	}
}

// TestScanFiles_ExtensionFilter verifies the suffix allow-list.
func TestScanFiles_ExtensionFilter(t *testing.T) {
	root := cftest.WriteTree(t, map[string]string{
		"main.go":   "package main\n",
		"util.py":   "def f():\n    pass\n",
		"image.svg": "<svg/>\n",
		"notes.md":  "# Notes\n",
	})

	records := scanAll(root, testIngestionConfig())
	assert.ElementsMatch(t, []string{"main.go", "util.py", "notes.md"}, relPaths(records))
}

// TestScanFiles_SuffixlessFiles verifies extension-less files bypass the
// allow-list.
func TestScanFiles_SuffixlessFiles(t *testing.T) {
	root := cftest.WriteTree(t, map[string]string{
		"Makefile": "all:\n\ttrue\n",
		"LICENSE":  "MIT\n",
		"app.go":   "package app\n",
	})

	records := scanAll(root, testIngestionConfig())
	assert.ElementsMatch(t, []string{"Makefile", "LICENSE", "app.go"}, relPaths(records))
}

// TestScanFiles_ExcludedDirs verifies name-only directory pruning at any
// depth.
func TestScanFiles_ExcludedDirs(t *testing.T) {
	root := cftest.WriteTree(t, map[string]string{
		"main.go":                        "package main\n",
		".git/config.md":                 "ignored\n",
		"pkg/node_modules/dep/index.py":  "ignored\n",
		"pkg/util.go":                    "package pkg\n",
	})

	records := scanAll(root, testIngestionConfig())
	assert.ElementsMatch(t, []string{"main.go", "pkg/util.go"}, relPaths(records))
}

// TestScanFiles_BinarySkipped verifies the binary heuristic drops files.
func TestScanFiles_BinarySkipped(t *testing.T) {
	root := cftest.WriteTree(t, map[string]string{"text.go": "package text\n"})
	cftest.WriteBinaryAt(t, root, "blob.go", []byte{0x00, 0x01, 0x02, 'g', 'o'})

	records := scanAll(root, testIngestionConfig())
	assert.Equal(t, []string{"text.go"}, relPaths(records))
}

// TestScanFiles_SizeCap verifies oversized files are skipped.
func TestScanFiles_SizeCap(t *testing.T) {
	root := cftest.WriteTree(t, map[string]string{"small.go": "package small\n"})

	big := make([]byte, 2<<20)
	for i := range big {
		big[i] = 'a'
	}
	cftest.WriteBinaryAt(t, root, "big.go", big)

	cfg := testIngestionConfig()
	cfg.MaxFileSizeMB = 1

	records := scanAll(root, testIngestionConfig())
	assert.ElementsMatch(t, []string{"small.go", "big.go"}, relPaths(records), "2MB fits the default 5MB cap")

	records = scanAll(root, cfg)
	assert.Equal(t, []string{"small.go"}, relPaths(records))
}

// TestScanFiles_RecordFields verifies record population.
func TestScanFiles_RecordFields(t *testing.T) {
	content := "package main\n\nfunc main() {}\n"
	root := cftest.WriteTree(t, map[string]string{"cmd/app/main.go": content})

	records := scanAll(root, testIngestionConfig())
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "cmd/app/main.go", record.RelativePath)
	assert.Equal(t, content, record.Content)
	assert.Equal(t, "go", record.Language)
	assert.Equal(t, Fingerprint([]byte(content)), record.Fingerprint)
	assert.Equal(t, int64(len(content)), record.Size)
}

// TestScanFiles_LexicalOrder verifies deterministic traversal order.
func TestScanFiles_LexicalOrder(t *testing.T) {
	root := cftest.WriteTree(t, map[string]string{
		"b.go":     "package b\n",
		"a.go":     "package a\n",
		"sub/c.go": "package c\n",
	})

	records := scanAll(root, testIngestionConfig())
	assert.Equal(t, []string{"a.go", "b.go", "sub/c.go"}, relPaths(records))
}

// TestScanFiles_MissingRoot verifies a missing root yields nothing
// rather than failing.
func TestScanFiles_MissingRoot(t *testing.T) {
	records := scanAll("/nonexistent/path/for/sure", testIngestionConfig())
	assert.Empty(t, records)
}

// TestScanFiles_EarlyStop verifies the consumer can stop mid-walk.
func TestScanFiles_EarlyStop(t *testing.T) {
	root := cftest.WriteTree(t, map[string]string{
		"a.go": "package a\n",
		"b.go": "package b\n",
		"c.go": "package c\n",
	})

	count := 0
	for range ScanFiles(root, testIngestionConfig(), nil) {
		count++
		if count == 1 {
			break
		}
	}
	assert.Equal(t, 1, count)
}
