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

package testing

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteTree creates a temporary directory populated with the given
// files. Keys are slash-separated relative paths; parent directories are
// created as needed. The directory is removed when the test finishes.
//
// Example:
//
//	root := testing.WriteTree(t, map[string]string{
//	    "main.go":        "package main\n",
//	    "pkg/util/u.py":  "def f():\n    pass\n",
//	})
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		WriteFileAt(t, root, rel, content)
	}
	return root
}

// WriteFileAt writes one file under root, creating parent directories.
func WriteFileAt(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
	return path
}

// WriteBinaryAt writes raw bytes under root, creating parent directories.
// Useful for planting files that must fail the text heuristic.
func WriteBinaryAt(t *testing.T, root, rel string, content []byte) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
	return path
}

// ReadJSONL decodes every line of a JSONL file into a map. Files ending
// in .gz are transparently decompressed.
//
// Example:
//
//	records := testing.ReadJSONL(t, result.TrainPath)
//	require.NotEmpty(t, records)
func ReadJSONL(t *testing.T, path string) []map[string]any {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			t.Fatalf("failed to open gzip stream %s: %v", path, err)
		}
		defer gz.Close()
		r = gz
	}

	var records []map[string]any
	dec := json.NewDecoder(r)
	for dec.More() {
		var record map[string]any
		if err := dec.Decode(&record); err != nil {
			t.Fatalf("failed to decode record in %s: %v", path, err)
		}
		records = append(records, record)
	}
	return records
}

// ReadJSON decodes one JSON document into out.
func ReadJSON(t *testing.T, path string, out any) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("failed to parse %s: %v", path, err)
	}
}
