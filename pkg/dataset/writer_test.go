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

package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	cftest "github.com/kraklabs/corpusforge/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRecords(t *testing.T, w *Writer, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := w.Write(Record{
			Content:  fmt.Sprintf("sample %d", i),
			Language: "go",
			Metadata: Metadata{SourcePath: "a.go", StartLine: 1, EndLine: 1, Hash: "fp"},
		})
		require.NoError(t, err)
	}
}

// TestWriter_Split verifies every record lands in exactly one split and
// both files are valid JSONL.
func TestWriter_Split(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, Options{TrainRatio: 0.9, Seed: 13})
	require.NoError(t, err)

	writeRecords(t, w, 200)
	require.NoError(t, w.Close())

	train, eval := w.Counts()
	assert.Equal(t, 200, train+eval)
	assert.Greater(t, train, eval, "a 0.9 ratio sends most records to train")

	trainRecords := cftest.ReadJSONL(t, w.TrainPath())
	evalRecords := cftest.ReadJSONL(t, w.EvalPath())
	assert.Len(t, trainRecords, train)
	assert.Len(t, evalRecords, eval)

	require.NotEmpty(t, trainRecords)
	first := trainRecords[0]
	assert.Contains(t, first, "content")
	assert.Contains(t, first, "language")
	meta, ok := first["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a.go", meta["source_path"])
	assert.Equal(t, "fp", meta["hash"])
}

// TestWriter_Reproducible verifies the same seed, ratio and record order
// produce byte-identical splits.
func TestWriter_Reproducible(t *testing.T) {
	opts := Options{TrainRatio: 0.8, Seed: 42}

	run := func(dir string) (string, string) {
		w, err := NewWriter(dir, opts)
		require.NoError(t, err)
		writeRecords(t, w, 100)
		require.NoError(t, w.Close())
		return w.TrainPath(), w.EvalPath()
	}

	train1, eval1 := run(t.TempDir())
	train2, eval2 := run(t.TempDir())

	data1, err := os.ReadFile(train1)
	require.NoError(t, err)
	data2, err := os.ReadFile(train2)
	require.NoError(t, err)
	assert.Equal(t, data1, data2)

	data1, err = os.ReadFile(eval1)
	require.NoError(t, err)
	data2, err = os.ReadFile(eval2)
	require.NoError(t, err)
	assert.Equal(t, data1, data2)
}

// TestWriter_Gzip verifies compressed splits round-trip.
func TestWriter_Gzip(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, Options{TrainRatio: 0.9, Seed: 13, Compress: true})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "train.jsonl.gz"), w.TrainPath())
	assert.Equal(t, filepath.Join(dir, "eval.jsonl.gz"), w.EvalPath())

	writeRecords(t, w, 50)
	require.NoError(t, w.Close())

	train, eval := w.Counts()
	records := cftest.ReadJSONL(t, w.TrainPath())
	assert.Len(t, records, train)
	records = cftest.ReadJSONL(t, w.EvalPath())
	assert.Len(t, records, eval)
}

// TestWriter_NoHTMLEscaping verifies code punctuation survives encoding
// verbatim.
func TestWriter_NoHTMLEscaping(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, Options{TrainRatio: 1.0 - 1e-9, Seed: 1})
	require.NoError(t, err)

	require.NoError(t, w.Write(Record{Content: "if a < b && c > d {}", Language: "go"}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(w.TrainPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "a < b && c > d")
	assert.NotContains(t, string(data), "\\u003c")
}

// TestWriter_CloseIdempotent verifies repeated Close calls are harmless.
func TestWriter_CloseIdempotent(t *testing.T) {
	w, err := NewWriter(t.TempDir(), Options{TrainRatio: 0.9, Seed: 13})
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
