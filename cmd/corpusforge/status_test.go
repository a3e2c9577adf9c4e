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
	"testing"

	"github.com/kraklabs/corpusforge/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSortedKeys verifies stable ascending key order.
func TestSortedKeys(t *testing.T) {
	m := map[string]int{"python": 3, "go": 7, "markdown": 1}
	assert.Equal(t, []string{"go", "markdown", "python"}, sortedKeys(m))
	assert.Empty(t, sortedKeys(nil))
}

// TestBuildResultJSON verifies the --json document shape stays stable.
func TestBuildResultJSON(t *testing.T) {
	stats := pipeline.NewStats()
	stats.FilesScanned = 2
	stats.FilesEmitted = 2

	result := BuildResult{
		TrainPath:    "/out/train.jsonl",
		EvalPath:     "/out/eval.jsonl",
		StatsPath:    "/out/dataset_stats.json",
		OutputDir:    "/out",
		Stats:        stats,
		DurationSecs: 1.5,
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "/out/train.jsonl", doc["train_path"])
	assert.Equal(t, 1.5, doc["duration_seconds"])

	statsDoc, ok := doc["stats"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, statsDoc["files_scanned"])
}
