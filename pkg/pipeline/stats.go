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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Stats aggregates counts collected while building a dataset. It is
// mutated incrementally at each stage boundary by the single pipeline
// thread and serialized once at run end. Map keys are sorted on output.
type Stats struct {
	FilesScanned       int            `json:"files_scanned"`
	FilesEmitted       int            `json:"files_emitted"`
	FilesDeduplicated  int            `json:"files_deduplicated"`
	FilesFiltered      int            `json:"files_filtered"`
	ChunksGenerated    int            `json:"chunks_generated"`
	ChunksEmitted      int            `json:"chunks_emitted"`
	ChunksDeduplicated int            `json:"chunks_deduplicated"`
	LanguageDist       map[string]int `json:"language_distribution"`
	SourceFileCounts   map[string]int `json:"source_file_counts"`
}

// NewStats returns an empty accumulator.
func NewStats() *Stats {
	return &Stats{
		LanguageDist:     make(map[string]int),
		SourceFileCounts: make(map[string]int),
	}
}

// RecordLanguage tallies one emitted chunk for a language.
func (s *Stats) RecordLanguage(language string) {
	s.LanguageDist[language]++
}

// RecordSource tallies one scanned file for a source name.
func (s *Stats) RecordSource(source string) {
	s.SourceFileCounts[source]++
}

// Write persists the statistics to dataset_stats.json in outputDir and
// returns the file path. Go's JSON encoder emits map keys sorted, which
// keeps the document stable across runs.
func (s *Stats) Write(outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(outputDir, "dataset_stats.json")
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal stats: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("write stats: %w", err)
	}
	return path, nil
}

// Summary returns a concise human readable one-liner.
func (s *Stats) Summary() string {
	return fmt.Sprintf(
		"files: %d/%d emitted, deduped: %d, filtered: %d | chunks: %d/%d emitted, deduped: %d | sources: %d",
		s.FilesEmitted, s.FilesScanned, s.FilesDeduplicated, s.FilesFiltered,
		s.ChunksEmitted, s.ChunksGenerated, s.ChunksDeduplicated,
		len(s.SourceFileCounts),
	)
}
