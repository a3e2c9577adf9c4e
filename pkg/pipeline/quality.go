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
	"strings"
	"unicode/utf8"
)

// Enforcer applies deduplication and heuristic quality gates to records
// and chunks. One instance lives per pipeline run; its two fingerprint
// sets are mutated in place by the single execution thread and discarded
// at run end. Nothing persists across runs.
type Enforcer struct {
	cfg               QualityConfig
	fileFingerprints  map[string]struct{}
	chunkFingerprints map[string]struct{}
}

// NewEnforcer creates a quality enforcer for one run.
func NewEnforcer(cfg QualityConfig) *Enforcer {
	return &Enforcer{
		cfg:               cfg,
		fileFingerprints:  make(map[string]struct{}),
		chunkFingerprints: make(map[string]struct{}),
	}
}

// IsDuplicateFile reports whether the record's pre-normalization content
// fingerprint has been seen before in this run, recording it otherwise.
// Always false when file deduplication is disabled; nothing is tracked
// in that case.
func (e *Enforcer) IsDuplicateFile(record FileRecord) bool {
	if !e.cfg.DeduplicateFiles {
		return false
	}
	if _, seen := e.fileFingerprints[record.Fingerprint]; seen {
		return true
	}
	e.fileFingerprints[record.Fingerprint] = struct{}{}
	return false
}

// PassesContentGates reports whether the post-preprocessing record
// satisfies the configured character and line bounds. Maxima of 0 are
// unbounded.
func (e *Enforcer) PassesContentGates(record FileRecord) bool {
	charCount := utf8.RuneCountInString(record.Content)
	lineCount := countLines(record.Content)

	if charCount < e.cfg.MinCharacters {
		return false
	}
	if e.cfg.MaxCharacters > 0 && charCount > e.cfg.MaxCharacters {
		return false
	}
	if lineCount < e.cfg.MinLines {
		return false
	}
	if e.cfg.MaxLines > 0 && lineCount > e.cfg.MaxLines {
		return false
	}
	return true
}

// IsDuplicateChunk reports whether a chunk with byte-identical text has
// already been emitted in this run, keyed on a fingerprint of the chunk's
// own content rather than the parent file's. Always false when chunk
// deduplication is disabled.
func (e *Enforcer) IsDuplicateChunk(chunk Chunk) bool {
	if !e.cfg.DeduplicateChunks {
		return false
	}
	fp := Fingerprint([]byte(chunk.Content))
	if _, seen := e.chunkFingerprints[fp]; seen {
		return true
	}
	e.chunkFingerprints[fp] = struct{}{}
	return false
}

// countLines counts newline-separated segments: 0 for empty content,
// otherwise newline count plus one. Content with and without a trailing
// newline counts the same.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}
