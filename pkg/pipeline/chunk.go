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
	"iter"
	"strings"
)

// Chunk is one emitted training sample: a contiguous, possibly
// overlapping line window of a file. StartLine and EndLine are 1-based
// inclusive and refer to post-normalization line numbering. Fingerprint
// is the originating file's, not the chunk's own.
type Chunk struct {
	Content     string
	Language    string
	SourcePath  string
	StartLine   int
	EndLine     int
	Fingerprint string
}

// ChunkRecord yields consecutive line windows of target size from a
// post-gate record, each overlapping the previous by the configured
// number of lines. The last window may be shorter; an empty record yields
// nothing. The sequence is lazy, finite and single-pass.
//
// Overlap must be strictly smaller than the chunk size. That is enforced
// by Config.Validate, not re-checked here; invalid values bypassing
// validation make the window start non-monotonic.
func ChunkRecord(record FileRecord, cfg ChunkConfig) iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		lines := splitLines(record.Content)
		if len(lines) == 0 {
			return
		}

		start := 0
		for start < len(lines) {
			end := min(len(lines), start+cfg.TargetChunkSize)
			chunk := Chunk{
				Content:     strings.Join(lines[start:end], "\n"),
				Language:    record.Language,
				SourcePath:  record.RelativePath,
				StartLine:   start + 1,
				EndLine:     end,
				Fingerprint: record.Fingerprint,
			}
			if !yield(chunk) {
				return
			}
			if end == len(lines) {
				return
			}
			start = max(end-cfg.Overlap, 0)
		}
	}
}
