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
	"regexp"
	"strings"
)

var (
	// Runs of tab, vertical tab, form feed and carriage return collapse
	// to a single space. Newlines are untouched.
	whitespaceRuns = regexp.MustCompile(`[\t\v\f\r]+`)

	// Three or more consecutive newlines collapse to exactly two.
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// NormalizeContent applies text normalization in a fixed order: whitespace
// collapsing, empty-line stripping, then per-line truncation operating on
// the already-normalized line boundaries.
func NormalizeContent(content string, cfg PreprocessConfig) string {
	if cfg.NormalizeWhitespace {
		content = whitespaceRuns.ReplaceAllString(content, " ")
	}
	if cfg.StripEmptyLines {
		content = strings.TrimSpace(content)
		content = multiNewlines.ReplaceAllString(content, "\n\n")
	}
	if cfg.MaxLineLength > 0 {
		content = truncateLines(content, cfg.MaxLineLength)
	}
	return content
}

// truncateLines hard-truncates every line independently to maxLength
// characters (code points, not bytes). Rejoining drops a trailing newline,
// matching splitLines.
func truncateLines(content string, maxLength int) string {
	lines := splitLines(content)
	for i, line := range lines {
		runes := []rune(line)
		if len(runes) > maxLength {
			lines[i] = string(runes[:maxLength])
		}
	}
	return strings.Join(lines, "\n")
}

// splitLines splits content on newlines without producing a phantom empty
// segment for trailing-newline content.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// PreprocessRecord returns a copy of record with normalized content.
// All other fields, including the fingerprint, are carried through
// unchanged: identity stays pre-normalization.
func PreprocessRecord(record FileRecord, cfg PreprocessConfig) FileRecord {
	record.Content = NormalizeContent(record.Content, cfg)
	return record
}
