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
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// LanguageUnknown is the tag assigned to files whose extension has no
// entry in the lookup table.
const LanguageUnknown = "unknown"

// languageExtensions maps lowercased file extensions to language tags.
var languageExtensions = map[string]string{
	".py":       "python",
	".pyw":      "python",
	".pyi":      "python",
	".js":       "javascript",
	".mjs":      "javascript",
	".cjs":      "javascript",
	".jsx":      "javascript",
	".ts":       "typescript",
	".tsx":      "typescript",
	".java":     "java",
	".kt":       "kotlin",
	".kts":      "kotlin",
	".scala":    "scala",
	".go":       "go",
	".rs":       "rust",
	".swift":    "swift",
	".m":        "objective-c",
	".mm":       "objective-c++",
	".cpp":      "cpp",
	".cxx":      "cpp",
	".cc":       "cpp",
	".hpp":      "cpp",
	".hxx":      "cpp",
	".h":        "c",
	".c":        "c",
	".cs":       "csharp",
	".rb":       "ruby",
	".php":      "php",
	".pl":       "perl",
	".pm":       "perl",
	".sh":       "shell",
	".bash":     "shell",
	".zsh":      "shell",
	".fish":     "shell",
	".ksh":      "shell",
	".ps1":      "powershell",
	".psm1":     "powershell",
	".cmd":      "cmd",
	".bat":      "cmd",
	".lua":      "lua",
	".r":        "r",
	".jl":       "julia",
	".dart":     "dart",
	".sql":      "sql",
	".yml":      "yaml",
	".yaml":     "yaml",
	".json":     "json",
	".toml":     "toml",
	".ini":      "ini",
	".cfg":      "ini",
	".md":       "markdown",
	".txt":      "text",
	".terminal": "terminal",
	".cmdlog":   "terminal",
}

// DetectLanguage classifies a file by its extension. Unmatched extensions
// map to LanguageUnknown rather than failing.
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := languageExtensions[ext]; ok {
		return lang
	}
	return LanguageUnknown
}

// textBytes marks byte values that may occur in text content: BEL, BS,
// TAB, LF, FF, CR, ESC and everything from 0x20 upward.
var textBytes = func() [256]bool {
	var ok [256]bool
	for _, b := range []byte{7, 8, 9, 10, 12, 13, 27} {
		ok[b] = true
	}
	for b := 0x20; b <= 0xff; b++ {
		ok[b] = true
	}
	return ok
}()

// IsBinary reports whether data looks like binary content: a NUL byte, or
// any byte outside the allowed control/printable set.
func IsBinary(data []byte) bool {
	for _, b := range data {
		if b == 0 || !textBytes[b] {
			return true
		}
	}
	return false
}

// Fingerprint returns the hex-encoded SHA-256 digest of data. It is the
// identity key for file- and chunk-level deduplication; for files it is
// computed on raw bytes before any decoding or normalization.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// decodeText decodes raw bytes as UTF-8, degrading to a Latin-1 view where
// every byte maps to the code point of the same value. Latin-1 cannot fail
// over arbitrary bytes, so the fallback always succeeds.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
