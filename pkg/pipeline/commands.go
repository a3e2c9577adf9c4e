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
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// promptPrefixes are tried in order; the first match wins. The comment
// check runs before prompt stripping, so a leading "#" is a comment, not
// a root prompt.
var promptPrefixes = []string{
	"$",
	"#",
	"%",
	">",
	"PS ",
	"PS>",
	`PS C:\`,
	`C:\`,
	"λ",
}

var commentPrefixes = []string{"#", "//", "rem ", "REM ", "::", ";"}

// ExtractCommands pulls command-like lines out of a single file.
//
// Lines are trimmed, comment lines and blank lines dropped, shell prompt
// prefixes stripped, internal whitespace runs collapsed, and bare shell
// name echoes removed. Deduplication is first-seen-wins within the file.
// Unreadable files yield nothing.
func ExtractCommands(path string, src CommandSource) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	text := decodeText(data)

	aliases := make(map[string]struct{}, len(src.Shells))
	for _, shell := range src.Shells {
		aliases[strings.ToLower(shell)] = struct{}{}
	}

	var commands []string
	seen := make(map[string]struct{})
	for _, rawLine := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(rawLine)
		if stripped == "" {
			continue
		}
		if isCommentLine(stripped) {
			continue
		}
		cleaned := stripPrompt(stripped)
		if cleaned == "" {
			continue
		}
		normalized := strings.Join(strings.Fields(cleaned), " ")
		if _, isAlias := aliases[strings.ToLower(normalized)]; isAlias {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		commands = append(commands, normalized)
		if src.MaxLines > 0 && len(commands) >= src.MaxLines {
			break
		}
	}
	return commands
}

// CollectCommandCorpus walks sourceRoot, extracts commands from every
// file matching the include globs (and no exclude glob), deduplicates
// them globally across files and persists the result as one newline-
// joined artifact in destination. Returns the artifact path, or "" when
// no commands survived anywhere in the tree.
//
// The configured line cap applies to the globally deduplicated count;
// partial results up to the cap are kept.
func CollectCommandCorpus(sourceRoot, destination string, src CommandSource, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(sourceRoot); err != nil {
		return "", nil
	}

	var aggregated []string
	seenGlobal := make(map[string]struct{})

	_ = filepath.WalkDir(sourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(sourceRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !matchesAnyPattern(rel, d.Name(), src.IncludePatterns) {
			return nil
		}
		if matchesAnyPattern(rel, d.Name(), src.IgnorePatterns) {
			return nil
		}
		for _, command := range ExtractCommands(path, src) {
			if _, dup := seenGlobal[command]; dup {
				continue
			}
			seenGlobal[command] = struct{}{}
			aggregated = append(aggregated, command)
			if src.MaxLines > 0 && len(aggregated) >= src.MaxLines {
				break
			}
		}
		if src.MaxLines > 0 && len(aggregated) >= src.MaxLines {
			return fs.SkipAll
		}
		return nil
	})

	if len(aggregated) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(destination, 0755); err != nil {
		return "", fmt.Errorf("create extraction dir: %w", err)
	}
	artifact := filepath.Join(destination, Slugify(src.Name, "commands")+".terminal")
	content := strings.Join(aggregated, "\n")
	if err := os.WriteFile(artifact, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write command corpus: %w", err)
	}

	logger.Info("source.commands.extracted", "name", src.Name, "commands", len(aggregated), "artifact", artifact)
	return artifact, nil
}

// matchesAnyPattern matches case-insensitively against both the full
// relative path and the bare filename.
func matchesAnyPattern(relPath, name string, patterns []string) bool {
	relPath = strings.ToLower(relPath)
	name = strings.ToLower(name)
	for _, pattern := range patterns {
		pattern = strings.ToLower(pattern)
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func isCommentLine(line string) bool {
	lowered := strings.ToLower(line)
	for _, prefix := range commentPrefixes {
		if strings.HasPrefix(lowered, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

// stripPrompt removes a known shell/interpreter prompt prefix, trying the
// listed prefixes in order.
func stripPrompt(line string) string {
	for _, prefix := range promptPrefixes {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimLeft(line[len(prefix):], " \t")
		}
	}
	return line
}
