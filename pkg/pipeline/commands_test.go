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
	"os"
	"path/filepath"
	"strings"
	"testing"

	cftest "github.com/kraklabs/corpusforge/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommandSource() CommandSource {
	return CommandSource{
		Name:            "history",
		Shells:          DefaultShells,
		IncludePatterns: []string{"*.sh", "*.md", "*history*"},
		IgnorePatterns:  []string{"*.png"},
	}
}

// TestExtractCommands verifies prompt stripping, comment filtering and
// per-file deduplication.
func TestExtractCommands(t *testing.T) {
	content := strings.Join([]string{
		"$ ls -la",
		"# this is a comment",
		"// another comment",
		"",
		"> git   status",
		"$ ls -la",
		"bash",
		"PS> Get-ChildItem",
		"plain command --flag",
	}, "\n")

	root := cftest.WriteTree(t, map[string]string{"session.sh": content})

	commands := ExtractCommands(filepath.Join(root, "session.sh"), testCommandSource())
	assert.Equal(t, []string{
		"ls -la",
		"git status",
		"Get-ChildItem",
		"plain command --flag",
	}, commands)
}

// TestExtractCommands_CommentBeforePrompt verifies a leading "#" is a
// comment, never a root prompt.
func TestExtractCommands_CommentBeforePrompt(t *testing.T) {
	root := cftest.WriteTree(t, map[string]string{
		"log.sh": "# rm -rf /\n$ echo safe\n",
	})

	commands := ExtractCommands(filepath.Join(root, "log.sh"), testCommandSource())
	assert.Equal(t, []string{"echo safe"}, commands)
}

// TestExtractCommands_ShellAliases verifies bare shell echoes are
// dropped case-insensitively.
func TestExtractCommands_ShellAliases(t *testing.T) {
	root := cftest.WriteTree(t, map[string]string{
		"log.sh": "Bash\nzsh\n$ zsh -c 'true'\n",
	})

	commands := ExtractCommands(filepath.Join(root, "log.sh"), testCommandSource())
	assert.Equal(t, []string{"zsh -c 'true'"}, commands)
}

// TestExtractCommands_LineCap verifies the per-file cap.
func TestExtractCommands_LineCap(t *testing.T) {
	root := cftest.WriteTree(t, map[string]string{
		"log.sh": "$ cmd one\n$ cmd two\n$ cmd three\n",
	})

	src := testCommandSource()
	src.MaxLines = 2
	commands := ExtractCommands(filepath.Join(root, "log.sh"), src)
	assert.Equal(t, []string{"cmd one", "cmd two"}, commands)
}

// TestExtractCommands_Unreadable verifies a missing file yields nothing.
func TestExtractCommands_Unreadable(t *testing.T) {
	commands := ExtractCommands("/no/such/file.sh", testCommandSource())
	assert.Nil(t, commands)
}

// TestCollectCommandCorpus verifies extraction across a tree with
// global deduplication and artifact persistence.
func TestCollectCommandCorpus(t *testing.T) {
	root := cftest.WriteTree(t, map[string]string{
		"setup.sh":       "$ apt-get update\n$ apt-get install git\n",
		"docs/usage.md":  "$ apt-get update\n$ make build\n",
		"ignored.txt":    "$ never seen\n",
		"assets/pic.png": "$ never seen either\n",
	})
	dest := t.TempDir()

	artifact, err := CollectCommandCorpus(root, dest, testCommandSource(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, artifact)
	assert.Equal(t, filepath.Join(dest, "history.terminal"), artifact)

	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	assert.ElementsMatch(t, []string{"apt-get update", "apt-get install git", "make build"}, lines)
	assert.Equal(t, 3, len(lines), "duplicates across files collapse once")
}

// TestCollectCommandCorpus_Empty verifies no artifact is written when
// nothing survives.
func TestCollectCommandCorpus_Empty(t *testing.T) {
	root := cftest.WriteTree(t, map[string]string{
		"notes.sh": "# only comments\n# here\n",
	})
	dest := t.TempDir()

	artifact, err := CollectCommandCorpus(root, dest, testCommandSource(), nil)
	require.NoError(t, err)
	assert.Empty(t, artifact)

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// TestCollectCommandCorpus_MissingRoot verifies a missing source root is
// not an error.
func TestCollectCommandCorpus_MissingRoot(t *testing.T) {
	artifact, err := CollectCommandCorpus("/no/such/root", t.TempDir(), testCommandSource(), nil)
	require.NoError(t, err)
	assert.Empty(t, artifact)
}

// TestCollectCommandCorpus_GlobalCap verifies the cap applies across
// files.
func TestCollectCommandCorpus_GlobalCap(t *testing.T) {
	root := cftest.WriteTree(t, map[string]string{
		"a.sh": "$ one\n$ two\n",
		"b.sh": "$ three\n$ four\n",
	})

	src := testCommandSource()
	src.MaxLines = 3
	artifact, err := CollectCommandCorpus(root, t.TempDir(), src, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Len(t, strings.Split(string(data), "\n"), 3)
}

// TestMatchesAnyPattern verifies matching against both path and name.
func TestMatchesAnyPattern(t *testing.T) {
	tests := []struct {
		name     string
		rel      string
		base     string
		patterns []string
		want     bool
	}{
		{"name match", "docs/setup.sh", "setup.sh", []string{"*.sh"}, true},
		{"path match", "scripts/run.bash", "run.bash", []string{"scripts/*"}, true},
		{"case insensitive", "README.MD", "README.MD", []string{"*.md"}, true},
		{"no match", "main.go", "main.go", []string{"*.sh"}, false},
		{"substring glob", "zsh_history.txt", "zsh_history.txt", []string{"*history*"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesAnyPattern(tt.rel, tt.base, tt.patterns))
		})
	}
}

// TestStripPrompt verifies prefix precedence.
func TestStripPrompt(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$ ls", "ls"},
		{"> git log", "git log"},
		{"% whoami", "whoami"},
		{"PS> dir", "dir"},
		{"PS C:\\> dir", "C:\\> dir"},
		{"λ make", "make"},
		{"no prompt here", "no prompt here"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, stripPrompt(tt.in), "stripPrompt(%q)", tt.in)
	}
}
