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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	cftest "github.com/kraklabs/corpusforge/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGitClient records clone invocations and fabricates a checkout by
// writing a single file into the destination.
type fakeGitClient struct {
	clones      []RemoteSpec
	sparseCalls [][]string
	cloneErr    error
}

func (f *fakeGitClient) Clone(_ context.Context, spec RemoteSpec, destination string) error {
	if f.cloneErr != nil {
		return f.cloneErr
	}
	f.clones = append(f.clones, spec)
	if err := os.MkdirAll(destination, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(destination, "main.go"), []byte("package main\n"), 0644)
}

func (f *fakeGitClient) SparseCheckout(_ context.Context, _ string, paths []string) error {
	f.sparseCalls = append(f.sparseCalls, paths)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// TestMaterialize_LocalCodeSource verifies local sources resolve to an
// absolute path without touching the git client.
func TestMaterialize_LocalCodeSource(t *testing.T) {
	root := cftest.WriteTree(t, map[string]string{"app.go": "package app\n"})
	git := &fakeGitClient{}
	m := NewMaterializer(git, discardLogger())

	cfg := DefaultConfig()
	cfg.CodeSources = []CodeSource{{Name: "local-code", Type: "local", Location: root}}

	sources, err := m.Materialize(context.Background(), &cfg, t.TempDir())
	require.NoError(t, err)
	require.Len(t, sources, 1)

	src := sources[0]
	assert.Equal(t, "local-code", src.Name)
	assert.Equal(t, KindCode, src.Kind)
	assert.Equal(t, "local", src.Origin)
	assert.True(t, filepath.IsAbs(src.Path))
	assert.Equal(t, src.Path, src.MetadataRoot)
	assert.Empty(t, git.clones)
}

// TestMaterialize_PrimaryRoot verifies the primary root is emitted first
// when it exists and silently omitted when it does not.
func TestMaterialize_PrimaryRoot(t *testing.T) {
	m := NewMaterializer(&fakeGitClient{}, discardLogger())

	t.Run("present", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Root = cftest.WriteTree(t, map[string]string{"main.go": "package main\n"})
		cfg.IncludePrimaryRoot = true

		sources, err := m.Materialize(context.Background(), &cfg, t.TempDir())
		require.NoError(t, err)
		require.Len(t, sources, 1)
		assert.Equal(t, "primary-root", sources[0].Name)
		assert.Equal(t, cfg.Root, sources[0].Path)
	})

	t.Run("missing", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Root = "/no/such/primary/root"
		cfg.IncludePrimaryRoot = true

		sources, err := m.Materialize(context.Background(), &cfg, t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, sources)
	})
}

// TestMaterialize_RemoteClone verifies a remote source is cloned into the
// workspace under its slug.
func TestMaterialize_RemoteClone(t *testing.T) {
	git := &fakeGitClient{}
	m := NewMaterializer(git, discardLogger())
	workspace := t.TempDir()

	cfg := DefaultConfig()
	cfg.IncludePrimaryRoot = false
	cfg.CodeSources = []CodeSource{{
		Name:     "Upstream Repo",
		Type:     "github",
		Location: "https://example.com/org/repo.git",
		Branch:   "main",
		Depth:    1,
	}}

	sources, err := m.Materialize(context.Background(), &cfg, workspace)
	require.NoError(t, err)
	require.Len(t, sources, 1)

	require.Len(t, git.clones, 1)
	assert.Equal(t, "https://example.com/org/repo.git", git.clones[0].Location)
	assert.Equal(t, "main", git.clones[0].Branch)
	assert.True(t, git.clones[0].Shallow)

	src := sources[0]
	assert.Equal(t, filepath.Join(workspace, "code", "upstream-repo"), src.Path)
	assert.Equal(t, "github", src.Origin)
}

// TestMaterialize_CloneReuse verifies a non-empty checkout short-circuits
// the clone.
func TestMaterialize_CloneReuse(t *testing.T) {
	git := &fakeGitClient{}
	m := NewMaterializer(git, discardLogger())
	workspace := t.TempDir()

	existing := filepath.Join(workspace, "code", "repo")
	require.NoError(t, os.MkdirAll(existing, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(existing, "old.go"), []byte("package old\n"), 0644))

	cfg := DefaultConfig()
	cfg.IncludePrimaryRoot = false
	cfg.CodeSources = []CodeSource{{Name: "repo", Type: "github", Location: "https://example.com/repo.git", Depth: 1}}

	sources, err := m.Materialize(context.Background(), &cfg, workspace)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, existing, sources[0].Path)
	assert.Empty(t, git.clones, "existing checkout must be reused")
}

// TestMaterialize_SparseCheckout verifies sparse paths are applied after a
// fresh clone.
func TestMaterialize_SparseCheckout(t *testing.T) {
	git := &fakeGitClient{}
	m := NewMaterializer(git, discardLogger())

	cfg := DefaultConfig()
	cfg.IncludePrimaryRoot = false
	cfg.CodeSources = []CodeSource{{
		Name:        "repo",
		Type:        "github",
		Location:    "https://example.com/repo.git",
		Depth:       1,
		SparsePaths: []string{"src", "docs"},
	}}

	_, err := m.Materialize(context.Background(), &cfg, t.TempDir())
	require.NoError(t, err)
	require.Len(t, git.sparseCalls, 1)
	assert.Equal(t, []string{"src", "docs"}, git.sparseCalls[0])
}

// TestMaterialize_CloneFailure verifies a failed clone aborts the run.
func TestMaterialize_CloneFailure(t *testing.T) {
	git := &fakeGitClient{cloneErr: fmt.Errorf("network unreachable")}
	m := NewMaterializer(git, discardLogger())

	cfg := DefaultConfig()
	cfg.IncludePrimaryRoot = false
	cfg.CodeSources = []CodeSource{{Name: "repo", Type: "github", Location: "https://example.com/repo.git", Depth: 1}}

	_, err := m.Materialize(context.Background(), &cfg, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network unreachable")
}

// TestMaterialize_CommandSource verifies command extraction produces a
// terminal-language source backed by the extracted artifact directory.
func TestMaterialize_CommandSource(t *testing.T) {
	root := cftest.WriteTree(t, map[string]string{
		"setup.sh": "$ make install\n$ make test\n",
	})
	m := NewMaterializer(&fakeGitClient{}, discardLogger())
	workspace := t.TempDir()

	cfg := DefaultConfig()
	cfg.IncludePrimaryRoot = false
	cfg.CommandSources = []CommandSource{{
		Name:            "ops",
		Type:            "local",
		Location:        root,
		Shells:          DefaultShells,
		IncludePatterns: []string{"*.sh"},
	}}

	sources, err := m.Materialize(context.Background(), &cfg, workspace)
	require.NoError(t, err)
	require.Len(t, sources, 1)

	src := sources[0]
	assert.Equal(t, "ops-commands", src.Name)
	assert.Equal(t, KindCommands, src.Kind)
	assert.Equal(t, []string{"terminal"}, src.Languages)
	assert.Equal(t, filepath.Join(workspace, "commands", "ops", "extracted"), src.Path)

	artifact := filepath.Join(src.Path, "ops.terminal")
	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Equal(t, "make install\nmake test", string(data))
}

// TestMaterialize_CommandSourceEmpty verifies a command source with no
// extractable commands is omitted rather than failing.
func TestMaterialize_CommandSourceEmpty(t *testing.T) {
	root := cftest.WriteTree(t, map[string]string{"notes.sh": "# nothing here\n"})
	m := NewMaterializer(&fakeGitClient{}, discardLogger())

	cfg := DefaultConfig()
	cfg.IncludePrimaryRoot = false
	cfg.CommandSources = []CommandSource{{
		Name:            "ops",
		Type:            "local",
		Location:        root,
		Shells:          DefaultShells,
		IncludePatterns: []string{"*.sh"},
	}}

	sources, err := m.Materialize(context.Background(), &cfg, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, sources)
}

// TestSlugify verifies slug derivation and the fallback.
func TestSlugify(t *testing.T) {
	tests := []struct {
		in       string
		fallback string
		want     string
	}{
		{"My Repo", "source", "my-repo"},
		{"https://example.com/org/repo.git", "source", "https---example-com-org-repo-git"},
		{"already-safe_name", "source", "already-safe_name"},
		{"  Trimmed  ", "source", "trimmed"},
		{"!!!", "source", "source"},
		{"", "commands", "commands"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in, tt.fallback), "Slugify(%q)", tt.in)
	}
}
