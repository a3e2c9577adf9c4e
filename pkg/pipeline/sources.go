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
	"strings"
)

// Source kinds.
const (
	KindCode     = "code"
	KindCommands = "commands"
)

// MaterializedSource is the resolved, filesystem-backed form of a source
// descriptor. Created once per run by the Materializer; read-only
// afterward. Path is guaranteed to exist. MetadataRoot points at the tree
// used later for manifest discovery and may be empty.
type MaterializedSource struct {
	Name         string
	Kind         string
	Path         string
	Origin       string
	Languages    []string
	MetadataRoot string
}

// Materializer resolves source descriptors into readable directories,
// cloning remote repositories into the workspace as needed.
type Materializer struct {
	git    GitClient
	logger *slog.Logger
}

// NewMaterializer creates a materializer. A nil git client gets the
// exec-backed default.
func NewMaterializer(git GitClient, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	if git == nil {
		git = NewExecGitClient(logger)
	}
	return &Materializer{git: git, logger: logger}
}

// Materialize resolves all sources declared in cfg into workspace and
// returns them in declaration order, primary root first when enabled.
//
// A missing primary root is silently omitted; every other materialization
// failure is fatal for the whole run. A command source whose extraction
// yields no commands is omitted, not an error.
func (m *Materializer) Materialize(ctx context.Context, cfg *Config, workspace string) ([]MaterializedSource, error) {
	if err := os.MkdirAll(workspace, 0755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	var resolved []MaterializedSource

	if cfg.IncludePrimaryRoot {
		if _, err := os.Stat(cfg.Root); err == nil {
			resolved = append(resolved, MaterializedSource{
				Name:         "primary-root",
				Kind:         KindCode,
				Path:         cfg.Root,
				Origin:       "local",
				MetadataRoot: cfg.Root,
			})
		} else {
			m.logger.Warn("source.primary_root.missing", "path", cfg.Root)
		}
	}

	for _, src := range cfg.CodeSources {
		materialized, err := m.materializeCode(ctx, src, workspace)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, materialized)
	}

	for _, src := range cfg.CommandSources {
		materialized, err := m.materializeCommands(ctx, src, workspace)
		if err != nil {
			return nil, err
		}
		if materialized != nil {
			resolved = append(resolved, *materialized)
		}
	}

	return resolved, nil
}

func (m *Materializer) materializeCode(ctx context.Context, src CodeSource, workspace string) (MaterializedSource, error) {
	var path string
	if src.Type == "local" {
		path = absPath(src.Location)
	} else {
		slug := Slugify(firstNonEmpty(src.Name, src.Location), "source")
		destination := filepath.Join(workspace, "code", slug)
		spec := RemoteSpec{Location: src.Location, Branch: src.Branch, Shallow: src.shallow(), Depth: src.Depth}
		if err := m.cloneIfNeeded(ctx, spec, destination, src.SparsePaths); err != nil {
			return MaterializedSource{}, err
		}
		path = destination
	}

	return MaterializedSource{
		Name:         src.Name,
		Kind:         KindCode,
		Path:         path,
		Origin:       originOf(src.Type),
		Languages:    src.Languages,
		MetadataRoot: path,
	}, nil
}

func (m *Materializer) materializeCommands(ctx context.Context, src CommandSource, workspace string) (*MaterializedSource, error) {
	var sourceRoot string
	if src.Type == "local" {
		sourceRoot = absPath(src.Location)
	} else {
		slug := Slugify(firstNonEmpty(src.Name, src.Location), "commands")
		destination := filepath.Join(workspace, "commands", slug, "repository")
		spec := RemoteSpec{Location: src.Location, Branch: src.Branch, Shallow: src.shallow(), Depth: src.Depth}
		if err := m.cloneIfNeeded(ctx, spec, destination, src.SparsePaths); err != nil {
			return nil, err
		}
		sourceRoot = destination
	}

	extractedDir := filepath.Join(workspace, "commands", Slugify(src.Name, "commands"), "extracted")
	artifact, err := CollectCommandCorpus(sourceRoot, extractedDir, src, m.logger)
	if err != nil {
		return nil, err
	}
	if artifact == "" {
		m.logger.Info("source.commands.empty", "name", src.Name, "root", sourceRoot)
		return nil, nil
	}

	return &MaterializedSource{
		Name:         src.Name + "-commands",
		Kind:         KindCommands,
		Path:         extractedDir,
		Origin:       originOf(src.Type),
		Languages:    []string{"terminal"},
		MetadataRoot: sourceRoot,
	}, nil
}

// cloneIfNeeded clones into destination unless it already exists and is
// non-empty, in which case the checkout is reused as-is: idempotent
// re-runs never re-fetch and never check for drift.
func (m *Materializer) cloneIfNeeded(ctx context.Context, spec RemoteSpec, destination string, sparsePaths []string) error {
	if dirNonEmpty(destination) {
		m.logger.Info("source.clone.reuse", "destination", destination)
		recordCloneReused()
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return fmt.Errorf("create clone parent: %w", err)
	}
	if err := m.git.Clone(ctx, spec, destination); err != nil {
		return err
	}
	recordClonePerformed()
	if len(sparsePaths) > 0 {
		if err := m.git.SparseCheckout(ctx, destination, sparsePaths); err != nil {
			return fmt.Errorf("configure sparse checkout for %s: %w", spec.Location, err)
		}
	}
	return nil
}

// Slugify derives a filesystem-safe slug: lowercased, with any character
// that is not alphanumeric, hyphen or underscore replaced by a hyphen and
// leading/trailing hyphens trimmed. Falls back when nothing survives.
func Slugify(value, fallback string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return fallback
	}
	return slug
}

func originOf(sourceType string) string {
	if sourceType == "local" {
		return "local"
	}
	return sourceType
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func dirNonEmpty(path string) bool {
	entries, err := os.ReadDir(path)
	return err == nil && len(entries) > 0
}
