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

	"github.com/bmatcuk/doublestar/v4"
)

// ciEntries are CI/CD configuration files or directories checked at a
// source's metadata root.
var ciEntries = []string{
	".github/workflows",
	".gitlab-ci.yml",
	"azure-pipelines.yml",
	"circle.yml",
	"Jenkinsfile",
	"appveyor.yml",
	"bitrise.yml",
}

// dependencyFiles maps recognized dependency manifest filenames to their
// ecosystem.
var dependencyFiles = map[string]string{
	"requirements.txt": "python",
	"pyproject.toml":   "python",
	"package.json":     "node",
	"Cargo.toml":       "rust",
	"go.mod":           "go",
	"pom.xml":          "java",
	"build.gradle":     "java",
	"composer.json":    "php",
}

// SourceMetadata is the per-source inventory persisted alongside the
// dataset.
type SourceMetadata struct {
	Name                string            `json:"name"`
	Kind                string            `json:"kind"`
	Origin              string            `json:"origin"`
	Path                string            `json:"path"`
	DependencyManifests map[string]string `json:"dependency_manifests"`
	CICD                map[string]string `json:"ci_cd"`
}

// CollectDependencyFiles returns a mapping of manifest paths (relative to
// root) to ecosystem name for every recognized manifest present.
func CollectDependencyFiles(root string) map[string]string {
	manifests := make(map[string]string)
	for name, ecosystem := range dependencyFiles {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			manifests[name] = ecosystem
		}
	}
	return manifests
}

// CollectCIConfigs finds CI/CD configuration present at root. Workflow
// directories are expanded to their individual .yml files.
func CollectCIConfigs(root string) map[string]string {
	ciFiles := make(map[string]string)
	for _, entry := range ciEntries {
		candidate := filepath.Join(root, entry)
		info, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		if info.IsDir() {
			matches, err := doublestar.Glob(os.DirFS(candidate), "**/*.yml")
			if err != nil {
				continue
			}
			for _, match := range matches {
				ciFiles[filepath.ToSlash(filepath.Join(entry, match))] = "workflow"
			}
		} else {
			ciFiles[filepath.ToSlash(entry)] = "workflow"
		}
	}
	return ciFiles
}

// WriteRepositoryMetadata inventories every materialized source with a
// readable metadata root and persists one combined document as
// repository_metadata.json in outputDir. Sources without a metadata root
// are skipped.
func WriteRepositoryMetadata(sources []MaterializedSource, outputDir string) error {
	entries := make([]SourceMetadata, 0, len(sources))
	for _, source := range sources {
		root := source.MetadataRoot
		if root == "" {
			continue
		}
		if _, err := os.Stat(root); err != nil {
			continue
		}
		entries = append(entries, SourceMetadata{
			Name:                source.Name,
			Kind:                source.Kind,
			Origin:              source.Origin,
			Path:                root,
			DependencyManifests: CollectDependencyFiles(root),
			CICD:                CollectCIConfigs(root),
		})
	}

	document := map[string]any{"sources": entries}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal repository metadata: %w", err)
	}
	path := filepath.Join(outputDir, "repository_metadata.json")
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write repository metadata: %w", err)
	}
	return nil
}
