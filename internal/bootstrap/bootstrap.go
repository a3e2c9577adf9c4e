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

package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// ProjectConfig holds configuration for scaffolding a dataset project.
type ProjectConfig struct {
	// Dir is the project directory. Defaults to the current directory.
	Dir string

	// ConfigName is the configuration file name to create.
	// Defaults to "dataset.yaml".
	ConfigName string

	// OutputDir is the output directory recorded in the starter config.
	// Defaults to "dataset".
	OutputDir string

	// Force overwrites an existing configuration file.
	Force bool
}

// ProjectInfo holds information about a scaffolded project.
type ProjectInfo struct {
	ConfigPath string
	OutputDir  string
	Created    bool
}

// starterConfig is the commented configuration written by InitProject.
// Every value shown matches the pipeline defaults, so the file works
// unedited against the current directory.
const starterConfig = `# corpusforge pipeline configuration.
# All fields are optional; absent fields take the documented defaults.

# root: .
output_dir: %s

# Include the directory containing this file as a source.
include_primary_root: true

ingestion:
  max_file_size_mb: 5
  exclude_dirs: [.git, node_modules, vendor, dist, build, __pycache__]

preprocess:
  normalize_whitespace: true
  strip_empty_lines: true
  max_line_length: 2000

chunk:
  target_chunk_size: 2048
  overlap: 200

dataset:
  train_ratio: 0.9
  seed: 13
  compress: false

quality:
  deduplicate_files: true
  deduplicate_chunks: true

# Remote code repositories to clone and ingest.
# code_sources:
#   - name: example
#     type: github
#     location: https://github.com/acme/example.git
#     branch: main
#     languages: [go, python]

# Repositories holding terminal session logs or shell scripts.
# command_sources:
#   - name: dotfiles
#     type: github
#     location: https://github.com/acme/dotfiles.git
`

// InitProject scaffolds a dataset project: it creates the project
// directory and writes a starter configuration file. The function is
// idempotent; an existing configuration is left alone unless Force is
// set.
func InitProject(config ProjectConfig, logger *slog.Logger) (*ProjectInfo, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if config.Dir == "" {
		config.Dir = "."
	}
	if config.ConfigName == "" {
		config.ConfigName = "dataset.yaml"
	}
	if config.OutputDir == "" {
		config.OutputDir = "dataset"
	}

	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}

	configPath := filepath.Join(config.Dir, config.ConfigName)
	info := &ProjectInfo{ConfigPath: configPath, OutputDir: config.OutputDir}

	if _, err := os.Stat(configPath); err == nil && !config.Force {
		logger.Info("bootstrap.project.exists", "config", configPath)
		return info, nil
	}

	logger.Info("bootstrap.project.init.start", "config", configPath, "output_dir", config.OutputDir)

	content := fmt.Sprintf(starterConfig, config.OutputDir)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("write starter config: %w", err)
	}
	info.Created = true

	logger.Info("bootstrap.project.init.success", "config", configPath)
	return info, nil
}

// FindConfig looks for a configuration document in dir, trying the
// conventional names in order. Returns "" when none exists.
func FindConfig(dir string) string {
	for _, name := range []string{"dataset.yaml", "dataset.yml", "dataset.json", "corpusforge.yaml"} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
