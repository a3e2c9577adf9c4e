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
	"strings"

	"gopkg.in/yaml.v3"
)

// CodeSource describes an external code source to materialize.
// Type is either "local" (Location is a directory on disk) or a remote
// type such as "github"/"git" (Location is a clone URL).
type CodeSource struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Location    string   `yaml:"location"`
	Branch      string   `yaml:"branch"`
	Languages   []string `yaml:"languages"`
	Shallow     *bool    `yaml:"shallow"`
	Depth       int      `yaml:"depth"`
	SparsePaths []string `yaml:"sparse_paths"`
}

// CommandSource describes where terminal command corpora originate.
type CommandSource struct {
	Name            string   `yaml:"name"`
	Type            string   `yaml:"type"`
	Location        string   `yaml:"location"`
	Branch          string   `yaml:"branch"`
	Shells          []string `yaml:"shells"`
	IncludePatterns []string `yaml:"include_patterns"`
	IgnorePatterns  []string `yaml:"ignore_patterns"`
	MaxLines        int      `yaml:"max_lines"`
	Shallow         *bool    `yaml:"shallow"`
	Depth           int      `yaml:"depth"`
	SparsePaths     []string `yaml:"sparse_paths"`
}

// IngestionConfig controls which files are ingested from a source tree.
type IngestionConfig struct {
	IncludeExtensions []string `yaml:"include_extensions"`
	ExcludeDirs       []string `yaml:"exclude_dirs"`
	MaxFileSizeMB     int      `yaml:"max_file_size_mb"`
	FollowSymlinks    bool     `yaml:"follow_symlinks"`
}

// PreprocessConfig controls content normalization.
// MaxLineLength of 0 disables per-line truncation.
type PreprocessConfig struct {
	NormalizeWhitespace bool `yaml:"normalize_whitespace"`
	StripEmptyLines     bool `yaml:"strip_empty_lines"`
	MaxLineLength       int  `yaml:"max_line_length"`
}

// ChunkConfig controls chunk generation.
type ChunkConfig struct {
	TargetChunkSize int `yaml:"target_chunk_size"`
	Overlap         int `yaml:"overlap"`
}

// DatasetConfig controls dataset writing and the train/eval split.
type DatasetConfig struct {
	TrainRatio float64 `yaml:"train_ratio"`
	Seed       int64   `yaml:"seed"`
	Compress   bool    `yaml:"compress"`
}

// QualityConfig holds quality gates applied after preprocessing and before
// chunking. Maximum values of 0 mean unbounded.
type QualityConfig struct {
	MinCharacters     int  `yaml:"min_characters"`
	MaxCharacters     int  `yaml:"max_characters"`
	MinLines          int  `yaml:"min_lines"`
	MaxLines          int  `yaml:"max_lines"`
	DeduplicateFiles  bool `yaml:"deduplicate_files"`
	DeduplicateChunks bool `yaml:"deduplicate_chunks"`
}

// Config is the top level pipeline configuration.
type Config struct {
	Root               string           `yaml:"root"`
	OutputDir          string           `yaml:"output_dir"`
	Workspace          string           `yaml:"workspace"`
	IncludePrimaryRoot bool             `yaml:"include_primary_root"`
	Ingestion          IngestionConfig  `yaml:"ingestion"`
	Preprocess         PreprocessConfig `yaml:"preprocess"`
	Chunk              ChunkConfig      `yaml:"chunk"`
	Dataset            DatasetConfig    `yaml:"dataset"`
	Quality            QualityConfig    `yaml:"quality"`
	CodeSources        []CodeSource     `yaml:"code_sources"`
	CommandSources     []CommandSource  `yaml:"command_sources"`
}

// DefaultShells lists shell names whose bare echoes are stripped from
// command corpora.
var DefaultShells = []string{
	"bash", "zsh", "fish", "powershell", "cmd", "sh",
	"ksh", "csh", "pwsh", "nushell", "xonsh", "busybox",
}

// DefaultIncludePatterns matches files likely to contain terminal commands.
var DefaultIncludePatterns = []string{
	"*.sh", "*.bash", "*.zsh", "*.fish", "*.ps1", "*.psm1",
	"*.cmd", "*.bat", "*.ksh", "*.csh",
	"*.history", "*commands.txt", "*history.txt", "*.md",
}

// DefaultIgnorePatterns excludes binary assets from command extraction.
var DefaultIgnorePatterns = []string{"*.png", "*.jpg", "*.jpeg", "*.gif", "*.pdf"}

// DefaultConfig returns a Config populated with the documented defaults.
// Loading a config document overlays onto these values, so absent fields
// keep their defaults.
func DefaultConfig() Config {
	return Config{
		IncludePrimaryRoot: true,
		Ingestion: IngestionConfig{
			IncludeExtensions: []string{
				".py", ".js", ".ts", ".tsx", ".java", ".go", ".rs",
				".cpp", ".c", ".cs", ".rb", ".php", ".swift", ".m", ".mm",
				".pl", ".pm", ".sh", ".ps1", ".psm1", ".cmd", ".bat",
				".scala", ".kt", ".dart", ".lua", ".r", ".jl",
				".yaml", ".yml", ".json", ".toml", ".ini", ".cfg",
				".md", ".txt", ".terminal", ".cmdlog",
			},
			ExcludeDirs:   []string{".git", "node_modules", "vendor", "dist", "build", "__pycache__"},
			MaxFileSizeMB: 5,
		},
		Preprocess: PreprocessConfig{
			NormalizeWhitespace: true,
			StripEmptyLines:     true,
			MaxLineLength:       2000,
		},
		Chunk: ChunkConfig{
			TargetChunkSize: 2048,
			Overlap:         200,
		},
		Dataset: DatasetConfig{
			TrainRatio: 0.9,
			Seed:       13,
		},
		Quality: QualityConfig{
			DeduplicateFiles:  true,
			DeduplicateChunks: true,
		},
	}
}

// LoadConfig reads a configuration document from path. The document may be
// JSON or YAML; YAML is a superset of JSON so a single decode path covers
// both. Unset fields take the documented defaults. A missing root defaults
// to the directory containing the document.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// "output" is an accepted alias for "output_dir"; the spelled-out
	// key wins when both are present.
	if cfg.OutputDir == "" {
		var alias struct {
			Output string `yaml:"output"`
		}
		if err := yaml.Unmarshal(data, &alias); err == nil {
			cfg.OutputDir = alias.Output
		}
	}

	if cfg.Root == "" {
		cfg.Root = filepath.Dir(path)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "dataset"
	}
	cfg.normalize()
	return &cfg, nil
}

// DiscoverConfig returns the first existing path from candidates, or ""
// when none exists.
func DiscoverConfig(candidates []string) string {
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// normalize resolves paths to absolute form, lowercases source types and
// language filters, and fills per-source defaults the way the config
// document cannot (list entries have no prefilled baseline).
func (c *Config) normalize() {
	c.Root = absPath(c.Root)
	c.OutputDir = absPath(c.OutputDir)
	if c.Workspace != "" {
		c.Workspace = absPath(c.Workspace)
	}

	for i := range c.CodeSources {
		src := &c.CodeSources[i]
		if src.Type == "" {
			src.Type = "github"
		}
		src.Type = strings.ToLower(src.Type)
		if src.Name == "" {
			src.Name = src.Location
		}
		if src.Depth == 0 {
			src.Depth = 1
		}
		for j, lang := range src.Languages {
			src.Languages[j] = strings.ToLower(lang)
		}
		for j, p := range src.SparsePaths {
			src.SparsePaths[j] = strings.TrimSpace(p)
		}
	}

	for i := range c.CommandSources {
		src := &c.CommandSources[i]
		if src.Type == "" {
			src.Type = "github"
		}
		src.Type = strings.ToLower(src.Type)
		if src.Name == "" {
			src.Name = src.Location
		}
		if src.Depth == 0 {
			src.Depth = 1
		}
		if len(src.Shells) == 0 {
			src.Shells = append([]string(nil), DefaultShells...)
		}
		if len(src.IncludePatterns) == 0 {
			src.IncludePatterns = append([]string(nil), DefaultIncludePatterns...)
		}
		if len(src.IgnorePatterns) == 0 {
			src.IgnorePatterns = append([]string(nil), DefaultIgnorePatterns...)
		}
		for j, s := range src.Shells {
			src.Shells[j] = strings.ToLower(s)
		}
		for j, p := range src.IncludePatterns {
			src.IncludePatterns[j] = strings.ToLower(p)
		}
		for j, p := range src.IgnorePatterns {
			src.IgnorePatterns[j] = strings.ToLower(p)
		}
	}
}

// EffectiveWorkspace returns the scratch directory for remote checkouts:
// the configured workspace, or a subdirectory of the output directory.
func (c *Config) EffectiveWorkspace() string {
	if c.Workspace != "" {
		return c.Workspace
	}
	return filepath.Join(c.OutputDir, "_workspace")
}

// Validate checks configuration values eagerly, before any I/O.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root must be set")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must be set")
	}
	if c.Dataset.TrainRatio <= 0 || c.Dataset.TrainRatio >= 1 {
		return fmt.Errorf("train_ratio must be between 0 and 1")
	}
	if c.Chunk.TargetChunkSize <= 0 {
		return fmt.Errorf("target_chunk_size must be positive")
	}
	if c.Chunk.Overlap < 0 {
		return fmt.Errorf("overlap cannot be negative")
	}
	if c.Chunk.Overlap >= c.Chunk.TargetChunkSize {
		return fmt.Errorf("overlap must be smaller than target chunk size")
	}
	if c.Ingestion.MaxFileSizeMB <= 0 {
		return fmt.Errorf("max_file_size_mb must be positive")
	}
	if c.Quality.MaxCharacters < 0 {
		return fmt.Errorf("max_characters must be positive when provided")
	}
	if c.Quality.MaxLines < 0 {
		return fmt.Errorf("max_lines must be positive when provided")
	}
	if c.Quality.MaxCharacters > 0 && c.Quality.MaxCharacters < c.Quality.MinCharacters {
		return fmt.Errorf("max_characters must be greater than min_characters")
	}
	if c.Quality.MaxLines > 0 && c.Quality.MaxLines < c.Quality.MinLines {
		return fmt.Errorf("max_lines must be greater than min_lines")
	}
	for _, src := range c.CodeSources {
		if src.Location == "" {
			return fmt.Errorf("code source %q: location cannot be empty", src.Name)
		}
	}
	for _, src := range c.CommandSources {
		if src.Location == "" {
			return fmt.Errorf("command source %q: location cannot be empty", src.Name)
		}
	}
	if c.Workspace != "" && c.Workspace == c.OutputDir {
		return fmt.Errorf("workspace must differ from output directory")
	}
	return nil
}

// Dump persists the effective configuration as pretty-printed JSON with
// sorted keys. Null-valued top-level fields are omitted.
func (c *Config) Dump(path string) error {
	doc := map[string]any{
		"root":                 c.Root,
		"output_dir":           c.OutputDir,
		"include_primary_root": c.IncludePrimaryRoot,
		"ingestion":            c.Ingestion.asMap(),
		"preprocess":           c.Preprocess.asMap(),
		"chunk":                map[string]any{"target_chunk_size": c.Chunk.TargetChunkSize, "overlap": c.Chunk.Overlap},
		"dataset":              map[string]any{"train_ratio": c.Dataset.TrainRatio, "seed": c.Dataset.Seed, "compress": c.Dataset.Compress},
		"quality":              c.Quality.asMap(),
		"code_sources":         codeSourceMaps(c.CodeSources),
		"command_sources":      commandSourceMaps(c.CommandSources),
	}
	if c.Workspace != "" {
		doc["workspace"] = c.Workspace
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write config dump: %w", err)
	}
	return nil
}

func (c IngestionConfig) asMap() map[string]any {
	return map[string]any{
		"include_extensions": emptyList(c.IncludeExtensions),
		"exclude_dirs":       emptyList(c.ExcludeDirs),
		"max_file_size_mb":   c.MaxFileSizeMB,
		"follow_symlinks":    c.FollowSymlinks,
	}
}

func (c PreprocessConfig) asMap() map[string]any {
	return map[string]any{
		"normalize_whitespace": c.NormalizeWhitespace,
		"strip_empty_lines":    c.StripEmptyLines,
		"max_line_length":      c.MaxLineLength,
	}
}

func (c QualityConfig) asMap() map[string]any {
	return map[string]any{
		"min_characters":     c.MinCharacters,
		"max_characters":     c.MaxCharacters,
		"min_lines":          c.MinLines,
		"max_lines":          c.MaxLines,
		"deduplicate_files":  c.DeduplicateFiles,
		"deduplicate_chunks": c.DeduplicateChunks,
	}
}

func codeSourceMaps(sources []CodeSource) []map[string]any {
	out := make([]map[string]any, 0, len(sources))
	for _, src := range sources {
		out = append(out, map[string]any{
			"name":         src.Name,
			"type":         src.Type,
			"location":     src.Location,
			"branch":       src.Branch,
			"languages":    emptyList(src.Languages),
			"shallow":      src.shallow(),
			"depth":        src.Depth,
			"sparse_paths": emptyList(src.SparsePaths),
		})
	}
	return out
}

func commandSourceMaps(sources []CommandSource) []map[string]any {
	out := make([]map[string]any, 0, len(sources))
	for _, src := range sources {
		out = append(out, map[string]any{
			"name":             src.Name,
			"type":             src.Type,
			"location":         src.Location,
			"branch":           src.Branch,
			"shells":           emptyList(src.Shells),
			"include_patterns": emptyList(src.IncludePatterns),
			"ignore_patterns":  emptyList(src.IgnorePatterns),
			"max_lines":        src.MaxLines,
			"shallow":          src.shallow(),
			"depth":            src.Depth,
			"sparse_paths":     emptyList(src.SparsePaths),
		})
	}
	return out
}

// emptyList keeps JSON output as [] instead of null for nil slices.
func emptyList(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func (s CodeSource) shallow() bool {
	return s.Shallow == nil || *s.Shallow
}

func (s CommandSource) shallow() bool {
	return s.Shallow == nil || *s.Shallow
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
