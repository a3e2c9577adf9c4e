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
	"time"

	"github.com/kraklabs/corpusforge/pkg/dataset"
)

// Result summarizes one completed pipeline run.
type Result struct {
	Stats     *Stats
	TrainPath string
	EvalPath  string
	StatsPath string
	OutputDir string
}

// Runner executes the full assembly pipeline. The zero value is not
// usable; construct with NewRunner.
type Runner struct {
	materializer *Materializer
	logger       *slog.Logger
}

// NewRunner creates a pipeline runner. A nil git client gets the
// exec-backed default.
func NewRunner(git GitClient, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		materializer: NewMaterializer(git, logger),
		logger:       logger,
	}
}

// Run executes the pipeline end to end: validate, materialize sources,
// stream files through filtering and chunking into the split writer, then
// persist statistics, repository metadata and the effective
// configuration.
//
// Files stream one at a time; no source tree is ever held in memory. A
// write failure or context cancellation aborts the run; per-file read
// problems never do.
func (r *Runner) Run(ctx context.Context, cfg *Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	runStart := time.Now()
	defer func() { observeTotalSeconds(time.Since(runStart).Seconds()) }()

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	workspace := cfg.EffectiveWorkspace()
	r.logger.Info("pipeline.start", "root", cfg.Root, "output", cfg.OutputDir, "workspace", workspace)

	materializeStart := time.Now()
	sources, err := r.materializer.Materialize(ctx, cfg, workspace)
	if err != nil {
		return nil, fmt.Errorf("materialize sources: %w", err)
	}
	observeMaterializeSeconds(time.Since(materializeStart).Seconds())

	stats := NewStats()
	enforcer := NewEnforcer(cfg.Quality)

	writer, err := dataset.NewWriter(cfg.OutputDir, dataset.Options{
		TrainRatio: cfg.Dataset.TrainRatio,
		Seed:       cfg.Dataset.Seed,
		Compress:   cfg.Dataset.Compress,
	})
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	assembleStart := time.Now()
	for _, source := range sources {
		if err := r.assembleSource(ctx, cfg, source, enforcer, writer, stats); err != nil {
			return nil, err
		}
	}
	observeAssembleSeconds(time.Since(assembleStart).Seconds())

	if err := writer.Close(); err != nil {
		return nil, err
	}

	if err := WriteRepositoryMetadata(sources, cfg.OutputDir); err != nil {
		return nil, err
	}
	if err := cfg.Dump(filepath.Join(cfg.OutputDir, "pipeline_config.json")); err != nil {
		return nil, err
	}
	statsPath, err := stats.Write(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	train, eval := writer.Counts()
	r.logger.Info("pipeline.complete",
		"summary", stats.Summary(),
		"train_records", train,
		"eval_records", eval,
		"duration", time.Since(runStart).Round(time.Millisecond).String(),
	)

	return &Result{
		Stats:     stats,
		TrainPath: writer.TrainPath(),
		EvalPath:  writer.EvalPath(),
		StatsPath: statsPath,
		OutputDir: cfg.OutputDir,
	}, nil
}

// assembleSource streams one materialized source through the filter and
// chunk stages into the writer.
//
// Stage order is load-bearing: the per-source language filter runs before
// any counting, so filtered-out files never appear in the statistics.
// File deduplication keys on the pre-normalization fingerprint, content
// gates run after normalization, and chunk deduplication keys on each
// chunk's own text.
func (r *Runner) assembleSource(ctx context.Context, cfg *Config, source MaterializedSource, enforcer *Enforcer, writer *dataset.Writer, stats *Stats) error {
	languages := make(map[string]struct{}, len(source.Languages))
	for _, lang := range source.Languages {
		languages[strings.ToLower(lang)] = struct{}{}
	}

	r.logger.Info("source.assemble.start", "name", source.Name, "kind", source.Kind, "path", source.Path)

	for record := range ScanFiles(source.Path, cfg.Ingestion, r.logger) {
		if err := ctx.Err(); err != nil {
			return err
		}

		if len(languages) > 0 {
			if _, ok := languages[record.Language]; !ok {
				continue
			}
		}

		stats.FilesScanned++
		stats.RecordSource(source.Name)
		recordFileScanned()

		if enforcer.IsDuplicateFile(record) {
			stats.FilesDeduplicated++
			recordFileDeduplicated()
			continue
		}

		record = PreprocessRecord(record, cfg.Preprocess)

		if !enforcer.PassesContentGates(record) {
			stats.FilesFiltered++
			recordFileFiltered()
			continue
		}

		stats.FilesEmitted++
		recordFileEmitted()

		for chunk := range ChunkRecord(record, cfg.Chunk) {
			stats.ChunksGenerated++
			recordChunkGenerated()

			if enforcer.IsDuplicateChunk(chunk) {
				stats.ChunksDeduplicated++
				recordChunkDeduplicated()
				continue
			}

			err := writer.Write(dataset.Record{
				Content:  chunk.Content,
				Language: chunk.Language,
				Metadata: dataset.Metadata{
					SourcePath: chunk.SourcePath,
					StartLine:  chunk.StartLine,
					EndLine:    chunk.EndLine,
					Hash:       chunk.Fingerprint,
				},
			})
			if err != nil {
				return err
			}

			stats.ChunksEmitted++
			recordChunkEmitted()
			stats.RecordLanguage(chunk.Language)
		}
	}

	return nil
}

// Run executes the pipeline with the default exec-backed git client.
func Run(ctx context.Context, cfg *Config, logger *slog.Logger) (*Result, error) {
	return NewRunner(nil, logger).Run(ctx, cfg)
}

// RunFromPaths assembles a dataset from local directories only, without a
// configuration document. Each path becomes one local code source; the
// primary root mechanism is bypassed.
func RunFromPaths(ctx context.Context, paths []string, outputDir string, logger *slog.Logger) (*Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one source path is required")
	}

	cfg := DefaultConfig()
	cfg.Root = absPath(paths[0])
	cfg.OutputDir = absPath(outputDir)
	cfg.IncludePrimaryRoot = false
	for _, path := range paths {
		abs := absPath(path)
		cfg.CodeSources = append(cfg.CodeSources, CodeSource{
			Name:     filepath.Base(abs),
			Type:     "local",
			Location: abs,
		})
	}
	cfg.normalize()

	return Run(ctx, &cfg, logger)
}
