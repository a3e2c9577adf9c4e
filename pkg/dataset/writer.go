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

package dataset

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
)

// Options controls split assignment and on-disk encoding.
type Options struct {
	TrainRatio float64
	Seed       int64
	Compress   bool
}

// Record is one serialized training sample.
type Record struct {
	Content  string   `json:"content"`
	Language string   `json:"language"`
	Metadata Metadata `json:"metadata"`
}

// Metadata locates a sample in its originating file. Hash is the parent
// file's content fingerprint, shared by all samples cut from the same
// file.
type Metadata struct {
	SourcePath string `json:"source_path"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Hash       string `json:"hash"`
}

// Writer streams records into train and eval JSONL files, assigning each
// record to a split with one seeded random draw. The same seed, ratio
// and record order always reproduce the same split. Not safe for
// concurrent use.
type Writer struct {
	opts      Options
	rng       *rand.Rand
	trainPath string
	evalPath  string

	trainFile *os.File
	evalFile  *os.File
	trainGzip *gzip.Writer
	evalGzip  *gzip.Writer
	trainEnc  *json.Encoder
	evalEnc   *json.Encoder

	trainCount int
	evalCount  int
	closed     bool
}

// NewWriter opens both split files in outputDir. Compression appends a
// .gz suffix. The caller must Close the writer.
func NewWriter(outputDir string, opts Options) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	suffix := ".jsonl"
	if opts.Compress {
		suffix = ".jsonl.gz"
	}

	w := &Writer{
		opts:      opts,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		trainPath: filepath.Join(outputDir, "train"+suffix),
		evalPath:  filepath.Join(outputDir, "eval"+suffix),
	}

	var err error
	w.trainFile, err = os.Create(w.trainPath)
	if err != nil {
		return nil, fmt.Errorf("create train split: %w", err)
	}
	w.evalFile, err = os.Create(w.evalPath)
	if err != nil {
		w.trainFile.Close()
		return nil, fmt.Errorf("create eval split: %w", err)
	}

	trainDst := io.Writer(w.trainFile)
	evalDst := io.Writer(w.evalFile)
	if opts.Compress {
		w.trainGzip = gzip.NewWriter(w.trainFile)
		w.evalGzip = gzip.NewWriter(w.evalFile)
		trainDst = w.trainGzip
		evalDst = w.evalGzip
	}

	w.trainEnc = json.NewEncoder(trainDst)
	w.trainEnc.SetEscapeHTML(false)
	w.evalEnc = json.NewEncoder(evalDst)
	w.evalEnc.SetEscapeHTML(false)
	return w, nil
}

// Write assigns the record to a split and appends it as one JSON line.
// Exactly one random draw happens per record, so the assignment sequence
// depends only on seed and record order.
func (w *Writer) Write(record Record) error {
	if w.rng.Float64() < w.opts.TrainRatio {
		w.trainCount++
		if err := w.trainEnc.Encode(record); err != nil {
			return fmt.Errorf("write train record: %w", err)
		}
		return nil
	}
	w.evalCount++
	if err := w.evalEnc.Encode(record); err != nil {
		return fmt.Errorf("write eval record: %w", err)
	}
	return nil
}

// TrainPath returns the train split file path.
func (w *Writer) TrainPath() string { return w.trainPath }

// EvalPath returns the eval split file path.
func (w *Writer) EvalPath() string { return w.evalPath }

// Counts returns how many records went to each split so far.
func (w *Writer) Counts() (train, eval int) {
	return w.trainCount, w.evalCount
}

// Close flushes and closes both split files. Safe to call more than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var firstErr error
	if w.trainGzip != nil {
		if err := w.trainGzip.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close train gzip: %w", err)
		}
	}
	if w.evalGzip != nil {
		if err := w.evalGzip.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close eval gzip: %w", err)
		}
	}
	if err := w.trainFile.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close train split: %w", err)
	}
	if err := w.evalFile.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close eval split: %w", err)
	}
	return firstErr
}
