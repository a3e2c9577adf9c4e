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
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileRecord is one ingested file. Fingerprint is computed on the raw
// bytes before decoding or normalization and is carried through the rest
// of the pipeline unchanged.
type FileRecord struct {
	Path         string
	RelativePath string
	Content      string
	Language     string
	Fingerprint  string
	Size         int64
}

// ScanFiles yields a FileRecord for each ingestible file under root.
//
// The sequence is lazy and finite but not restartable: re-ranging re-walks
// the filesystem, which may observe a different state. Directories whose
// name is in the exclusion set are pruned before descending; the check is
// name-only, so a matching name anywhere in the tree is pruned wherever it
// occurs. Files are skipped when their suffix is not in the allow-list
// (suffix-less files always pass), when they exceed the byte cap, cannot
// be read, or look binary. Skips are never fatal.
func ScanFiles(root string, cfg IngestionConfig, logger *slog.Logger) iter.Seq[FileRecord] {
	if logger == nil {
		logger = slog.Default()
	}

	allowed := make(map[string]struct{}, len(cfg.IncludeExtensions))
	for _, ext := range cfg.IncludeExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	excluded := make(map[string]struct{}, len(cfg.ExcludeDirs))
	for _, dir := range cfg.ExcludeDirs {
		excluded[dir] = struct{}{}
	}
	maxBytes := int64(cfg.MaxFileSizeMB) << 20

	walk := walker{
		root:     root,
		allowed:  allowed,
		excluded: excluded,
		maxBytes: maxBytes,
		follow:   cfg.FollowSymlinks,
		logger:   logger,
	}

	return func(yield func(FileRecord) bool) {
		walk.dir(root, yield)
	}
}

type walker struct {
	root     string
	allowed  map[string]struct{}
	excluded map[string]struct{}
	maxBytes int64
	follow   bool
	logger   *slog.Logger
}

// dir visits one directory in lexical entry order. Returns false when the
// consumer stopped the sequence.
func (w *walker) dir(path string, yield func(FileRecord) bool) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		w.logger.Warn("ingest.walk.error", "path", path, "err", err)
		return true
	}

	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())

		if entry.IsDir() {
			if _, skip := w.excluded[entry.Name()]; skip {
				continue
			}
			if !w.dir(child, yield) {
				return false
			}
			continue
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(child)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if !w.follow {
					continue
				}
				if _, skip := w.excluded[entry.Name()]; skip {
					continue
				}
				if !w.dir(child, yield) {
					return false
				}
				continue
			}
		}

		record, ok := w.file(child)
		if !ok {
			continue
		}
		if !yield(record) {
			return false
		}
	}
	return true
}

// file applies the per-file filters and builds a record.
func (w *walker) file(path string) (FileRecord, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" && len(w.allowed) > 0 {
		if _, ok := w.allowed[ext]; !ok {
			return FileRecord{}, false
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return FileRecord{}, false
	}
	if info.Size() > w.maxBytes {
		w.logger.Debug("ingest.skip.too_large", "path", path, "size", info.Size(), "limit", w.maxBytes)
		return FileRecord{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Debug("ingest.skip.unreadable", "path", path, "err", err)
		return FileRecord{}, false
	}
	if IsBinary(data) {
		return FileRecord{}, false
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return FileRecord{}, false
	}

	return FileRecord{
		Path:         path,
		RelativePath: filepath.ToSlash(rel),
		Content:      decodeText(data),
		Language:     DetectLanguage(path),
		Fingerprint:  Fingerprint(data),
		Size:         info.Size(),
	}, true
}
