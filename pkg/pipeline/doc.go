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

// Package pipeline assembles training corpora from code repositories and
// terminal command logs.
//
// A run materializes the configured sources (local trees, shallow remote
// clones, extracted command corpora), streams every ingestible file
// through normalization, quality gates and line-window chunking, and
// hands surviving chunks to the dataset writer. Source materialization,
// filtering and chunking are all deterministic for a fixed configuration
// and source state.
package pipeline
