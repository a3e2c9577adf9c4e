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
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsPipeline holds Prometheus metrics for the assembly pipeline.
type metricsPipeline struct {
	once sync.Once

	// Source materialization
	clonesPerformed prometheus.Counter
	clonesReused    prometheus.Counter

	// Files
	filesScanned      prometheus.Counter
	filesEmitted      prometheus.Counter
	filesDeduplicated prometheus.Counter
	filesFiltered     prometheus.Counter

	// Chunks
	chunksGenerated    prometheus.Counter
	chunksEmitted      prometheus.Counter
	chunksDeduplicated prometheus.Counter

	// Durations
	materializeDuration prometheus.Histogram
	assembleDuration    prometheus.Histogram
	totalDuration       prometheus.Histogram
}

var pipeMetrics metricsPipeline

func (m *metricsPipeline) init() {
	m.once.Do(func() {
		m.clonesPerformed = prometheus.NewCounter(prometheus.CounterOpts{Name: "cforge_pipe_clones_performed_total", Help: "Clones remotos ejecutados"})
		m.clonesReused = prometheus.NewCounter(prometheus.CounterOpts{Name: "cforge_pipe_clones_reused_total", Help: "Checkouts existentes reutilizados"})

		m.filesScanned = prometheus.NewCounter(prometheus.CounterOpts{Name: "cforge_pipe_files_scanned_total", Help: "Archivos escaneados en fuentes"})
		m.filesEmitted = prometheus.NewCounter(prometheus.CounterOpts{Name: "cforge_pipe_files_emitted_total", Help: "Archivos que superaron todos los filtros"})
		m.filesDeduplicated = prometheus.NewCounter(prometheus.CounterOpts{Name: "cforge_pipe_files_deduplicated_total", Help: "Archivos descartados por duplicado"})
		m.filesFiltered = prometheus.NewCounter(prometheus.CounterOpts{Name: "cforge_pipe_files_filtered_total", Help: "Archivos descartados por filtros de calidad"})

		m.chunksGenerated = prometheus.NewCounter(prometheus.CounterOpts{Name: "cforge_pipe_chunks_generated_total", Help: "Chunks generados"})
		m.chunksEmitted = prometheus.NewCounter(prometheus.CounterOpts{Name: "cforge_pipe_chunks_emitted_total", Help: "Chunks emitidos al dataset"})
		m.chunksDeduplicated = prometheus.NewCounter(prometheus.CounterOpts{Name: "cforge_pipe_chunks_deduplicated_total", Help: "Chunks descartados por duplicado"})

		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
		m.materializeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cforge_pipe_materialize_seconds", Help: "Duración de materialización de fuentes", Buckets: buckets})
		m.assembleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cforge_pipe_assemble_seconds", Help: "Duración de ensamblado de chunks", Buckets: buckets})
		m.totalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cforge_pipe_total_seconds", Help: "Duración total de la ejecución", Buckets: buckets})

		prometheus.MustRegister(
			m.clonesPerformed, m.clonesReused,
			m.filesScanned, m.filesEmitted, m.filesDeduplicated, m.filesFiltered,
			m.chunksGenerated, m.chunksEmitted, m.chunksDeduplicated,
			m.materializeDuration, m.assembleDuration, m.totalDuration,
		)
	})
}

// record helpers - used across the pipeline for metrics tracking
func recordClonePerformed() { pipeMetrics.init(); pipeMetrics.clonesPerformed.Inc() }
func recordCloneReused()    { pipeMetrics.init(); pipeMetrics.clonesReused.Inc() }

func recordFileScanned()      { pipeMetrics.init(); pipeMetrics.filesScanned.Inc() }
func recordFileEmitted()      { pipeMetrics.init(); pipeMetrics.filesEmitted.Inc() }
func recordFileDeduplicated() { pipeMetrics.init(); pipeMetrics.filesDeduplicated.Inc() }
func recordFileFiltered()     { pipeMetrics.init(); pipeMetrics.filesFiltered.Inc() }

func recordChunkGenerated()    { pipeMetrics.init(); pipeMetrics.chunksGenerated.Inc() }
func recordChunkEmitted()      { pipeMetrics.init(); pipeMetrics.chunksEmitted.Inc() }
func recordChunkDeduplicated() { pipeMetrics.init(); pipeMetrics.chunksDeduplicated.Inc() }

func observeMaterializeSeconds(s float64) { pipeMetrics.init(); pipeMetrics.materializeDuration.Observe(s) }
func observeAssembleSeconds(s float64)    { pipeMetrics.init(); pipeMetrics.assembleDuration.Observe(s) }
func observeTotalSeconds(s float64)       { pipeMetrics.init(); pipeMetrics.totalDuration.Observe(s) }
