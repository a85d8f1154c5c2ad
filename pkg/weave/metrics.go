// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package weave

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsWeave holds Prometheus metrics for the formatting pipeline.
type metricsWeave struct {
	once sync.Once

	// Segments
	segmentsDiscovered prometheus.Counter
	segmentsFormatted  prometheus.Counter
	segmentsPreserved  prometheus.Counter
	overlapsDropped    prometheus.Counter

	// Formatter invocations
	formatterInvocations prometheus.Counter
	formatterErrors      *prometheus.CounterVec

	// Consistency
	consistencyErrors *prometheus.CounterVec

	// Durations
	parseDuration     prometheus.Histogram
	formatDuration    prometheus.Histogram
	documentDuration   prometheus.Histogram
}

var weaveMetrics metricsWeave

func (m *metricsWeave) init() {
	m.once.Do(func() {
		m.segmentsDiscovered = prometheus.NewCounter(prometheus.CounterOpts{Name: "weave_segments_discovered_total", Help: "Injection segments discovered by the extractor"})
		m.segmentsFormatted = prometheus.NewCounter(prometheus.CounterOpts{Name: "weave_segments_formatted_total", Help: "Injection segments successfully formatted and reembedded"})
		m.segmentsPreserved = prometheus.NewCounter(prometheus.CounterOpts{Name: "weave_segments_preserved_total", Help: "Injection segments kept verbatim after a grammar, query, or formatter failure"})
		m.overlapsDropped = prometheus.NewCounter(prometheus.CounterOpts{Name: "weave_overlaps_dropped_total", Help: "Overlapping segments dropped by the extractor"})

		m.formatterInvocations = prometheus.NewCounter(prometheus.CounterOpts{Name: "weave_formatter_invocations_total", Help: "Runner.Format calls, successful or not"})
		m.formatterErrors = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "weave_formatter_errors_total", Help: "Runner.Format failures by kind"}, []string{"kind"})

		m.consistencyErrors = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "weave_consistency_errors_total", Help: "Consistency check failures by kind"}, []string{"kind"})

		buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
		m.parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "weave_parse_seconds", Help: "Duration of a single tree-sitter parse", Buckets: buckets})
		m.formatDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "weave_format_seconds", Help: "Duration of a single Runner.Format invocation", Buckets: buckets})
		m.documentDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "weave_document_seconds", Help: "Duration of one FormatDocument call, root to leaf", Buckets: buckets})

		prometheus.MustRegister(
			m.segmentsDiscovered, m.segmentsFormatted, m.segmentsPreserved, m.overlapsDropped,
			m.formatterInvocations, m.formatterErrors,
			m.consistencyErrors,
			m.parseDuration, m.formatDuration, m.documentDuration,
		)
	})
}

func recordSegmentsDiscovered(n int) {
	weaveMetrics.init()
	weaveMetrics.segmentsDiscovered.Add(float64(n))
}

func recordSegmentFormatted() {
	weaveMetrics.init()
	weaveMetrics.segmentsFormatted.Inc()
}

func recordSegmentPreserved() {
	weaveMetrics.init()
	weaveMetrics.segmentsPreserved.Inc()
}

func recordOverlapDropped() {
	weaveMetrics.init()
	weaveMetrics.overlapsDropped.Inc()
}

func recordFormatterError(kind FormatterErrorKind) {
	weaveMetrics.init()
	weaveMetrics.formatterInvocations.Inc()
	weaveMetrics.formatterErrors.WithLabelValues(kind.String()).Inc()
}

func recordFormatterSuccess() {
	weaveMetrics.init()
	weaveMetrics.formatterInvocations.Inc()
}

func recordConsistencyError(kind ConsistencyErrorKind) {
	weaveMetrics.init()
	weaveMetrics.consistencyErrors.WithLabelValues(kind.String()).Inc()
}
