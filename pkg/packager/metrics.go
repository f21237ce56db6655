/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

package packager

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skpack_generate_duration_seconds",
			Help:    "Duration of manifest generation runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	docsRendered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skpack_manifest_docs_total",
			Help: "Total number of manifest documents rendered",
		},
	)

	generateErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skpack_generate_errors_total",
			Help: "Total number of generation errors by stage",
		},
		[]string{"stage"},
	)
)

func recordGenerate(seconds float64, docs int) {
	generateDuration.Observe(seconds)
	docsRendered.Add(float64(docs))
}

func recordError(stage string) {
	generateErrors.WithLabelValues(stage).Inc()
}
