// Package metrics holds the Prometheus collectors of the ingest, retrieval and
// answer paths plus the HTTP middleware.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "estaterag"

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more
// than once; the server, the pipeline and tests all call it.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			httpRequestsInFlight,

			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
			EmbeddingErrorsTotal,
			EmbeddingCacheTotal,

			CompletionRequestsTotal,
			CompletionRequestDuration,
			CompletionTokensTotal,
			SearchTotal,
			SearchFallbacksTotal,
			IndexBuildsTotal,
			IngestItemsTotal,
		)
	})
}

func counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
}

func histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
}
