package metrics

import "github.com/prometheus/client_golang/prometheus"

// Completion, retrieval and ingest metrics.
var (
	CompletionRequestsTotal = counterVec("completion_requests_total",
		"Completion API calls by status (success, error).", "provider", "model", "status")

	// Answers are short but models are slow; buckets reach the default completion timeout.
	CompletionRequestDuration = histogramVec("completion_request_duration_seconds",
		"Latency of successful completion API calls.",
		[]float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60}, "provider", "model")

	CompletionTokensTotal = counterVec("completion_tokens_total",
		"Tokens billed for completions (type: prompt, completion).", "provider", "model", "type")

	SearchTotal = counterVec("search_total",
		"Listing searches by the strategy that produced the result (native, scan).", "strategy")

	SearchFallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_fallbacks_total",
		Help:      "Native searches that failed and were answered by the scan path.",
	})

	IndexBuildsTotal = counterVec("index_builds_total",
		"Nearest-neighbor index build attempts by status (ready, failed).", "status")

	IngestItemsTotal = counterVec("ingest_items_total",
		"Ingested listing records by status (added, skipped, failed).", "status")
)
