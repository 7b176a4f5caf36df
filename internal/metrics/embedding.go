package metrics

// Embedding provider and cache metrics. provider and model come from config;
// error_type is set by transport/openai (auth, rate_limited, server, ...) and
// by the instrumented embedder (timeout, canceled, provider, other).
var (
	EmbeddingRequestsTotal = counterVec("embedding_requests_total",
		"Embedding API calls by status (success, error).", "provider", "model", "status")

	EmbeddingRequestDuration = histogramVec("embedding_request_duration_seconds",
		"Latency of successful embedding API calls.",
		[]float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, "provider", "model")

	EmbeddingTokensTotal = counterVec("embedding_tokens_total",
		"Tokens billed for embeddings (type: prompt, total).", "provider", "model", "type")

	EmbeddingErrorsTotal = counterVec("embedding_errors_total",
		"Failed embeddings by cause.", "provider", "model", "error_type")

	EmbeddingCacheTotal = counterVec("embedding_cache_total",
		"Embedding cache lookups by result (hit, miss, error).", "result")
)
