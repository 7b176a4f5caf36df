package domain

// DefaultKeyPrefix namespaces every key written to the storage engine.
const DefaultKeyPrefix = "estaterag:"

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model               string
	Dimensions          int
	DistanceMetric      string
	Algorithm           string
	DocumentInstruction string
	QueryInstruction    string
}

// DefaultVectorConfig returns the default configuration tuned for text-embedding-3-small.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:          "text-embedding-3-small",
		Dimensions:     1536,
		DistanceMetric: "cosine",
		Algorithm:      "hnsw",
	}
}

// CompletionConfig holds answer generation settings.
type CompletionConfig struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// DefaultCompletionConfig keeps answers short and mostly deterministic.
func DefaultCompletionConfig() CompletionConfig {
	return CompletionConfig{
		Model:       "gpt-3.5-turbo",
		Temperature: 0.2,
		MaxTokens:   600,
	}
}

// IndexConfig tunes the nearest-neighbor index build.
type IndexConfig struct {
	Algorithm      string // "hnsw" or "flat"
	M              int
	EFConstruction int
	MinRows        int
}

// DefaultIndexConfig returns HNSW with the engine's usual graph parameters.
func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		Algorithm:      "hnsw",
		M:              16,
		EFConstruction: 200,
		MinRows:        1,
	}
}
