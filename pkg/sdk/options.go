package estaterag

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

const (
	driverRedis  = "redis"
	driverValkey = "valkey"
	driverMemory = "memory"
)

type clientConfig struct {
	driver   string // "redis", "valkey" or "memory"
	addrs    []string
	password string

	embedder  Embedder
	completer Completer
	openai    *OpenAIConfig

	dimensions      int
	algorithm       string
	hnswM           int
	hnswEFConstruct int
	minRows         int
	maxBatchSize    int
	keyPrefix       string

	embedTimeout    time.Duration
	completeTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// OpenAIConfig selects an OpenAI-compatible API for both embeddings and completions.
// Empty models fall back to text-embedding-3-small and gpt-3.5-turbo.
// A nil Temperature means 0.2; point it at 0 for greedy decoding.
type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	EmbeddingModel  string
	CompletionModel string
	Temperature     *float32
	MaxTokens       int
}

// WithRedis stores listings in a Redis Stack instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithValkey stores listings in a Valkey instance with valkey-search loaded.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverValkey
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMemory keeps listings in process memory. Nothing survives Close.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMemory
		c.addrs = nil
	})
}

// WithEmbedder sets the text embedding provider. Takes precedence over WithOpenAI.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithCompleter sets the completion provider. Takes precedence over WithOpenAI.
func WithCompleter(l Completer) Option {
	return optionFunc(func(c *clientConfig) {
		c.completer = l
	})
}

// WithOpenAI uses an OpenAI-compatible API for whichever of the embedder and
// the completer are not set explicitly.
func WithOpenAI(cfg OpenAIConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai = &cfg
	})
}

// WithDimensions sets the embedding vector dimension. Default: 1536.
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.algorithm = "hnsw"
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithFlatIndex builds an exact FLAT index instead of HNSW.
func WithFlatIndex() Option {
	return optionFunc(func(c *clientConfig) {
		c.algorithm = "flat"
	})
}

// WithMinIndexRows sets how many listings must be stored before BuildIndex
// creates the index. Default: 1.
func WithMinIndexRows(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.minRows = n
	})
}

// WithMaxBatchSize sets the maximum number of listings per Ingest call.
// Default: 1000.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithKeyPrefix namespaces every key the client writes. Default: "estaterag:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithTimeouts bounds each embedding and completion call.
// Defaults: 30s and 60s. Zero keeps the default.
func WithTimeouts(embed, complete time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedTimeout = embed
		c.completeTimeout = complete
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
