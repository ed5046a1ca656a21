package slatesearch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	password string

	embedder         Embedder
	model            string
	queryInstruction string
	dimensions       int
	poolSize         int
	maxBatchSize     int
	cacheEmbeddings  bool

	keyPrefix       string
	hnswM           int
	hnswEFConstruct int
	indexBatchSize  int

	topK          int
	lookupTimeout time.Duration
	relevance     Relevance

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis 8 instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the model runtime. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithModel names the embedding model. The name selects the default query
// instruction and scopes the embedding cache.
// Defaults to BAAI/bge-large-en-v1.5.
func WithModel(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.model = name
	})
}

// WithQueryInstruction overrides the prefix applied to query text.
func WithQueryInstruction(instruction string) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryInstruction = instruction
	})
}

// WithVectorDimensions sets the expected vector size. 0 learns it from the
// model at start-up. Defaults to 1024.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithInferencePool sets the number of inference workers. Inference itself
// stays serialized; the pool bounds queued jobs.
func WithInferencePool(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.poolSize = size
	})
}

// WithMaxBatchSize caps the texts sent to the runtime in one call.
// Default: 32.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithEmbeddingCache stores document vectors keyed by canonical text so
// unchanged records skip inference when re-indexed. Queries never use it.
func WithEmbeddingCache() Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheEmbeddings = true
	})
}

// WithKeyPrefix sets the key space prefix. It must end with ":".
// Default: "slate:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithIndexBatchSize sets the number of records embedded and stored together.
// Default: 64.
func WithIndexBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexBatchSize = size
	})
}

// WithTopK sets the neighbors requested per kind. Default: 10.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithLookupTimeout bounds one kind's lookup. Default: 2s.
func WithLookupTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.lookupTimeout = d
	})
}

// WithRelevance selects how the store's raw KNN value is read.
// Default: RelevanceDistance.
func WithRelevance(r Relevance) Option {
	return optionFunc(func(c *clientConfig) {
		c.relevance = r
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
