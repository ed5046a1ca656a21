package slatesearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/slatesearch/internal/db"
	dbValkey "github.com/kailas-cloud/slatesearch/internal/db/valkey"
	"github.com/kailas-cloud/slatesearch/internal/domain"
	"github.com/kailas-cloud/slatesearch/internal/metrics"
	"github.com/kailas-cloud/slatesearch/internal/repository/embcache"
	recordrepo "github.com/kailas-cloud/slatesearch/internal/repository/record"
	searchrepo "github.com/kailas-cloud/slatesearch/internal/repository/search"
	embeddinguc "github.com/kailas-cloud/slatesearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/slatesearch/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/slatesearch/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/slatesearch/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 30 * time.Second
	defaultKeyPrefix        = "slate:"
	defaultHNSWM            = 16
	defaultHNSWEFConstruct  = 200
)

// Client is the embedded search core: one store connection, one loaded
// model, and the search and indexing services built on them.
type Client struct {
	store     storeConn
	producer  releaser
	searchSvc searchUseCase
	indexSvc  indexUseCase
	healthSvc healthUseCase
	obs       *observer
}

// storeConn is the part of the store the client owns directly.
type storeConn interface {
	Ping(ctx context.Context) error
	Close()
}

type releaser interface {
	Release()
}

// New connects to the store, loads the model and wires the services. The
// model warm-up runs before New returns, so a returned client can search.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		model:      domain.DefaultModel,
		dimensions: domain.DefaultDimensions,
		keyPrefix:  defaultKeyPrefix,
		relevance:  RelevanceDistance,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbValkey.NewStore(dbValkey.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("slatesearch: create %s store: %w", cfg.driver, err)
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("slatesearch: %s not ready: %w", cfg.driver, err)
	}

	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func (c *clientConfig) validate() error {
	if len(c.addrs) == 0 {
		return errors.New("slatesearch: database address required (use WithValkey or WithRedis)")
	}
	if c.driver != "valkey" && c.driver != "redis" {
		return fmt.Errorf("slatesearch: unknown driver %q", c.driver)
	}
	if c.embedder == nil {
		return errors.New("slatesearch: embedder required (use WithEmbedder)")
	}
	if !c.relevance.IsValid() {
		return fmt.Errorf("slatesearch: unknown relevance convention %q", c.relevance)
	}
	if c.dimensions < 0 {
		return fmt.Errorf("slatesearch: vector dimensions must be >= 0, got %d", c.dimensions)
	}
	if n := len(c.keyPrefix); n == 0 || c.keyPrefix[n-1] != ':' {
		return fmt.Errorf("slatesearch: key prefix %q must end with \":\"", c.keyPrefix)
	}
	return nil
}

func wireClient(ctx context.Context, store *dbValkey.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	logger := obs.logger

	maxBatch := cfg.maxBatchSize
	if maxBatch <= 0 {
		maxBatch = embeddinguc.DefaultMaxBatchSize
	}
	loader := func(_ context.Context) (domain.TextEmbedder, error) {
		runtime := &embedderAdapter{inner: cfg.embedder}
		return embeddinguc.NewInstrumentedEmbedder(runtime, "embedded", cfg.model, maxBatch, logger), nil
	}

	poolSize := cfg.poolSize
	if poolSize <= 0 {
		poolSize = embeddinguc.DefaultPoolSize
	}
	producer, err := embeddinguc.NewProducer(loader, cfg.dimensions, poolSize, logger)
	if err != nil {
		return nil, fmt.Errorf("slatesearch: create producer: %w", err)
	}
	if err := producer.Init(ctx); err != nil {
		producer.Release()
		return nil, fmt.Errorf("slatesearch: init model %s: %w", cfg.model, err)
	}

	m, ef := cfg.hnswM, cfg.hnswEFConstruct
	if m <= 0 {
		m = defaultHNSWM
	}
	if ef <= 0 {
		ef = defaultHNSWEFConstruct
	}
	records := recordrepo.New(store, cfg.keyPrefix, recordrepo.IndexConfig{
		Dimensions:  producer.Dimensions(),
		Algorithm:   db.VectorHNSW,
		M:           m,
		EFConstruct: ef,
	})

	var docEmbedder indexinguc.BatchEmbedder = producer
	if cfg.cacheEmbeddings {
		docEmbedder = embcache.New(producer, store,
			embcache.KeyPrefix(cfg.keyPrefix, cfg.model), metrics.EmbeddingCacheTotal, logger)
	}
	indexSvc := indexinguc.New(records, docEmbedder, logger)
	if cfg.indexBatchSize > 0 {
		indexSvc = indexSvc.WithMaxBatchSize(cfg.indexBatchSize)
	}

	var queryEmbedder searchuc.Embedder = producer
	if instruction := domain.QueryInstructionFor(cfg.model, cfg.queryInstruction); instruction != "" {
		queryEmbedder = domain.NewInstructionEmbedder(producer, instruction)
	}
	searchSvc := searchuc.New(
		searchrepo.New(store, cfg.keyPrefix),
		queryEmbedder,
		searchuc.Config{
			TopK:          cfg.topK,
			LookupTimeout: cfg.lookupTimeout,
			Convention:    cfg.relevance,
		},
		logger,
	)

	logger.Info("Search core ready",
		zap.String("driver", cfg.driver),
		zap.String("model", cfg.model),
		zap.Int("dimensions", producer.Dimensions()),
	)

	return &Client{
		store:     store,
		producer:  producer,
		searchSvc: searchSvc,
		indexSvc:  indexSvc,
		healthSvc: healthuc.New(store, producer, producer),
		obs:       obs,
	}, nil
}

// Close stops the inference workers and releases the store connection.
func (c *Client) Close() {
	if c.producer != nil {
		c.producer.Release()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
