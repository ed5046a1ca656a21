package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/slatesearch/internal/config"
	"github.com/kailas-cloud/slatesearch/internal/db"
	"github.com/kailas-cloud/slatesearch/internal/db/valkey"
	"github.com/kailas-cloud/slatesearch/internal/domain"
	logpkg "github.com/kailas-cloud/slatesearch/internal/logger"
	"github.com/kailas-cloud/slatesearch/internal/repository/embcache"
	recordrepo "github.com/kailas-cloud/slatesearch/internal/repository/record"
	ollamaEmb "github.com/kailas-cloud/slatesearch/internal/transport/ollama"
	openaiEmb "github.com/kailas-cloud/slatesearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/slatesearch/internal/usecase/embedding"
)

// app is the composition root shared by the commands that touch the store or the model.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
}

func loadApp(env, level string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logpkg.NewLogger(env, level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return &app{env: env, cfg: cfg, logger: logger}, nil
}

// openStore connects to the vector store and waits until it answers.
// Valkey-Search and Redis 8 speak the same FT.* subset, so one client serves both drivers.
func (a *app) openStore(ctx context.Context) (*valkey.Store, error) {
	dbc := a.cfg.Database
	store, err := valkey.NewStore(valkey.Config{
		Addrs:    dbc.Addrs,
		Username: dbc.Username,
		Password: dbc.Password,
		DB:       dbc.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", dbc.Driver, err)
	}
	if err := store.WaitForReady(ctx, time.Duration(dbc.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s not ready: %w", dbc.Driver, err)
	}
	a.logger.Info("Connected to vector store",
		zap.String("driver", dbc.Driver),
		zap.Strings("addrs", dbc.Addrs),
	)
	return store, nil
}

// records returns the per-kind record repository. dims is the vector size
// reported by the initialized producer.
func (a *app) records(store *valkey.Store, dims int) (*recordrepo.Repo, error) {
	algo, err := db.ParseVectorAlgorithm(a.cfg.Index.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("index algorithm: %w", err)
	}
	return recordrepo.New(store, a.cfg.Storage.KeyPrefix, recordrepo.IndexConfig{
		Dimensions:  dims,
		Algorithm:   algo,
		M:           a.cfg.Index.HNSWM,
		EFConstruct: a.cfg.Index.HNSWEFConstruct,
	}), nil
}

// loader builds the runtime chain: provider transport, then chunking and logging.
func (a *app) loader() embeddinguc.Loader {
	emb := a.cfg.Embedding
	return func(_ context.Context) (domain.TextEmbedder, error) {
		var runtime domain.TextEmbedder
		switch emb.Provider {
		case "ollama":
			o, err := ollamaEmb.NewEmbedder(&ollamaEmb.Config{
				ServerURL: emb.BaseURL,
				Model:     emb.Model,
				BatchSize: emb.MaxBatchSize,
				Logger:    a.logger,
			})
			if err != nil {
				return nil, fmt.Errorf("ollama runtime: %w", err)
			}
			runtime = o
		default:
			runtime = openaiEmb.NewEmbedder(&openaiEmb.Config{
				APIKey:   emb.APIKey,
				BaseURL:  emb.BaseURL,
				Model:    emb.Model,
				Provider: emb.Provider,
				Logger:   a.logger,
			})
		}
		return embeddinguc.NewInstrumentedEmbedder(runtime, emb.Provider, emb.Model, emb.MaxBatchSize, a.logger), nil
	}
}

// newProducer creates the embedding producer without loading the model.
func (a *app) newProducer() (*embeddinguc.Producer, error) {
	return embeddinguc.NewProducer(a.loader(), a.cfg.Embedding.Dimensions, a.cfg.Embedding.PoolSize, a.logger)
}

// initProducer loads the model within the configured start-up bound.
func (a *app) initProducer(ctx context.Context, p *embeddinguc.Producer) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.Embedding.InitTimeoutSec)*time.Second)
	defer cancel()
	if err := p.Init(ctx); err != nil {
		return fmt.Errorf("init embedding model %s: %w", a.cfg.Embedding.Model, err)
	}
	return nil
}

// queryInstruction returns the prefix applied to query text.
func (a *app) queryInstruction() string {
	return domain.QueryInstructionFor(a.cfg.Embedding.Model, a.cfg.Embedding.QueryInstruction)
}

// cacheKeyPrefix scopes cached document vectors by model.
func (a *app) cacheKeyPrefix() string {
	return embcache.KeyPrefix(a.cfg.Storage.KeyPrefix, a.cfg.Embedding.Model)
}
