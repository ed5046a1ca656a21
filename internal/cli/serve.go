package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/slatesearch/internal/db/valkey"
	"github.com/kailas-cloud/slatesearch/internal/domain"
	"github.com/kailas-cloud/slatesearch/internal/domain/search/score"
	"github.com/kailas-cloud/slatesearch/internal/metrics"
	searchrepo "github.com/kailas-cloud/slatesearch/internal/repository/search"
	chiTransport "github.com/kailas-cloud/slatesearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/slatesearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/slatesearch/internal/usecase/search"
	"github.com/kailas-cloud/slatesearch/internal/version"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var ensureIndexes bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the search HTTP API",
		Long: `Start the HTTP API. The server listens immediately; /search answers
503 until the embedding model has loaded and /health reports the model as not_ready.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), root, ensureIndexes)
		},
	}
	cmd.Flags().BoolVar(&ensureIndexes, "ensure-indexes", true, "create missing kind indexes at start-up")
	return cmd
}

func runServe(ctx context.Context, root *rootOptions, ensureIndexes bool) error {
	a, err := loadApp(root.env, root.logLevel)
	if err != nil {
		return err
	}
	logger := a.logger
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting slatesearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", a.cfg.HTTP.Port),
		zap.String("embedding_provider", a.cfg.Embedding.Provider),
		zap.String("embedding_model", a.cfg.Embedding.Model),
	)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	convention, err := score.Parse(a.cfg.Search.Relevance)
	if err != nil {
		return fmt.Errorf("search relevance: %w", err)
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	producer, err := a.newProducer()
	if err != nil {
		return err
	}
	defer producer.Release()

	var queryEmbedder searchuc.Embedder = producer
	if instruction := a.queryInstruction(); instruction != "" {
		queryEmbedder = domain.NewInstructionEmbedder(producer, instruction)
	}

	searchSvc := searchuc.New(
		searchrepo.New(store, a.cfg.Storage.KeyPrefix),
		queryEmbedder,
		searchuc.Config{
			TopK:          a.cfg.Search.TopK,
			LookupTimeout: a.cfg.Search.LookupTimeout(),
			Convention:    convention,
		},
		logger,
	)
	healthSvc := healthuc.New(store, producer, producer)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)
	addr := fmt.Sprintf(":%d", a.cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// The model loads while the server already answers health checks.
	// Indexes need the vector size, so they are ensured once it is known.
	initErr := make(chan error, 1)
	go func() {
		if err := a.initProducer(ctx, producer); err != nil {
			initErr <- err
			return
		}
		if ensureIndexes {
			initErr <- a.ensureIndexes(ctx, store, producer.Dimensions())
			return
		}
		initErr <- nil
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		runErr = fmt.Errorf("http server: %w", err)
	case err := <-initErr:
		if err != nil {
			runErr = err
			break
		}
		select {
		case <-ctx.Done():
			logger.Info("Received shutdown signal")
		case err := <-serveErr:
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	if runErr != nil {
		logger.Error("Server stopped", zap.Error(runErr))
		return runErr
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// ensureIndexes creates the missing per-kind indexes with the given vector size.
func (a *app) ensureIndexes(ctx context.Context, store *valkey.Store, dims int) error {
	records, err := a.records(store, dims)
	if err != nil {
		return err
	}
	created, err := records.EnsureIndexes(ctx)
	if err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	if len(created) > 0 {
		a.logger.Info("Created missing indexes", zap.Any("kinds", created), zap.Int("dimensions", dims))
	}
	return nil
}
