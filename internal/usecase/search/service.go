package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/slatesearch/internal/domain"
	"github.com/kailas-cloud/slatesearch/internal/domain/kind"
	"github.com/kailas-cloud/slatesearch/internal/domain/search/result"
	"github.com/kailas-cloud/slatesearch/internal/domain/search/score"
	"github.com/kailas-cloud/slatesearch/internal/metrics"
)

const (
	// DefaultTopK is the number of nearest neighbors requested per kind.
	DefaultTopK = 10
	// DefaultLookupTimeout bounds one kind's lookup.
	DefaultLookupTimeout = 2 * time.Second
)

// Config tunes the search fan-out.
type Config struct {
	TopK          int
	LookupTimeout time.Duration
	Convention    score.Convention
}

// Service answers free-text queries across every record kind.
type Service struct {
	repo    Repository
	embed   Embedder
	lookups []lookup
	cfg     Config
	logger  *zap.Logger
}

// New creates a search service. Zero config values select the defaults.
func New(repo Repository, embed Embedder, cfg Config, logger *zap.Logger) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = DefaultLookupTimeout
	}
	if cfg.Convention == "" {
		cfg.Convention = score.Distance
	}
	return &Service{
		repo:    repo,
		embed:   embed,
		lookups: lookups(),
		cfg:     cfg,
		logger:  logger,
	}
}

// Search embeds the query once and looks up every kind concurrently.
// A kind whose lookup fails is reported in Result.Failed while the others
// still return. Failure of every kind yields domain.ErrSearchUnavailable and
// any embedding failure is returned as is. Cancelling ctx ends every lookup
// and returns the context error.
func (s *Service) Search(ctx context.Context, query string) (result.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		metrics.SearchRequestsTotal.WithLabelValues("no_query").Inc()
		return result.NoQuery(), nil
	}

	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("inference_error").Inc()
		return result.Result{}, fmt.Errorf("embed query: %w", err)
	}

	s.logger.Debug("Search query embedded",
		zap.String("query", query),
		zap.Int("dimensions", len(emb.Embedding)),
	)

	res := result.NoQuery()
	res.Status = result.StatusResults
	res.Query = query

	setters := make([]func(*result.Result), len(s.lookups))
	errs := make([]error, len(s.lookups))

	// A failed kind stays in errs. Only caller cancellation stops the group.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(s.lookups))
	for i, l := range s.lookups {
		g.Go(func() error {
			setters[i], errs[i] = s.lookup(gctx, l, emb.Embedding)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("cancelled").Inc()
		return result.Result{}, fmt.Errorf("search lookups: %w", err)
	}

	var failed []error
	for i, l := range s.lookups {
		if errs[i] != nil {
			res.Failed = append(res.Failed, l.recordKind())
			failed = append(failed, errs[i])
			continue
		}
		setters[i](&res)
	}
	res.Recount()

	switch {
	case len(failed) == len(s.lookups):
		metrics.SearchRequestsTotal.WithLabelValues("unavailable").Inc()
		s.logger.Error("All search lookups failed", zap.String("query", query), zap.Error(errors.Join(failed...)))
		return result.Result{}, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, errors.Join(failed...))
	case len(failed) > 0:
		metrics.SearchRequestsTotal.WithLabelValues("partial").Inc()
	default:
		metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
	}

	return res, nil
}

// lookup runs one kind's pipeline under its own timeout.
func (s *Service) lookup(ctx context.Context, l lookup, vector []float32) (func(*result.Result), error) {
	k := l.recordKind()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.LookupTimeout)
	defer cancel()

	start := time.Now()
	set, err := l.run(ctx, s.repo, vector, s.cfg.TopK, s.cfg.Convention)
	metrics.SearchLookupDuration.WithLabelValues(k.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchLookupErrorsTotal.WithLabelValues(k.String()).Inc()
		s.logger.Warn("Search lookup failed",
			zap.String("kind", k.String()),
			zap.Error(err),
		)
		return nil, domain.NewKindError(k.String(), err)
	}
	return set, nil
}

func countMatches(k kind.Kind, candidates, kept int) {
	metrics.SearchMatchesTotal.WithLabelValues(k.String(), "candidate").Add(float64(candidates))
	metrics.SearchMatchesTotal.WithLabelValues(k.String(), "kept").Add(float64(kept))
}
