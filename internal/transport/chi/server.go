package chi

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/slatesearch/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/slatesearch/internal/logger"
	"github.com/kailas-cloud/slatesearch/internal/metrics"
	healthuc "github.com/kailas-cloud/slatesearch/internal/usecase/health"
)

// MaxQueryLength bounds the query text in characters.
const MaxQueryLength = 1000

// Searcher answers free-text queries.
type Searcher interface {
	Search(ctx context.Context, query string) (result.Result, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the search, health, and metrics endpoints.
type Server struct {
	search        Searcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{
		search:        search,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Router returns the chi router with the middleware stack and all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// Search handles GET /search?q=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if utf8.RuneCountInString(query) > MaxQueryLength {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "query is too long")
		return
	}

	res, err := s.search.Search(r.Context(), query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if res.Partial() {
		logpkg.FromContext(r.Context()).Warn("Partial search result",
			zap.Any("failed_kinds", res.Failed),
			zap.Int("total", res.Total),
		)
	}
	writeJSON(w, http.StatusOK, res)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("Search failed", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
