package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/flood-vulnerability-service/internal/analysis"
	"github.com/couchcryptid/flood-vulnerability-service/internal/domain"
)

// Calculator scores a location.
type Calculator interface {
	Calculate(ctx context.Context, lat, lon float64, profile *domain.DistrictProfile) domain.Result
	CalculateDistrict(ctx context.Context, d domain.District) domain.Result
}

// Analyzer writes a risk analysis report for a scored location.
type Analyzer interface {
	Analyze(ctx context.Context, place string, result domain.Result) (analysis.Report, error)
}

// Districts resolves place names.
type Districts interface {
	Lookup(name string) (domain.District, bool)
	All() []domain.District
}

// Deps are the collaborators behind the API routes. A nil Analyzer makes
// POST /analysis report 503.
type Deps struct {
	Calculator Calculator
	Analyzer   Analyzer
	Districts  Districts
	Ready      sharedobs.ReadinessChecker
}

// Server exposes the FVI API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /fvi, /analysis, /districts,
// /healthz, /readyz, and /metrics routes.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       10 * time.Second,
			// Hydrology lookups and LLM completions can each take tens of seconds.
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	mux.HandleFunc("GET /fvi", s.handleFVI)
	mux.HandleFunc("POST /analysis", s.handleAnalysis)
	mux.HandleFunc("GET /districts", s.handleDistricts)
	mux.HandleFunc("OPTIONS /", handlePreflight)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer.Handler = withLogging(logger, withRecovery(logger, withCORS(mux)))
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
