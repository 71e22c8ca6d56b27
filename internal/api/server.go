// Package api exposes the backtest engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tidemark/tidemark/internal/api/job"
	"github.com/tidemark/tidemark/internal/api/middleware"
	"github.com/tidemark/tidemark/internal/api/response"
	"github.com/tidemark/tidemark/internal/backtest"
	"github.com/tidemark/tidemark/internal/collector"
	"github.com/tidemark/tidemark/internal/metrics"
	"github.com/tidemark/tidemark/internal/strategy"
)

// Config holds server configuration.
type Config struct {
	Host     string
	Port     int
	APIKey   string
	JobTTL   time.Duration
	MaxJobs  int
	Backtest backtest.Config
}

// Server is the HTTP server wrapping the engine.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer creates an HTTP server over the given loader and strategies.
func NewServer(cfg Config, loader *collector.Loader, strategies *strategy.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 24 * time.Hour
	}

	reg := metrics.NewRegistry()
	jobStore := job.NewStore(cfg.MaxJobs, cfg.JobTTL)
	backtests := NewBacktestHandler(jobStore, loader, strategies, cfg.Backtest, reg, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/backtest", backtests.Create)
	mux.HandleFunc("GET /api/backtest/{id}", backtests.GetStatus)
	mux.HandleFunc("GET /api/strategies", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]any{"strategies": strategies.Names()})
	})
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg.Registry, promhttp.HandlerOpts{}))

	handler := metrics.HTTPMiddleware(reg)(middleware.APIKeyAuth(cfg.APIKey)(mux))

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the fully wired HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
