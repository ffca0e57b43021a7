// Package server exposes the support bot over HTTP: a JSON chat API, the
// embedded chat widget, health and Prometheus endpoints.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"supportbot/internal/config"
	"supportbot/internal/domain"
	"supportbot/internal/logger"
	"supportbot/internal/service"
)

//go:embed static
var staticFiles embed.FS

const shutdownTimeout = 10 * time.Second

// ChatService is the server-facing subset of the support service.
type ChatService interface {
	Chat(ctx context.Context, sessionID, message string, history []domain.Turn) (domain.Reply, error)
	Clear(ctx context.Context, sessionID string) error
	Overview() string
	Metrics(ctx context.Context, sessionID string) (service.MetricsView, error)
}

// Server wires handlers to a ChatService.
type Server struct {
	svc        ChatService
	log        logger.Logger
	gatherer   prometheus.Gatherer
	maxHistory int
	httpServer *http.Server
}

// New creates a server. A nil gatherer serves the default Prometheus registry.
func New(cfg config.AppConfig, svc ChatService, gatherer prometheus.Gatherer, log logger.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	s := &Server{
		svc:        svc,
		log:        log.With(map[string]interface{}{"component": "http"}),
		gatherer:   gatherer,
		maxHistory: cfg.Agent.MaxHistory,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/clear", s.handleClear)
	mux.HandleFunc("GET /api/overview", s.handleOverview)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /", http.FileServerFS(static))

	return recoverer(s.log, requestLogger(s.log, mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	s.log.Info("http server listening", map[string]interface{}{"addr": s.httpServer.Addr})
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
