// Package server exposes the debate and evaluation API over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultReadHeaderTimeout = 10 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
)

// HTTPServer serves the REST and SSE endpoints.
type HTTPServer struct {
	app        *AppContext
	httpServer *http.Server
}

// NewHTTPServer wires the API routes on top of the shared app context.
// WriteTimeout is deliberately unset: SSE connections stay open for the
// whole debate.
func NewHTTPServer(addr string, app *AppContext) *HTTPServer {
	s := &HTTPServer{app: app}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/debate", s.handleStartDebate)
	mux.HandleFunc("GET /api/debate/{id}", s.handleGetDebate)
	mux.HandleFunc("GET /api/stream", s.handleStream)
	mux.HandleFunc("POST /api/evaluation/run", s.handleStartEvaluation)
	mux.HandleFunc("GET /api/evaluation/status/{id}", s.handleEvaluationStatus)
	mux.HandleFunc("GET /api/evaluation/runs", s.handleListRuns)
	mux.HandleFunc("GET /api/evaluation/runs/{run_id}", s.handleGetRun)
	mux.HandleFunc("GET /api/logs/{log_id}", s.handleGetLog)
	mux.HandleFunc("GET /api/comparison/list", s.handleListComparisons)
	mux.HandleFunc("GET /api/comparison/{id}", s.handleGetComparison)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}
	return s
}

// Handler returns the server's root handler, used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving and blocks until the server stops.
func (s *HTTPServer) Start() error {
	slog.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, defaultShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
