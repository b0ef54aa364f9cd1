// Package api exposes the question-answering pipeline and the
// contribution workflow over HTTP.
//
// Endpoints:
//
//	POST /api/ask                        answer a question
//	POST /api/contributions              submit a contribution
//	GET  /api/contributions              list pending contributions
//	POST /api/contributions/{id}/approve approve and reindex
//	POST /api/contributions/{id}/reject  reject
//	GET  /health                         liveness probe
//	GET  /ready                          readiness probe
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: recovery, CORS, request logging
//   - ask.go: question answering endpoint
//   - contribution.go: contribution and moderation endpoints
//   - health.go: probes
//   - response.go: JSON response helpers
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8000"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds request header reads.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Generation against a cold model can take minutes.
	WriteTimeout = 5 * time.Minute

	// IdleTimeout is the keep-alive idle limit.
	IdleTimeout = 120 * time.Second
)

// Server is the HTTP server for the Q&A API.
type Server struct {
	mux    *http.ServeMux
	cors   *cors.Cors
	logger *slog.Logger

	ask          *AskHandler
	contribution *ContributionHandler
	health       *HealthHandler
}

// NewServer registers all routes. corsOrigins configures allowed
// cross-origin callers; ["*"] allows everyone.
func NewServer(router Asker, store ContributionStore, kb KnowledgeStore, corsOrigins []string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	s := &Server{
		mux: mux,
		cors: cors.New(cors.Options{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
		}),
		logger:       logger,
		ask:          NewAskHandler(router, logger),
		contribution: NewContributionHandler(store, kb, logger),
		health:       NewHealthHandler(kb, logger),
	}

	s.ask.RegisterRoutes(mux)
	s.contribution.RegisterRoutes(mux)
	s.health.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Order: recovery → CORS → logging → mux.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		s.recoveryMiddleware,
		s.cors.Handler,
		s.loggingMiddleware,
	)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
