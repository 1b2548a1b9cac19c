// Package server exposes the HTTP API: search dispatch, the credits report,
// query history, and a health probe.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"prism/internal/config"
	"prism/internal/credits"
	"prism/internal/logging"
	"prism/internal/search"
	"prism/internal/store"
)

// Server hosts the HTTP API.
type Server struct {
	bind           string
	requestTimeout time.Duration
	logger         *slog.Logger

	orchestrator *search.Orchestrator
	credits      *credits.Service
	store        *store.Store

	listener net.Listener
	server   *http.Server
}

// New wires the API server. The store may be nil in tests that exercise only
// the search path.
func New(cfg *config.Config, orchestrator *search.Orchestrator, creditsSvc *credits.Service, st *store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := 300 * time.Second
	if cfg.Server.RequestTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second
	}
	srv := &Server{
		bind:           strings.TrimSpace(cfg.Server.Bind),
		requestTimeout: timeout,
		logger:         logging.NewComponentLogger(logger, "api-server"),
		orchestrator:   orchestrator,
		credits:        creditsSvc,
		store:          st,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search", srv.handleSearch)
	mux.HandleFunc("/credits", srv.handleCredits)
	mux.HandleFunc("/history", srv.handleHistory)
	mux.HandleFunc("/healthz", srv.handleHealthz)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      timeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler returns the route mux, used by tests.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// Start begins serving and returns immediately. The server shuts down when
// ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound address once the server is started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}
