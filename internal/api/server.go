// Package api serves the cipher dispatcher over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"cipherkit/internal/config"
	"cipherkit/internal/dispatch"
)

// Server represents the HTTP API server
type Server struct {
	router  *mux.Router
	server  *http.Server
	addr    string
	logger  *slog.Logger
	cipher  *dispatch.Dispatcher
	chat    *dispatch.Dispatcher
	started time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithChatDispatcher answers /v1/messages with a separate dispatcher,
// typically one journaling under the chat source.
func WithChatDispatcher(d *dispatch.Dispatcher) Option {
	return func(s *Server) { s.chat = d }
}

// NewServer creates a new HTTP server instance
func NewServer(cfg config.ServerConfig, d *dispatch.Dispatcher, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		addr:    cfg.Addr,
		logger:  logger,
		cipher:  d,
		chat:    d,
		router:  mux.NewRouter(),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.applyMiddleware(s.router),
		ReadTimeout:  seconds(cfg.ReadTimeoutSec, 15),
		WriteTimeout: seconds(cfg.WriteTimeoutSec, 15),
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}

// Start listens on the configured address and blocks until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Starting HTTP server", "addr", ln.Addr().String())

	if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully")
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Last applied runs first.
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	return handler
}
