// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

// Package web exposes the account engine over an HTTP JSON API.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/codeplanet/usercenter/internal/account"
	"github.com/codeplanet/usercenter/internal/observability"
	"github.com/codeplanet/usercenter/internal/session"
)

// Config carries the web server settings.
type Config struct {
	// Addr is the listen address in "host:port" format.
	Addr string
	// LoginStateKey is the session key login state is stored under.
	LoginStateKey string
	// AdminRole is the role ordinal granted administrative access.
	AdminRole int
	// SessionTTL bounds the session cookie lifetime.
	SessionTTL time.Duration
}

// Server serves the account API.
type Server struct {
	cfg        Config
	svc        *account.Service
	sessions   *session.Store
	metrics    *observability.Metrics
	logger     *slog.Logger
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates a Server. metrics may be nil; requests are then served
// without instrumentation.
func NewServer(cfg Config, svc *account.Service, sessions *session.Store, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, oops.Errorf("account service is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("session store is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.LoginStateKey == "" {
		return nil, oops.Errorf("login state key is required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}
	return &Server{
		cfg:      cfg,
		svc:      svc,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// Handler returns the API route table. Exposed for httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/register", s.instrument("register", s.handleRegister))
	mux.HandleFunc("POST /api/users/login", s.instrument("login", s.handleLogin))
	mux.HandleFunc("POST /api/users/logout", s.instrument("logout", s.handleLogout))
	mux.HandleFunc("GET /api/users/search", s.instrument("search", s.handleSearch))
	mux.HandleFunc("GET /api/users/delete", s.instrument("delete", s.handleDelete))
	return mux
}

// instrument wraps a handler with request logging and metrics.
func (s *Server) instrument(op string, next func(http.ResponseWriter, *http.Request) int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		code := next(w, r)
		s.logger.InfoContext(r.Context(), "request handled",
			"op", op,
			"code", code,
			"duration_ms", time.Since(start).Milliseconds())
		if s.metrics != nil {
			s.metrics.RequestsTotal.WithLabelValues(op, strconv.Itoa(code)).Inc()
		}
	}
}

// Start begins serving the API. The returned channel receives any error from
// the HTTP server after startup and is closed on graceful shutdown.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("web server already running")
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.cfg.Addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("web server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("web server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_web_server").Wrap(err)
		}
	}

	s.logger.Info("web server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
