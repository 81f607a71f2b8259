// ABOUTME: HTTP server exposing the auth API
// ABOUTME: Route registration, method gating, and graceful shutdown

package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// AccountService is the surface the API layer needs from the account service.
type AccountService interface {
	Register(ctx context.Context, email, password, name string) error
	Login(ctx context.Context, email, password string) (string, error)
	AdminLogin(ctx context.Context, email, password string) (string, error)
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// Server serves the auth HTTP API.
type Server struct {
	accounts AccountService
	logger   *slog.Logger
	httpSrv  *http.Server
}

// New creates an API server listening on addr.
func New(addr string, accounts AccountService) *Server {
	s := &Server{
		accounts: accounts,
		logger:   slog.Default().With("component", "api"),
	}

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler builds the route table. Exposed separately so tests can drive the
// full middleware stack through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/api/auth/register", s.authRoute(s.handleRegister))
	mux.Handle("/api/auth/login", s.authRoute(s.handleLogin))
	mux.Handle("/api/auth/admin-login", s.authRoute(s.handleAdminLogin))
	mux.Handle("/api/auth/request-reset", s.authRoute(s.handleRequestReset))
	mux.Handle("/api/auth/reset", s.authRoute(s.handleReset))

	return mux
}

// authRoute wraps an auth handler with CORS and the POST-only method gate.
func (s *Server) authRoute(handler http.HandlerFunc) http.Handler {
	return withCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "error": "method not allowed"})
			return
		}
		handler(w, r)
	}))
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")
	return s.httpSrv.Shutdown(shutdownCtx)
}
