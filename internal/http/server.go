// Package http exposes the expense tracker as a JSON API. It authenticates
// callers, translates domain errors to status codes, and hands every
// operation an explicit account id; the services below never see a request.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "outlay/internal/log"
	"outlay/internal/services"
)

type Server struct {
	http.Server
	accounts    *services.AccountService
	expenses    *services.ExpenseService
	logger      *applog.Logger
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, accounts *services.AccountService, expenses *services.ExpenseService, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		accounts:    accounts,
		expenses:    expenses,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/register", s.withSecurity(s.handleRegister))
	mux.HandleFunc("POST /api/login", s.withSecurity(s.handleLogin))
	mux.HandleFunc("POST /api/logout", s.withSecurity(s.requireAuth(s.handleLogout)))

	mux.HandleFunc("POST /api/expenses", s.withSecurity(s.requireAuth(s.handleCreateExpense)))
	mux.HandleFunc("GET /api/expenses", s.withSecurity(s.requireAuth(s.handleListExpenses)))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withSecurity(s.requireAuth(s.handleDeleteExpense)))

	mux.HandleFunc("GET /api/summary", s.withSecurity(s.requireAuth(s.handleSummary)))
	mux.HandleFunc("GET /api/profile", s.withSecurity(s.requireAuth(s.handleProfile)))
	mux.HandleFunc("GET /api/export/csv", s.withSecurity(s.requireAuth(s.handleExportCSV)))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurity adds security headers, rate limiting and request logging.
func (s *Server) withSecurity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := clientAddr(r)
		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		s.logger.DebugContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		// Rate limit mutating requests only.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.logger.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

// requireAuth resolves the bearer token to an account id before the handler
// runs; the services only ever see the resolved id.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := s.accounts.AccountForToken(r.Context(), bearerToken(r))
		if err != nil {
			writeDomainError(w, r, s.logger, err)
			return
		}
		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		next(w, r.WithContext(ctx))
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
