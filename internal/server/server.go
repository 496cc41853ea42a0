// Package server exposes the read-mostly HTTP + WebSocket API over the
// latest reconciliation pass: comparison and venue views, fee parameter
// control, and the alert audit trail.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/minglew/perpscope/internal/server/handler"
	"github.com/minglew/perpscope/internal/server/middleware"
	"github.com/minglew/perpscope/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled

	// Per-client request rate limit. Zero disables rate limiting.
	RateLimit       int
	RateLimitWindow time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
// Alerts may be nil when the server runs without Postgres; its route is then
// not registered.
type Handlers struct {
	Health     *handler.HealthHandler
	Comparison *handler.ComparisonHandler
	Venues     *handler.VenuesHandler
	Fees       *handler.FeesHandler
	Alerts     *handler.AlertsHandler
}

// Server is the HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// RateLimiterFunc matches middleware.RateLimit's limiter dependency so the
// caller can pass nil to disable rate limiting without importing domain here.
type RateLimiterFunc = func(http.Handler) http.Handler

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (auth, logging, CORS, optional rate limiting) and
// attaches the WebSocket hub. rateLimit may be nil.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, rateLimit RateLimiterFunc, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Latest reconciliation pass.
	mux.HandleFunc("GET /api/comparison", handlers.Comparison.GetLatest)

	// Per-venue instrument views.
	mux.HandleFunc("GET /api/venues/{venue}/instruments", handlers.Venues.ListInstruments)

	// Fee parameter control.
	mux.HandleFunc("GET /api/fees/params", handlers.Fees.GetParams)
	mux.HandleFunc("PUT /api/fees/params", handlers.Fees.PutParams)

	// Alert audit trail (requires Postgres).
	if handlers.Alerts != nil {
		mux.HandleFunc("GET /api/alerts/recent", handlers.Alerts.ListRecent)
	}

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain, innermost first.
	var h http.Handler = mux

	h = middleware.Auth(cfg.APIKey)(h)
	if rateLimit != nil {
		h = rateLimit(h)
	}
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
