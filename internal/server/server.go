package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/astrosignal/astroalert/internal/domain"
	"github.com/astrosignal/astroalert/internal/server/handler"
	"github.com/astrosignal/astroalert/internal/server/middleware"
	"github.com/astrosignal/astroalert/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string

	// Rate limiting is applied only when a limiter is wired in.
	RateLimiter     domain.RateLimiter
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health   *handler.HealthHandler
	Objects  *handler.ObjectHandler
	Alerts   *handler.AlertHandler
	Update   *handler.UpdateHandler
	Maneuver *handler.ManeuverHandler
}

// Server is the HTTP + WebSocket API server for the conjunction engine.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (logging, CORS, optional rate limiting) and attaches
// the WebSocket hub.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Tracked-object endpoints.
	mux.HandleFunc("GET /api/objects", handlers.Objects.ListObjects)
	mux.HandleFunc("GET /api/objects/{id}", handlers.Objects.GetObject)

	// Alert log endpoint.
	mux.HandleFunc("GET /api/alerts", handlers.Alerts.ListAlerts)

	// Manual tick trigger.
	mux.HandleFunc("POST /api/update", handlers.Update.TriggerUpdate)

	// Maneuver suggestion.
	mux.HandleFunc("POST /api/objects/{id}/suggest_maneuver", handlers.Maneuver.SuggestManeuver)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws/orbits", wsHub.HandleWS)
	}

	// Build the middleware chain, innermost first.
	var h http.Handler = mux

	if cfg.RateLimiter != nil {
		h = middleware.RateLimit(cfg.RateLimiter, cfg.RateLimitMax, cfg.RateLimitWindow)(h)
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
