package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/rukun/internal/adapter/http/handler"
	"github.com/iho/rukun/internal/adapter/http/middleware"
	"github.com/iho/rukun/internal/infrastructure/auth"
	"github.com/iho/rukun/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PollHandler      *handler.PollHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	JWTManager       *auth.JWTManager
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	RequestLogger    *middleware.LoggingMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.RequestLogger != nil {
		r.Use(cfg.RequestLogger.Wrap)
	}
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTManager))

		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Polls
		r.Route("/polls", func(r chi.Router) {
			r.Post("/", cfg.PollHandler.Create)
			r.Get("/", cfg.PollHandler.List)
			r.Get("/{id}", cfg.PollHandler.Get)
			r.Post("/{id}/votes", cfg.PollHandler.Vote)
			r.Post("/{id}/close", cfg.PollHandler.Close)
		})

		// Finance ledger
		r.Route("/ledger", func(r chi.Router) {
			r.Post("/transactions", cfg.LedgerHandler.Record)
			r.Get("/transactions", cfg.LedgerHandler.List)
			r.Get("/transactions/{id}", cfg.LedgerHandler.Get)
			r.Get("/summary", cfg.LedgerHandler.Summary)
			r.Get("/consistency", cfg.LedgerHandler.Consistency)
		})
	})

	return r
}
