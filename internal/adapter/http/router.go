package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/lnstable/internal/adapter/http/handler"
	"github.com/iho/lnstable/internal/adapter/http/middleware"
	"github.com/iho/lnstable/internal/infrastructure/metrics"
	"github.com/iho/lnstable/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	UserHandler       *handler.UserHandler
	AccountHandler    *handler.AccountHandler
	SettlementHandler *handler.SettlementHandler
	HealthHandler     *handler.HealthHandler
	Tokens            middleware.TokenVerifier
	IdempotencyStore  usecase.IdempotencyStore
	IdempotencyTTL    time.Duration
	RateLimiter       *middleware.RateLimiter
	Metrics           *metrics.Metrics
	Gatherer          prometheus.Gatherer
	Logger            zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// Unauthenticated endpoints are rate limited per client IP.
	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}
		r.Post("/api/create", cfg.UserHandler.Create)
		r.Post("/api/auth", cfg.UserHandler.Auth)
	})

	// LNbits delivers every notification from the same address, so the webhook
	// is not subject to the per-IP limiter. Each call is checked against LNbits.
	r.Post("/api/v1/lnbits/webhook", cfg.SettlementHandler.Webhook)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Tokens, cfg.Metrics))

		r.Get("/api/balance", cfg.AccountHandler.Balance)
		r.Get("/api/balances", cfg.AccountHandler.Balances)
		r.Get("/api/transaction/{txid}", cfg.AccountHandler.Transaction)
		r.Get("/api/transactions", cfg.AccountHandler.Transactions)
		r.Get("/api/reconcile", cfg.AccountHandler.Reconcile)
		r.Post("/api/deposit", cfg.SettlementHandler.Deposit)

		r.Group(func(r chi.Router) {
			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
			}
			r.Post("/api/swap", cfg.SettlementHandler.Swap)
			r.Post("/api/withdraw", cfg.SettlementHandler.Withdraw)
		})
	})

	return r
}
