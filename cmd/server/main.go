package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/lnstable/internal/adapter/http"
	"github.com/iho/lnstable/internal/adapter/http/handler"
	"github.com/iho/lnstable/internal/adapter/http/middleware"
	"github.com/iho/lnstable/internal/adapter/rail/lnbits"
	"github.com/iho/lnstable/internal/adapter/rail/lnmarkets"
	redisRepo "github.com/iho/lnstable/internal/adapter/repository/redis"
	"github.com/iho/lnstable/internal/app"
	"github.com/iho/lnstable/internal/infrastructure/auth"
	"github.com/iho/lnstable/internal/infrastructure/config"
	"github.com/iho/lnstable/internal/infrastructure/idgen"
	"github.com/iho/lnstable/internal/infrastructure/logger"
	"github.com/iho/lnstable/internal/infrastructure/metrics"
	"github.com/iho/lnstable/internal/infrastructure/redis"
	"github.com/iho/lnstable/internal/usecase"
)

const (
	limiterCleanupInterval = time.Minute
	limiterIdleTimeout     = 10 * time.Minute
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info().Str("driver", store.Driver).Msg("ledger store ready")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	logger.Info().Msg("connected to redis")

	invoices := lnbits.New(lnbits.Config{
		Host:       cfg.LNbitsHost,
		AdminKey:   cfg.LNbitsAdminKey,
		InvoiceKey: cfg.LNbitsInvoiceKey,
		WebhookURL: cfg.LNbitsWebhookURL,
		Expiry:     cfg.InvoiceExpiry,
		Timeout:    cfg.RailTimeout,
	}, m, logger)
	exchange := lnmarkets.New(lnmarkets.Config{
		Key:        cfg.LNMarketsKey,
		Secret:     cfg.LNMarketsSecret,
		Passphrase: cfg.LNMarketsPassphrase,
		Network:    cfg.LNMarketsNetwork,
		Timeout:    cfg.RailTimeout,
	}, m, logger)

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	settlementUC := usecase.NewSettlementUseCase(
		store.Ledger,
		redisRepo.NewPendingCreditTracker(redisClient),
		invoices,
		exchange,
		idgen.NewULIDGenerator(),
		usecase.SettlementConfig{
			SwapLimits:          cfg.SwapLimits(),
			FeePercent:          cfg.FeePercent,
			InvoiceExpiry:       cfg.InvoiceExpiry,
			ExchangeMinWithdraw: cfg.ExchangeMinWithdraw,
		},
		logger,
		m,
	)
	userUC := usecase.NewUserUseCase(store.Users, tokens)
	accountUC := usecase.NewAccountUseCase(store.Ledger)
	reconciliationUC := usecase.NewReconciliationUseCase(store.Ledger)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
	go sweepLimiter(ctx, rateLimiter)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		UserHandler:       handler.NewUserHandler(userUC),
		AccountHandler:    handler.NewAccountHandler(accountUC, reconciliationUC),
		SettlementHandler: handler.NewSettlementHandler(settlementUC, logger),
		HealthHandler: handler.NewHealthHandler(
			handler.Check{Name: store.Driver, Ping: store.Ping},
			handler.Check{Name: "redis", Ping: redisPing(redisClient)},
		),
		Tokens:           tokens,
		IdempotencyStore: redisRepo.NewIdempotencyStore(redisClient),
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Metrics:          m,
		Gatherer:         reg,
		Logger:           logger,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("starting server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func redisPing(client *goredis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// sweepLimiter drops per-IP limiters of clients that went quiet.
func sweepLimiter(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup(limiterIdleTimeout)
		}
	}
}
