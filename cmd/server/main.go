package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/rukun/internal/adapter/http"
	"github.com/iho/rukun/internal/adapter/http/handler"
	"github.com/iho/rukun/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/rukun/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/rukun/internal/adapter/repository/redis"
	"github.com/iho/rukun/internal/infrastructure/auth"
	"github.com/iho/rukun/internal/infrastructure/config"
	"github.com/iho/rukun/internal/infrastructure/eventpublisher"
	"github.com/iho/rukun/internal/infrastructure/logger"
	"github.com/iho/rukun/internal/infrastructure/metrics"
	"github.com/iho/rukun/internal/infrastructure/postgres"
	"github.com/iho/rukun/internal/infrastructure/redis"
	"github.com/iho/rukun/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	// Run migrations
	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize metrics
	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	pollRepo := postgresRepo.NewPollRepository(pool)
	voteRepo := postgresRepo.NewVoteRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	tallyRepo := postgresRepo.NewTallyRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()
	clock := usecase.NewSystemClock()

	// Initialize use cases
	pollUC := usecase.NewPollUseCase(txManager, pollRepo, voteRepo, outboxRepo, idGen, clock, auditRepo, m)
	voteUC := usecase.NewVoteUseCase(txManager, pollRepo, voteRepo, outboxRepo, idGen, clock, retrier, auditRepo, m)
	ledgerUC := usecase.NewLedgerUseCase(txManager, txnRepo, outboxRepo, cache, idGen, clock, auditRepo, m)
	tallyUC := usecase.NewTallyUseCase(tallyRepo, m)

	// Initialize handlers
	pollHandler := handler.NewPollHandler(pollUC, voteUC)
	ledgerHandler := handler.NewLedgerHandler(ledgerUC, tallyUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Authentication is optional: without a secret the API trusts the
	// X-User-ID header, which is only acceptable behind a gateway.
	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		log.Info().Msg("JWT authentication enabled")
	} else {
		log.Warn().Msg("JWT authentication disabled, trusting X-User-ID header")
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PollHandler:      pollHandler,
		LedgerHandler:    ledgerHandler,
		HealthHandler:    healthHandler,
		JWTManager:       jwtManager,
		IdempotencyStore: idempotencyStore,
		RateLimiter:      rateLimiter,
		RequestLogger:    middleware.NewLoggingMiddleware(log.Logger),
	})

	// Start outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(slog.Default()),
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
		Metrics:    m,
	})

	go func() {
		if err := publisher.Start(publisherCtx); err != nil && publisherCtx.Err() == nil {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	stopPublisher()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
