package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/splitledger/internal/adapter/http"
	"github.com/iho/splitledger/internal/adapter/http/handler"
	"github.com/iho/splitledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/splitledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/splitledger/internal/adapter/repository/redis"
	"github.com/iho/splitledger/internal/infrastructure/config"
	"github.com/iho/splitledger/internal/infrastructure/eventpublisher"
	"github.com/iho/splitledger/internal/infrastructure/logger"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
	"github.com/iho/splitledger/internal/infrastructure/postgres"
	"github.com/iho/splitledger/internal/infrastructure/redis"
	"github.com/iho/splitledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	zlog := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = zlog

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
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

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	policyRepo := postgresRepo.NewPolicyRepository(pool)
	snapshotRepo := postgresRepo.NewSnapshotRepository(pool)
	allocationRepo := postgresRepo.NewAllocationRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	payoutRepo := postgresRepo.NewPayoutRepository(pool)
	disputeRepo := postgresRepo.NewDisputeRepository(pool)
	periodLockRepo := postgresRepo.NewPeriodLockRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	policyCache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	// Initialize use cases
	policyUC := usecase.NewPolicyUseCase(policyRepo, policyCache, idGen, cfg.PolicyCacheTTL)
	periodLockUC := usecase.NewPeriodLockUseCase(txManager, periodLockRepo, outboxRepo, idGen)
	snapshotUC := usecase.NewSnapshotUseCase(txManager, policyUC, snapshotRepo, allocationRepo, outboxRepo, periodLockUC, idGen)
	approvalUC := usecase.NewApprovalUseCase(txManager, snapshotRepo, ledgerRepo, outboxRepo, periodLockUC, idGen, retrier)
	reversalUC := usecase.NewReversalUseCase(txManager, snapshotRepo, allocationRepo, ledgerRepo, outboxRepo, periodLockUC, idGen, retrier)
	payoutUC := usecase.NewPayoutUseCase(txManager, snapshotRepo, allocationRepo, payoutRepo, ledgerRepo, outboxRepo, periodLockUC, idGen, retrier)
	disputeUC := usecase.NewDisputeUseCase(txManager, disputeRepo, outboxRepo, idGen, cfg.DisputeSLAWindow)
	summaryUC := usecase.NewSummaryUseCase(snapshotRepo, allocationRepo, ledgerRepo, payoutRepo)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PolicyHandler:     handler.NewPolicyHandler(policyUC),
		SnapshotHandler:   handler.NewSnapshotHandler(snapshotUC, approvalUC, reversalUC),
		PayoutHandler:     handler.NewPayoutHandler(payoutUC),
		DisputeHandler:    handler.NewDisputeHandler(disputeUC),
		PeriodLockHandler: handler.NewPeriodLockHandler(periodLockUC),
		SummaryHandler:    handler.NewSummaryHandler(summaryUC),
		LedgerHandler:     handler.NewLedgerHandler(ledgerUC),
		HealthHandler:     handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:  idempotencyStore,
		RateLimiter:       middleware.NewRateLimiter(100, 200),
		Logger:            &zlog,
	})

	// Start outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(nil),
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && publisherCtx.Err() == nil {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Export pool utilization
	m := metrics.New()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-publisherCtx.Done():
				return
			case <-ticker.C:
				m.DBConnections.Set(float64(pool.Stat().AcquiredConns()))
			}
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         listenAddr(cfg.HTTPPort),
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

// listenAddr accepts either a bare port or a full host:port address.
func listenAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
