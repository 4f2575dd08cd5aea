package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/strefex-app/walletd/internal/adapter/http"
	"github.com/strefex-app/walletd/internal/adapter/http/handler"
	apimiddleware "github.com/strefex-app/walletd/internal/adapter/http/middleware"
	postgresRepo "github.com/strefex-app/walletd/internal/adapter/repository/postgres"
	redisRepo "github.com/strefex-app/walletd/internal/adapter/repository/redis"
	"github.com/strefex-app/walletd/internal/infrastructure/auth"
	"github.com/strefex-app/walletd/internal/infrastructure/config"
	"github.com/strefex-app/walletd/internal/infrastructure/logger"
	"github.com/strefex-app/walletd/internal/infrastructure/metrics"
	"github.com/strefex-app/walletd/internal/infrastructure/notifier"
	"github.com/strefex-app/walletd/internal/infrastructure/postgres"
	"github.com/strefex-app/walletd/internal/infrastructure/redis"
	"github.com/strefex-app/walletd/internal/infrastructure/settlement"
	"github.com/strefex-app/walletd/internal/usecase"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	slogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	txRepo := postgresRepo.NewTransactionRepository(pool)
	escrowRepo := postgresRepo.NewEscrowRepository(pool)
	methodRepo := postgresRepo.NewMethodRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	codeStore := redisRepo.NewCodeStore(redisClient)
	spendTracker := redisRepo.NewSpendTracker(redisClient)
	cache := redisRepo.NewCache(redisClient)

	codeSender := notifier.NewLogSender(slogger)

	// Initialize use cases
	policy := usecase.NewSecurityPolicy(spendTracker)
	verificationUC := usecase.NewVerificationUseCase(walletRepo, codeStore, codeSender, idGen, m)
	walletUC := usecase.NewWalletUseCase(
		txManager, walletRepo, txRepo, methodRepo, outboxRepo, auditRepo,
		policy, verificationUC, idGen, m,
	)
	escrowUC := usecase.NewEscrowUseCase(
		txManager, walletRepo, escrowRepo, txRepo, outboxRepo, auditRepo,
		policy, verificationUC, idGen, m,
	)
	walletUC.SetEscrowFunder(escrowUC)
	methodUC := usecase.NewMethodUseCase(walletRepo, methodRepo, auditRepo, policy, verificationUC, idGen)
	securityUC := usecase.NewSecurityUseCase(walletRepo, auditRepo, idGen)
	settlementUC := usecase.NewSettlementUseCase(txManager, walletRepo, txRepo, outboxRepo, idGen, m)
	reconUC := usecase.NewReconciliationUseCase(walletRepo, escrowRepo)
	reconUC.SetCache(cache, 30*time.Second)

	// Initialize handlers
	walletHandler := handler.NewWalletHandler(walletUC, reconUC)
	escrowHandler := handler.NewEscrowHandler(escrowUC)
	methodHandler := handler.NewMethodHandler(methodUC)
	verificationHandler := handler.NewVerificationHandler(verificationUC)
	securityHandler := handler.NewSecurityHandler(securityUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	rateLimiter := apimiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		log.Info().Msg("authentication enabled")
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		WalletHandler:       walletHandler,
		EscrowHandler:       escrowHandler,
		MethodHandler:       methodHandler,
		VerificationHandler: verificationHandler,
		SecurityHandler:     securityHandler,
		HealthHandler:       healthHandler,
		IdempotencyStore:    idempotencyStore,
		JWTManager:          jwtManager,
		Metrics:             m,
		RateLimiter:         rateLimiter,
	})

	// Start the settlement worker
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()

	worker := settlement.NewWorker(settlement.Config{
		OutboxRepo: outboxRepo,
		Settler:    settlement.NewRetryingSettler(settlementUC, postgresRepo.NewRetrier().Retry),
		Publisher:  settlement.NewLogPublisher(slogger),
		Logger:     slogger,
		BatchSize:  cfg.SettlementBatchSize,
		Interval:   cfg.SettlementInterval,
	})
	go func() {
		if err := worker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("settlement worker stopped")
		}
	}()

	// Periodically drop idle per-IP limiters
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				rateLimiter.CleanupLimiters()
			}
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

	stopWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
