package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"perfdash-backend/internal/config"
	"perfdash-backend/internal/database"
	"perfdash-backend/internal/handlers"
	"perfdash-backend/internal/middleware"
	"perfdash-backend/internal/models"
	"perfdash-backend/internal/repository"
	"perfdash-backend/internal/router"
	"perfdash-backend/internal/services"
	"perfdash-backend/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	logger, err := config.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("✗ Logger initialization failed: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("🚀 Starting Performance Dashboard Backend...")
	logger.Info("✓ Environment variables loaded", zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Step 2: Initialize Redis (optional) ────
	wsHub := websocket.NewHub(cfg.FrontendURL, logger)
	noticeLog := services.NewNoticeLog(50)
	notifier := services.MultiNotifier{noticeLog}

	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Fatal("✗ Redis connection failed", zap.Error(err))
		}
		defer redisClient.Close()

		notifier = append(notifier, services.NewRedisNotifier(redisClient, logger))
		go wsHub.Subscribe(ctx, redisClient, services.DashboardChannel)
		logger.Info("✓ Redis connected, notices fan out via pub/sub")
	} else {
		notifier = append(notifier, wsHub)
	}

	// ──── Step 3: Initialize Record Store ────
	var store repository.RecordStore
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		if err := cfg.StoreCheck(); err != nil {
			logger.Fatal("✗ PostgreSQL not configured", zap.Error(err))
		}
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns)
		if err != nil {
			logger.Fatal("✗ PostgreSQL connection failed", zap.Error(err))
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool, logger); err != nil {
			logger.Fatal("✗ Database migration failed", zap.Error(err))
		}
		store = repository.NewRecordRepo(pool)
		logger.Info("✓ PostgreSQL connected, migrations applied")
	default:
		store = repository.NewSheetRepo(cfg.SheetURL, repository.WithStrictWrites(cfg.SheetStrictWrites))
		if err := cfg.StoreCheck(); err != nil {
			logger.Warn("✗ Sheet store not configured, records stay local", zap.Error(err))
		} else {
			logger.Info("✓ Sheet store configured", zap.Bool("strict_writes", cfg.SheetStrictWrites))
		}
	}

	opts := []services.RecordControllerOption{services.WithStoreCheck(cfg.StoreCheck)}
	if cfg.SeedSampleData {
		opts = append(opts, services.WithDefaults(models.SampleRecords()))
	}
	records := services.NewRecordController(store, notifier, logger, opts...)

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	res := records.Load(loadCtx)
	cancel()
	logger.Info("✓ Records loaded", zap.String("source", res.Source), zap.Int("count", len(res.Records)))

	// ──── Step 4: Initialize Gemini Client ────
	var client services.ExtractionClient
	if err := cfg.ExtractionCheck(); err != nil {
		logger.Warn("✗ Gemini not configured, extraction disabled", zap.Error(err))
	} else {
		gemini, err := services.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiRequestsPerMin, cfg.GeminiConcurrentReqs, logger)
		if err != nil {
			logger.Fatal("✗ Gemini client initialization failed", zap.Error(err))
		}
		defer gemini.Close()
		client = gemini
		logger.Info("✓ Gemini client initialized", zap.Strings("models", cfg.GeminiModels))
	}

	orchestrator := services.NewOrchestrator(client, services.OrchestratorConfig{
		Models: cfg.GeminiModels,
		Retry: services.RetryPolicy{
			MaxRetries:   cfg.ExtractionMaxRetries,
			InitialDelay: cfg.ExtractionRetryDelay,
		},
		Cooldown:           cfg.ModelCooldown,
		TikTokAccount:      cfg.TikTokAccount,
		DefaultMainProduct: models.MainProduct(cfg.DefaultMainProduct),
	}, logger)
	intake := services.NewIntake(orchestrator, records, cfg.ExtractionCheck, logger)

	// ──── Step 5: Start HTTP Server ────
	extractLimiter := middleware.NewRateLimiter(cfg.ExtractRateLimit, time.Minute)
	go extractLimiter.Cleanup(ctx.Done())

	r := router.New(
		handlers.NewRecordHandler(records),
		handlers.NewExtractionHandler(intake, logger),
		handlers.NewNoticeHandler(noticeLog),
		extractLimiter,
		wsHub,
		cfg.FrontendURL,
		logger,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info(fmt.Sprintf("✓ Performance Dashboard Backend ready on http://localhost:%s", cfg.Port))
	logger.Info(fmt.Sprintf("  API: http://localhost:%s/api/v1", cfg.Port))
	logger.Info(fmt.Sprintf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("Server error", zap.Error(err))
	}

	records.Wait()
	logger.Info("✓ Pending store writes flushed")
}
