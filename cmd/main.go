package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"maintitrack/internal/config"
	"maintitrack/internal/handlers"
	"maintitrack/internal/jobs"
	"maintitrack/internal/jobs/background"
	"maintitrack/internal/ledger"
	"maintitrack/internal/middleware"
	"maintitrack/internal/persistence"
	"maintitrack/internal/services"
	"maintitrack/pkg/clients/anthropic"
	"maintitrack/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog := logger.Must(logger.New(cfg.Server.LogLevel))
	defer zlog.Sync()

	ctx := context.Background()

	// Redis backs both the snapshot store and the insight cache.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		zlog.Fatal("failed to connect to redis", zap.Error(err))
	}

	proofSvc, err := services.NewProofService(
		cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL)
	if err != nil {
		zlog.Fatal("failed to initialize proof storage", zap.Error(err))
	}
	if err := proofSvc.EnsureBucket(ctx); err != nil {
		zlog.Warn("could not ensure proof bucket, uploads may fail", zap.Error(err))
	}

	store := persistence.NewRedisSnapshotStore(redisClient)
	ledgerSvc := ledger.New(store, logger.Named(zlog, "ledger"))
	if err := ledgerSvc.Restore(ctx); err != nil {
		zlog.Fatal("failed to restore ledger state", zap.Error(err))
	}

	var aiClient anthropic.Client
	if cfg.AI.AnthropicKey != "" {
		aiClient = anthropic.NewClient(cfg.AI.AnthropicKey)
	} else {
		zlog.Warn("no anthropic api key configured, insights will serve the fallback report")
	}
	insightCache := persistence.NewRedisInsightCache(redisClient)
	insightSvc := services.NewInsightService(ledgerSvc, aiClient, insightCache, logger.Named(zlog, "insights"))

	authHandlers := handlers.NewAuthHandlers(cfg.Auth.JWTSecret, cfg.Auth.AccessCode)
	inventoryHandlers := handlers.NewInventoryHandlers(ledgerSvc)
	loanHandlers := handlers.NewLoanHandlers(ledgerSvc, proofSvc)
	historyHandlers := handlers.NewHistoryHandlers(ledgerSvc)
	categoryHandlers := handlers.NewCategoryHandlers(ledgerSvc)
	insightHandlers := handlers.NewInsightHandlers(insightSvc)
	healthHandlers := handlers.NewHealthHandlers(redisClient, proofSvc)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.Readiness)

	v1 := e.Group("/v1")
	v1.POST("/auth/login", authHandlers.Login)

	protected := v1.Group("", middleware.JWTMiddleware(cfg.Auth.JWTSecret))

	protected.GET("/items", inventoryHandlers.ListItems)
	protected.GET("/items/sku-preview", inventoryHandlers.GenerateSKU)
	protected.GET("/items/:id", inventoryHandlers.GetItem)
	protected.POST("/items/receive", inventoryHandlers.ReceiveStock)
	protected.PUT("/items/:id/adjust", inventoryHandlers.AdjustStock)
	protected.DELETE("/items/:id", inventoryHandlers.DeleteItem)

	protected.GET("/loans", loanHandlers.ListLoans)
	protected.POST("/loans", loanHandlers.Borrow)
	protected.POST("/loans/:id/return", loanHandlers.Return)
	protected.POST("/proofs", loanHandlers.UploadProof)
	protected.GET("/proofs/:object", loanHandlers.ProofURL)
	protected.DELETE("/proofs/:object", loanHandlers.DeleteProof)

	protected.GET("/history", historyHandlers.ListHistory)
	protected.GET("/history/incidents", historyHandlers.ListIncidents)
	protected.GET("/history/export", historyHandlers.ExportCSV)

	protected.GET("/categories", categoryHandlers.ListCategories)
	protected.POST("/categories", categoryHandlers.CreateCategory)
	protected.DELETE("/categories/:name", categoryHandlers.DeleteCategory)

	protected.GET("/insights", insightHandlers.GetInsights)
	protected.POST("/insights/refresh", insightHandlers.RefreshInsights)

	if cfg.Jobs.Enabled {
		alertSvc := jobs.NewAlertService(ledgerSvc, logger.Named(zlog, "alerts"))
		intervals := background.Intervals{Alerts: cfg.Jobs.AlertInterval, Insight: cfg.Jobs.InsightInterval}
		scheduler, err := background.NewJobScheduler(alertSvc, insightSvc, intervals, logger.Named(zlog, "scheduler"))
		if err != nil {
			zlog.Fatal("failed to create job scheduler", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	e.Logger.Fatal(e.Start(":" + cfg.Server.Port))
}
