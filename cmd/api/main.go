package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/askmyrace/backend/internal/api/handlers"
	rediscache "github.com/askmyrace/backend/internal/cache/redis"
	"github.com/askmyrace/backend/internal/docstore"
	"github.com/askmyrace/backend/internal/ingestion"
	"github.com/askmyrace/backend/internal/llm"
	"github.com/askmyrace/backend/internal/metrics"
	"github.com/askmyrace/backend/internal/middleware/ratelimit"
	"github.com/askmyrace/backend/internal/middleware/security"
	"github.com/askmyrace/backend/internal/middleware/validation"
	"github.com/askmyrace/backend/internal/query"
	"github.com/askmyrace/backend/pkg/config"
	appLogger "github.com/askmyrace/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting race guide API server")

	metrics.Init()

	var cache *rediscache.Client
	if cfg.Redis.Enabled {
		cache, err = rediscache.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, caching disabled", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
	)

	store := docstore.NewStore()
	chunker := ingestion.NewChunker(cfg.Ingestion.ChunkSize, cfg.Ingestion.ChunkOverlap)
	processor := ingestion.NewProcessor(llmClient, store, chunker)

	cacheTTL := time.Duration(cfg.Redis.AnswerTTLMin) * time.Minute
	queryEngine := query.NewEngine(store, llmClient, cache, cfg.Retrieval.TopK, cacheTTL)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: cfg.Logging.Level == "debug",
	}))

	uploadLimiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.UploadsPerMinute,
		Message:              "Too many uploads from this IP. Try again later.",
		Logger:               appLogger.GetLogger(),
	})
	defer uploadLimiter.Stop()

	askLimiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.QuestionsPerMinute,
		Message:              "Too many questions from this IP. Please slow down.",
		Logger:               appLogger.GetLogger(),
	})
	defer askLimiter.Stop()

	askValidator := validation.AskMiddleware(validation.Config{
		Logger: appLogger.GetLogger(),
	})

	maxPDFSize := int64(cfg.Ingestion.MaxPDFSizeMB) * 1024 * 1024
	documentHandler := handlers.NewDocumentHandler(processor, store, cache, maxPDFSize)
	queryHandler := handlers.NewQueryHandler(queryEngine)

	api := app.Group("/api/v1")

	api.Post("/documents", uploadLimiter.Middleware(), documentHandler.HandleUpload)
	api.Get("/documents", documentHandler.HandleListDocuments)
	api.Get("/documents/:id/schedule", documentHandler.HandleGetSchedule)

	api.Post("/ask", askLimiter.Middleware(), askValidator, queryHandler.HandleAsk)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
