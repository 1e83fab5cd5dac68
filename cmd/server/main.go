package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/chynybekuuludastan/content_studio/internal/api"
	"github.com/chynybekuuludastan/content_studio/internal/api/handlers"
	ws "github.com/chynybekuuludastan/content_studio/internal/api/websocket"
	"github.com/chynybekuuludastan/content_studio/internal/config"
	"github.com/chynybekuuludastan/content_studio/internal/database"
	"github.com/chynybekuuludastan/content_studio/internal/database/seed"
	"github.com/chynybekuuludastan/content_studio/internal/logger"
	"github.com/chynybekuuludastan/content_studio/internal/metrics"
	"github.com/chynybekuuludastan/content_studio/internal/repository"
	"github.com/chynybekuuludastan/content_studio/internal/service/content"
	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
	"github.com/chynybekuuludastan/content_studio/internal/service/llm/providers"
	"github.com/chynybekuuludastan/content_studio/internal/service/parser"
	"github.com/chynybekuuludastan/content_studio/internal/service/usage"
)

// @title Content Studio API
// @version 1.0
// @description Multi-provider LLM gateway with SEO content generators
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@contentstudio.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := config.NewConfig()

	zl, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := openDatabase(cfg, zl)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer db.Close()

	if err := seed.Run(db.DB, cfg.AdminEmail, cfg.AdminPassword, zl); err != nil {
		zl.Fatal("Failed to seed database", zap.Error(err))
	}

	// Redis only backs the settings cache and token revocation
	var redisClient *database.RedisClient
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	redisClient, err = database.InitRedis(ctx, cfg.RedisURI)
	cancel()
	if err != nil {
		zl.Warn("Redis unavailable, running without cache", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	catalog := llm.DefaultCatalog()
	if cfg.ModelCatalogPath != "" {
		if catalog, err = llm.LoadCatalogFile(cfg.ModelCatalogPath); err != nil {
			zl.Fatal("Failed to load model catalog", zap.String("path", cfg.ModelCatalogPath), zap.Error(err))
		}
	}

	m := metrics.New()
	llmLogger := llm.NewZapLogger(zl.Named("llm"))
	client := llm.NewClient(llm.ClientOptions{
		Dispatcher:     providers.NewFactory(providers.DefaultHTTPClients(cfg.LLMRequestTimeout)),
		RequestTimeout: cfg.LLMRequestTimeout,
		Logger:         llmLogger,
		Observer:       m,
	})

	fetcher := parser.NewFetcher(parser.Options{Timeout: cfg.PageFetchTimeout})

	hub := ws.NewHub(zl.Named("ws"))
	go hub.Run()
	defer hub.Stop()

	deps := &handlers.Dependencies{
		Config:  cfg,
		DB:      db,
		Repos:   repository.NewRepositoryFactory(db.DB),
		Client:  client,
		Catalog: catalog,
		Content: content.NewService(client, fetcher, llmLogger),
		Hub:     hub,
		Logger:  zl,
	}
	if redisClient != nil {
		deps.Redis = redisClient.Client
	}
	deps.Usage = usage.NewTracker(deps.Redis, 0)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				zl.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH",
	}))

	api.SetupSwagger(app)
	api.SetupRoutes(app, deps, m)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	zl.Info("Server started", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	zl.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zl.Error("Server shutdown failed", zap.Error(err))
	}
}

func openDatabase(cfg *config.Config, zl *zap.Logger) (*database.DatabaseClient, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return database.InitSQLite(cfg.SQLitePath, zl)
	case "postgres", "":
		return database.InitPostgreSQL(cfg.PostgresURI, zl)
	default:
		return nil, errors.New("unsupported DB_DRIVER " + cfg.DBDriver)
	}
}
