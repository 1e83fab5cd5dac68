package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"

	"github.com/chynybekuuludastan/content_studio/internal/api/handlers"
	"github.com/chynybekuuludastan/content_studio/internal/api/middleware"
	"github.com/chynybekuuludastan/content_studio/internal/metrics"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, deps *handlers.Dependencies, m *metrics.Metrics) {
	authHandler := handlers.NewAuthHandler(deps)
	userHandler := handlers.NewUserHandler(deps)
	providerHandler := handlers.NewProviderHandler(deps)
	settingsHandler := handlers.NewSettingsHandler(deps)
	llmHandler := handlers.NewLLMHandler(deps)
	contentHandler := handlers.NewContentHandler(deps)
	generationHandler := handlers.NewGenerationHandler(deps)
	wsHandler := handlers.NewWebSocketHandler(deps)

	jwt := middleware.JWTMiddleware(deps.Config, deps.Redis)

	if m != nil {
		app.Use(requestMetrics(m))
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	api := app.Group("/api")
	api.Get("/health", deps.Health)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", jwt, authHandler.RefreshToken)
	auth.Post("/logout", jwt, authHandler.Logout)
	auth.Get("/me", jwt, authHandler.GetMe)
	auth.Put("/password", jwt, authHandler.ChangePassword)

	// Provider catalog
	providers := api.Group("/providers")
	providers.Get("/", providerHandler.ListProviders)
	providers.Get("/models", providerHandler.ListCatalog)
	providers.Get("/:provider/models", providerHandler.ListModels)

	// Settings routes
	settings := api.Group("/settings", jwt)
	settings.Get("/", settingsHandler.GetSettings)
	settings.Put("/preferred-provider", settingsHandler.SetPreferredProvider)
	settings.Put("/providers/:provider", settingsHandler.UpdateProvider)
	settings.Put("/custom", settingsHandler.UpdateCustom)

	// Provider calls
	llmGroup := api.Group("/llm", jwt, middleware.EditorOrAdmin())
	llmGroup.Post("/test-connection", llmHandler.TestConnection)
	llmGroup.Post("/generate", llmHandler.Generate)

	content := api.Group("/content", jwt, middleware.EditorOrAdmin())
	content.Post("/outline", contentHandler.Outline)
	content.Post("/metadata", contentHandler.Metadata)
	content.Post("/schema", contentHandler.Schema)

	api.Get("/generations", jwt, generationHandler.ListMine)
	api.Get("/generations/usage", jwt, generationHandler.Usage)

	// Admin routes
	admin := api.Group("/admin", jwt, middleware.AdminOnly())
	admin.Get("/users", userHandler.ListUsers)
	admin.Get("/users/:id", userHandler.GetUser)
	admin.Put("/users/:id/role", userHandler.UpdateRole)
	admin.Delete("/users/:id", userHandler.DeleteUser)
	admin.Get("/generations", generationHandler.ListAll)
	admin.Get("/generations/stats", generationHandler.Stats)

	// WebSocket endpoint for generation events
	app.Use("/ws", jwt, wsHandler.Upgrade)
	app.Get("/ws/generations", websocket.New(wsHandler.HandleGenerations))
}

// requestMetrics counts requests by route pattern
func requestMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		code := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		m.ObserveRequest(c.Method(), c.Route().Path, code)
		return err
	}
}
