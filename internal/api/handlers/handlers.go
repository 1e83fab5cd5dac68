package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chynybekuuludastan/content_studio/internal/api/middleware"
	ws "github.com/chynybekuuludastan/content_studio/internal/api/websocket"
	"github.com/chynybekuuludastan/content_studio/internal/config"
	"github.com/chynybekuuludastan/content_studio/internal/database"
	"github.com/chynybekuuludastan/content_studio/internal/repository"
	"github.com/chynybekuuludastan/content_studio/internal/repository/cache"
	"github.com/chynybekuuludastan/content_studio/internal/service/content"
	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
	"github.com/chynybekuuludastan/content_studio/internal/service/usage"
	"github.com/chynybekuuludastan/content_studio/internal/settings"
)

// LLMClient is the provider facade the handlers call
type LLMClient interface {
	TestConnection(ctx context.Context, cfg llm.CallConfig) llm.CallResult
	GenerateContent(ctx context.Context, cfg llm.CallConfig, prompt string, opts llm.GenerationOptions) llm.CallResult
}

// Dependencies are shared by every handler
type Dependencies struct {
	Config  *config.Config
	DB      *database.DatabaseClient
	Repos   *repository.Factory
	Redis   *redis.Client
	Client  LLMClient
	Catalog *llm.Catalog
	Content *content.Service
	Hub     *ws.Hub
	Usage   *usage.Tracker
	Logger  *zap.Logger
}

func (d *Dependencies) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// settingsFor returns the settings repository of userID, cached in Redis when available
func (d *Dependencies) settingsFor(userID uuid.UUID) *settings.Repository {
	store := d.Repos.SettingRepository.Store(userID)
	if d.Redis != nil {
		var ttl time.Duration
		if d.Config != nil {
			ttl = d.Config.CacheTTL
		}
		store = cache.NewCachedStore(d.Redis, store, userID.String(), ttl)
	}
	repo := settings.NewRepository(store)
	if d.Config != nil {
		repo.WithDefaultProvider(llm.Provider(d.Config.DefaultProvider))
	}
	return repo
}

func (d *Dependencies) publish(userID uuid.UUID, eventType string, data interface{}) {
	if d.Hub != nil {
		d.Hub.Publish(userID, eventType, data)
	}
}

func (d *Dependencies) logActivity(ctx context.Context, userID uuid.UUID, action, entityType string, entityID uuid.UUID, details map[string]interface{}) {
	if err := d.Repos.UserActivityRepository.Log(ctx, userID, action, entityType, entityID, details); err != nil {
		d.logger().Warn("Failed to record user activity", zap.String("action", action), zap.Error(err))
	}
}

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func currentUser(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok || id == uuid.Nil {
		return uuid.Nil, errors.New("missing user")
	}
	return id, nil
}
