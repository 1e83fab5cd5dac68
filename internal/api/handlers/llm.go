package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	ws "github.com/chynybekuuludastan/content_studio/internal/api/websocket"
	"github.com/chynybekuuludastan/content_studio/internal/models"
	"github.com/chynybekuuludastan/content_studio/internal/repository"
	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
	"github.com/chynybekuuludastan/content_studio/internal/settings"
)

// LLMHandler exposes the provider facade over HTTP
type LLMHandler struct {
	*Dependencies
}

// NewLLMHandler creates a new LLM handler
func NewLLMHandler(deps *Dependencies) *LLMHandler {
	return &LLMHandler{Dependencies: deps}
}

// CallRequest selects the provider of a call. When APIKey is present the
// request carries the whole config; otherwise the stored settings of the
// user are used and Model only overrides the stored model.
type CallRequest struct {
	Provider  string  `json:"provider,omitempty" example:"openai"`
	APIKey    *string `json:"api_key,omitempty"`
	Model     *string `json:"model,omitempty" example:"gpt-4o"`
	Endpoint  *string `json:"endpoint,omitempty"`
	VerifyTLS *bool   `json:"verify_tls,omitempty"`
}

// GenerationSettings tunes a generation request
type GenerationSettings struct {
	SystemPrompt *string  `json:"system_prompt,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty" example:"0.7"`
	MaxTokens    *int     `json:"max_tokens,omitempty" example:"1000"`
}

// Options returns the generation options of the request
func (s GenerationSettings) Options() llm.GenerationOptions {
	return llm.GenerationOptions{
		SystemPrompt: s.SystemPrompt,
		Temperature:  s.Temperature,
		MaxTokens:    s.MaxTokens,
	}
}

// GenerateRequest is the body of POST /llm/generate
type GenerateRequest struct {
	CallRequest
	GenerationSettings
	Prompt string `json:"prompt" example:"Write a tagline for a coffee shop"`
}

// callConfigError marks config problems that are the caller's fault
type callConfigError struct {
	err error
}

func (e *callConfigError) Error() string { return e.err.Error() }

func (e *callConfigError) Unwrap() error { return e.err }

// resolveConfig turns a CallRequest into a CallConfig for userID
func (d *Dependencies) resolveConfig(ctx context.Context, userID uuid.UUID, req CallRequest) (llm.CallConfig, error) {
	var provider llm.Provider
	if strings.TrimSpace(req.Provider) != "" {
		p, err := llm.ParseProvider(req.Provider)
		if err != nil {
			return llm.CallConfig{}, &callConfigError{err: err}
		}
		provider = p
	}

	if req.APIKey != nil {
		if provider == "" {
			return llm.CallConfig{}, &callConfigError{err: errors.New("provider is required with an explicit api_key")}
		}
		cfg := llm.CallConfig{Provider: provider, APIKey: *req.APIKey, VerifyTLS: req.VerifyTLS}
		if req.Model != nil {
			cfg.Model = *req.Model
		}
		if req.Endpoint != nil {
			cfg.Endpoint = *req.Endpoint
		}
		return cfg, nil
	}

	cfg, err := settings.NewResolver(d.settingsFor(userID)).ResolveConfig(ctx, provider)
	if errors.Is(err, settings.ErrInvalidProvider) {
		return llm.CallConfig{}, &callConfigError{err: err}
	}
	if err != nil {
		return llm.CallConfig{}, err
	}
	if req.Model != nil && *req.Model != "" {
		cfg.Model = *req.Model
	}
	if req.Endpoint != nil && cfg.Provider == llm.ProviderCustom {
		cfg.Endpoint = *req.Endpoint
	}
	if req.VerifyTLS != nil {
		cfg.VerifyTLS = req.VerifyTLS
	}
	return cfg, nil
}

// configError writes the response for a resolveConfig failure
func configError(c *fiber.Ctx, err error) error {
	var bad *callConfigError
	if errors.As(err, &bad) {
		return errorResponse(c, fiber.StatusBadRequest, bad.Error())
	}
	return errorResponse(c, fiber.StatusInternalServerError, err.Error())
}

// recordGeneration persists result, notifies the user's sockets and logs the activity
func (d *Dependencies) recordGeneration(ctx context.Context, userID uuid.UUID, kind string, cfg llm.CallConfig, prompt string, result llm.CallResult) *models.Generation {
	generation := &models.Generation{
		UserID:   userID,
		Kind:     kind,
		Provider: string(cfg.Provider),
		Model:    cfg.ModelOr(llm.DefaultModel(cfg.Provider)),
		Prompt:   prompt,
		Content:  result.Content,
		Success:  result.Success,
		Error:    result.Error,
	}
	if len(result.Raw) > 0 {
		generation.Raw = datatypes.JSON(result.Raw)
	}

	if err := d.Repos.GenerationRepository.Record(ctx, generation); err != nil {
		d.logger().Error("Failed to record generation",
			zap.String("kind", kind),
			zap.String("provider", string(cfg.Provider)),
			zap.Error(err))
	}

	if err := d.Usage.Record(ctx, userID, cfg.Provider, prompt, result); err != nil {
		d.logger().Warn("Failed to record usage", zap.Error(err))
	}

	event := ws.TypeGenerationCompleted
	if !result.Success {
		event = ws.TypeGenerationFailed
	}
	d.publish(userID, event, fiber.Map{
		"id":       generation.ID,
		"kind":     kind,
		"provider": cfg.Provider,
		"success":  result.Success,
		"error":    result.Error,
	})

	d.logActivity(ctx, userID, repository.ActionGenerate, "generation", generation.ID, map[string]interface{}{
		"kind":     kind,
		"provider": cfg.Provider,
		"success":  result.Success,
	})
	return generation
}

func (d *Dependencies) announce(userID uuid.UUID, kind string, provider llm.Provider) {
	d.publish(userID, ws.TypeGenerationStarted, fiber.Map{"kind": kind, "provider": provider})
}

// @Summary Test provider connection
// @Description Sends a minimal request to the provider. Failures are reported in the body with status 200.
// @Tags llm
// @Accept json
// @Produce json
// @Param body body CallRequest false "Provider config; stored settings are used when api_key is omitted"
// @Success 200 {object} llm.CallResult
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /llm/test-connection [post]
func (h *LLMHandler) TestConnection(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	req := new(CallRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}

	cfg, err := h.resolveConfig(c.UserContext(), userID, *req)
	if err != nil {
		return configError(c, err)
	}

	result := h.Client.TestConnection(c.UserContext(), cfg)
	h.logger().Info("Connection test finished",
		zap.String("provider", string(cfg.Provider)),
		zap.Bool("success", result.Success))
	return c.JSON(result)
}

// @Summary Generate content
// @Description Runs a freeform prompt against the selected provider. Failures are reported in the body with status 200.
// @Tags llm
// @Accept json
// @Produce json
// @Param body body GenerateRequest true "Prompt and provider"
// @Success 200 {object} llm.CallResult
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /llm/generate [post]
func (h *LLMHandler) Generate(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	req := new(GenerateRequest)
	if err := c.BodyParser(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Prompt is required")
	}

	cfg, err := h.resolveConfig(c.UserContext(), userID, req.CallRequest)
	if err != nil {
		return configError(c, err)
	}

	h.announce(userID, models.GenerationKindFreeform, cfg.Provider)
	result := h.Client.GenerateContent(c.UserContext(), cfg, req.Prompt, req.Options())
	generation := h.recordGeneration(c.UserContext(), userID, models.GenerationKindFreeform, cfg, req.Prompt, result)

	c.Set("X-Generation-ID", generation.ID.String())
	return c.JSON(result)
}
