package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/chynybekuuludastan/content_studio/internal/repository"
	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
	"github.com/chynybekuuludastan/content_studio/internal/service/llm/providers"
	"github.com/chynybekuuludastan/content_studio/internal/settings"
)

// SettingsHandler reads and updates the provider settings of the current user
type SettingsHandler struct {
	*Dependencies
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(deps *Dependencies) *SettingsHandler {
	return &SettingsHandler{Dependencies: deps}
}

// ProviderSettings is one provider as shown to the user. Keys are never echoed back.
type ProviderSettings struct {
	Provider     llm.Provider `json:"provider"`
	Label        string       `json:"label"`
	HasAPIKey    bool         `json:"has_api_key"`
	APIKeyHint   string       `json:"api_key_hint,omitempty"`
	Model        string       `json:"model"`
	DefaultModel string       `json:"default_model,omitempty"`
}

// CustomSettings is the custom endpoint as shown to the user
type CustomSettings struct {
	Endpoint     string `json:"endpoint"`
	Model        string `json:"model"`
	VerifyTLS    bool   `json:"verify_tls"`
	HasAPIKey    bool   `json:"has_api_key"`
	APIKeyHint   string `json:"api_key_hint,omitempty"`
	OpenAIFormat bool   `json:"openai_format"`
}

// SettingsResponse is the body of GET /settings
type SettingsResponse struct {
	PreferredProvider llm.Provider       `json:"preferred_provider"`
	Providers         []ProviderSettings `json:"providers"`
	Custom            CustomSettings     `json:"custom"`
}

// PreferredProviderRequest selects the preferred provider
type PreferredProviderRequest struct {
	Provider string `json:"provider" example:"openai"`
}

// ProviderSettingsRequest updates the key and/or model of a built-in provider
type ProviderSettingsRequest struct {
	APIKey *string `json:"api_key,omitempty"`
	Model  *string `json:"model,omitempty"`
}

// CustomSettingsRequest updates the custom endpoint. Omitted fields keep their value.
type CustomSettingsRequest struct {
	Endpoint  *string `json:"endpoint,omitempty"`
	APIKey    *string `json:"api_key,omitempty"`
	Model     *string `json:"model,omitempty"`
	VerifyTLS *bool   `json:"verify_tls,omitempty"`
}

// maskKey keeps the last four characters of long keys
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}

// @Summary Get provider settings
// @Tags settings
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	resp, err := h.load(c, userID)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "data": resp})
}

func (h *SettingsHandler) load(c *fiber.Ctx, userID uuid.UUID) (*SettingsResponse, error) {
	ctx := c.UserContext()
	repo := h.settingsFor(userID)

	preferred, err := repo.PreferredProvider(ctx)
	if errors.Is(err, settings.ErrInvalidProvider) {
		// surface the problem without blocking the page that fixes it
		preferred = ""
	} else if err != nil {
		return nil, err
	}

	resp := &SettingsResponse{PreferredProvider: preferred}
	for _, option := range llm.ListProviders() {
		if option.Value == llm.ProviderCustom {
			continue
		}
		credential, err := repo.ProviderCredential(ctx, option.Value)
		if err != nil {
			return nil, err
		}
		resp.Providers = append(resp.Providers, ProviderSettings{
			Provider:     option.Value,
			Label:        option.Label,
			HasAPIKey:    credential.APIKey != "",
			APIKeyHint:   maskKey(credential.APIKey),
			Model:        credential.Model,
			DefaultModel: llm.DefaultModel(option.Value),
		})
	}

	custom, err := repo.CustomAPI(ctx)
	if err != nil {
		return nil, err
	}
	resp.Custom = CustomSettings{
		Endpoint:     custom.Endpoint,
		Model:        custom.Model,
		VerifyTLS:    custom.VerifyTLS,
		HasAPIKey:    custom.APIKey != "",
		APIKeyHint:   maskKey(custom.APIKey),
		OpenAIFormat: custom.Endpoint != "" && providers.IsOpenAICompatible(custom.Endpoint),
	}
	return resp, nil
}

// @Summary Set preferred provider
// @Tags settings
// @Accept json
// @Produce json
// @Param body body PreferredProviderRequest true "Provider"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /settings/preferred-provider [put]
func (h *SettingsHandler) SetPreferredProvider(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	req := new(PreferredProviderRequest)
	if err := c.BodyParser(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	provider, err := llm.ParseProvider(req.Provider)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.settingsFor(userID).SetPreferredProvider(c.UserContext(), provider); err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, err.Error())
	}
	h.logActivity(c.UserContext(), userID, repository.ActionSettings, "setting", uuid.Nil,
		map[string]interface{}{"key": settings.KeyPreferredProvider, "value": provider})

	return h.respond(c, userID)
}

// @Summary Update a built-in provider
// @Tags settings
// @Accept json
// @Produce json
// @Param provider path string true "Provider" Enums(perplexity, openai, claude, deepseek, gemini)
// @Param body body ProviderSettingsRequest true "Key and model"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /settings/providers/{provider} [put]
func (h *SettingsHandler) UpdateProvider(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	provider, err := llm.ParseProvider(c.Params("provider"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	if provider == llm.ProviderCustom {
		return errorResponse(c, fiber.StatusBadRequest, "Use /settings/custom for the custom provider")
	}

	req := new(ProviderSettingsRequest)
	if err := c.BodyParser(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	ctx := c.UserContext()
	repo := h.settingsFor(userID)
	if req.APIKey != nil {
		if err := repo.SetAPIKey(ctx, provider, strings.TrimSpace(*req.APIKey)); err != nil {
			return errorResponse(c, fiber.StatusInternalServerError, err.Error())
		}
	}
	if req.Model != nil {
		if err := repo.SetModel(ctx, provider, strings.TrimSpace(*req.Model)); err != nil {
			return errorResponse(c, fiber.StatusInternalServerError, err.Error())
		}
	}
	h.logActivity(ctx, userID, repository.ActionSettings, "setting", uuid.Nil,
		map[string]interface{}{"provider": provider, "api_key": req.APIKey != nil, "model": req.Model != nil})

	return h.respond(c, userID)
}

// @Summary Update the custom provider
// @Tags settings
// @Accept json
// @Produce json
// @Param body body CustomSettingsRequest true "Custom endpoint"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /settings/custom [put]
func (h *SettingsHandler) UpdateCustom(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	req := new(CustomSettingsRequest)
	if err := c.BodyParser(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	ctx := c.UserContext()
	repo := h.settingsFor(userID)
	custom, err := repo.CustomAPI(ctx)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, err.Error())
	}
	if req.Endpoint != nil {
		custom.Endpoint = strings.TrimSpace(*req.Endpoint)
	}
	if req.APIKey != nil {
		custom.APIKey = strings.TrimSpace(*req.APIKey)
	}
	if req.Model != nil {
		custom.Model = strings.TrimSpace(*req.Model)
	}
	if req.VerifyTLS != nil {
		custom.VerifyTLS = *req.VerifyTLS
	}

	if err := repo.SetCustomAPI(ctx, custom); err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, err.Error())
	}
	h.logActivity(ctx, userID, repository.ActionSettings, "setting", uuid.Nil,
		map[string]interface{}{"provider": llm.ProviderCustom, "verify_tls": custom.VerifyTLS})

	return h.respond(c, userID)
}

func (h *SettingsHandler) respond(c *fiber.Ctx, userID uuid.UUID) error {
	resp, err := h.load(c, userID)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "data": resp})
}
