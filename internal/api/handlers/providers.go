package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

// ProviderHandler serves the provider and model catalog
type ProviderHandler struct {
	*Dependencies
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(deps *Dependencies) *ProviderHandler {
	return &ProviderHandler{Dependencies: deps}
}

// @Summary List providers
// @Tags providers
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /providers [get]
func (h *ProviderHandler) ListProviders(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    llm.ListProviders(),
	})
}

// ListModels returns the catalog entries of a provider. Unknown providers
// yield an empty list.
// @Summary List models of a provider
// @Tags providers
// @Produce json
// @Param provider path string true "Provider" Enums(perplexity, openai, claude, deepseek, gemini, custom)
// @Success 200 {object} map[string]interface{}
// @Router /providers/{provider}/models [get]
func (h *ProviderHandler) ListModels(c *fiber.Ctx) error {
	provider := llm.Provider(strings.ToLower(c.Params("provider")))
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"provider":      provider,
			"default_model": llm.DefaultModel(provider),
			"models":        h.Catalog.ModelsFor(provider),
		},
	})
}

// @Summary Full model catalog
// @Tags providers
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /providers/models [get]
func (h *ProviderHandler) ListCatalog(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.Catalog.Entries(),
	})
}
