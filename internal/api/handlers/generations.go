package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/chynybekuuludastan/content_studio/internal/repository"
)

// GenerationHandler lists recorded generations
type GenerationHandler struct {
	*Dependencies
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(deps *Dependencies) *GenerationHandler {
	return &GenerationHandler{Dependencies: deps}
}

// generationFilter reads kind, provider and success from the query string
func generationFilter(c *fiber.Ctx) (repository.GenerationFilter, error) {
	filter := repository.GenerationFilter{
		Kind:     c.Query("kind"),
		Provider: c.Query("provider"),
	}
	if raw := c.Query("success"); raw != "" {
		success, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, err
		}
		filter.Success = &success
	}
	return filter, nil
}

// @Summary List my generations
// @Tags generations
// @Produce json
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Param kind query string false "Kind" Enums(freeform, outline, metadata, schema)
// @Param provider query string false "Provider"
// @Param success query bool false "Only successful or failed calls"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /generations [get]
func (h *GenerationHandler) ListMine(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	filter, err := generationFilter(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid success filter")
	}

	page, pageSize := c.QueryInt("page", 1), c.QueryInt("page_size", 0)
	generations, total, err := h.Repos.GenerationRepository.FindByUserID(c.UserContext(), userID, filter, page, pageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch generations")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    generations,
		"total":   total,
		"page":    page,
	})
}

// @Summary List all generations
// @Tags admin
// @Produce json
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Param kind query string false "Kind"
// @Param provider query string false "Provider"
// @Param success query bool false "Only successful or failed calls"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/generations [get]
func (h *GenerationHandler) ListAll(c *fiber.Ctx) error {
	filter, err := generationFilter(c)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid success filter")
	}

	page, pageSize := c.QueryInt("page", 1), c.QueryInt("page_size", 0)
	generations, total, err := h.Repos.GenerationRepository.FindAll(c.UserContext(), filter, page, pageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch generations")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    generations,
		"total":   total,
		"page":    page,
	})
}

// @Summary Generation counts per provider
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/generations/stats [get]
func (h *GenerationHandler) Stats(c *fiber.Ctx) error {
	counts, err := h.Repos.GenerationRepository.CountByProvider(c.UserContext())
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to count generations")
	}
	return c.JSON(fiber.Map{"success": true, "data": counts})
}

// @Summary Today's usage
// @Description Calls and estimated tokens of the current user for the current UTC day
// @Tags generations
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /generations/usage [get]
func (h *GenerationHandler) Usage(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	summary, err := h.Dependencies.Usage.Today(c.UserContext(), userID)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to read usage")
	}
	return c.JSON(fiber.Map{"success": true, "data": summary})
}
