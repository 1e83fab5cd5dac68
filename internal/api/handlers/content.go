package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/chynybekuuludastan/content_studio/internal/models"
	"github.com/chynybekuuludastan/content_studio/internal/service/content"
)

// ContentHandler runs the task specific generators
type ContentHandler struct {
	*Dependencies
}

// NewContentHandler creates a new content handler
func NewContentHandler(deps *Dependencies) *ContentHandler {
	return &ContentHandler{Dependencies: deps}
}

// OutlineBody is the body of POST /content/outline
type OutlineBody struct {
	CallRequest
	GenerationSettings
	content.OutlineRequest
}

// MetadataBody is the body of POST /content/metadata
type MetadataBody struct {
	CallRequest
	GenerationSettings
	content.MetadataRequest
}

// SchemaBody is the body of POST /content/schema
type SchemaBody struct {
	CallRequest
	GenerationSettings
	content.SchemaRequest
}

func contentError(c *fiber.Ctx, err error) error {
	if errors.Is(err, content.ErrInvalidRequest) {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	return errorResponse(c, fiber.StatusInternalServerError, err.Error())
}

// @Summary Generate an article outline
// @Tags content
// @Accept json
// @Produce json
// @Param body body OutlineBody true "Outline request"
// @Success 200 {object} content.Output
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /content/outline [post]
func (h *ContentHandler) Outline(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	body := new(OutlineBody)
	if err := c.BodyParser(body); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	cfg, err := h.resolveConfig(c.UserContext(), userID, body.CallRequest)
	if err != nil {
		return configError(c, err)
	}

	h.announce(userID, models.GenerationKindOutline, cfg.Provider)
	out, err := h.Content.Outline(c.UserContext(), cfg, body.OutlineRequest, body.Options())
	if err != nil {
		return contentError(c, err)
	}
	h.recordGeneration(c.UserContext(), userID, models.GenerationKindOutline, cfg, out.Prompt, out.Result)
	return c.JSON(out)
}

// @Summary Generate a title and meta description
// @Description Fetches the page when a URL is given. A failed fetch is reported in page_error and generation continues without it.
// @Tags content
// @Accept json
// @Produce json
// @Param body body MetadataBody true "Metadata request"
// @Success 200 {object} content.MetadataOutput
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /content/metadata [post]
func (h *ContentHandler) Metadata(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	body := new(MetadataBody)
	if err := c.BodyParser(body); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	cfg, err := h.resolveConfig(c.UserContext(), userID, body.CallRequest)
	if err != nil {
		return configError(c, err)
	}

	h.announce(userID, models.GenerationKindMetadata, cfg.Provider)
	out, err := h.Content.Metadata(c.UserContext(), cfg, body.MetadataRequest, body.Options())
	if err != nil {
		return contentError(c, err)
	}
	h.recordGeneration(c.UserContext(), userID, models.GenerationKindMetadata, cfg, out.Prompt, out.Result)
	return c.JSON(out)
}

// @Summary Generate schema.org JSON-LD
// @Tags content
// @Accept json
// @Produce json
// @Param body body SchemaBody true "Schema request"
// @Success 200 {object} content.SchemaOutput
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /content/schema [post]
func (h *ContentHandler) Schema(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	body := new(SchemaBody)
	if err := c.BodyParser(body); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	cfg, err := h.resolveConfig(c.UserContext(), userID, body.CallRequest)
	if err != nil {
		return configError(c, err)
	}

	h.announce(userID, models.GenerationKindSchema, cfg.Provider)
	out, err := h.Content.SchemaMarkup(c.UserContext(), cfg, body.SchemaRequest, body.Options())
	if err != nil {
		return contentError(c, err)
	}
	h.recordGeneration(c.UserContext(), userID, models.GenerationKindSchema, cfg, out.Prompt, out.Result)
	return c.JSON(out)
}
