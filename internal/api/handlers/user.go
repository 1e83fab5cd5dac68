package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chynybekuuludastan/content_studio/internal/models"
	"github.com/chynybekuuludastan/content_studio/internal/repository/cache"
)

// UserHandler handles the admin user endpoints
type UserHandler struct {
	*Dependencies
}

// NewUserHandler creates a new user handler
func NewUserHandler(deps *Dependencies) *UserHandler {
	return &UserHandler{Dependencies: deps}
}

// UpdateRoleRequest represents a request to update a user's role
type UpdateRoleRequest struct {
	Role string `json:"role" example:"editor"`
}

// SafeUser is a user without credentials
type SafeUser struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	RoleName  string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toSafeUser(user *models.User) SafeUser {
	return SafeUser{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		RoleName:  user.Role.Name,
		CreatedAt: user.CreatedAt,
	}
}

// ListUsers returns a page of users
// @Summary List all users
// @Tags admin
// @Produce json
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} map[string]interface{} "Users list"
// @Failure 403 {object} map[string]interface{} "Forbidden"
// @Security BearerAuth
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	page, pageSize := c.QueryInt("page", 1), c.QueryInt("page_size", 0)

	users, total, err := h.Repos.UserRepository.FindAll(page, pageSize)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch users")
	}

	safeUsers := make([]SafeUser, len(users))
	for i, user := range users {
		safeUsers[i] = toSafeUser(user)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    safeUsers,
		"total":   total,
		"page":    page,
	})
}

// GetUser returns information about a specific user
// @Summary Get user details
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{} "User details"
// @Failure 400 {object} map[string]interface{} "Invalid user ID"
// @Failure 404 {object} map[string]interface{} "User not found"
// @Security BearerAuth
// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.Repos.UserRepository.FindWithRole(userID)
	if err != nil {
		return errorResponse(c, fiber.StatusNotFound, "User not found")
	}

	activity, err := h.Repos.UserActivityRepository.FindByUserID(c.UserContext(), userID, 20)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to fetch activity")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user":     toSafeUser(user),
			"activity": activity,
		},
	})
}

// UpdateRole updates a user's role
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body UpdateRoleRequest true "Role name"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "Role or user not found"
// @Security BearerAuth
// @Router /admin/users/{id}/role [put]
func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	req := new(UpdateRoleRequest)
	if err := c.BodyParser(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	role, err := h.Repos.UserRepository.FindRoleByName(strings.ToLower(strings.TrimSpace(req.Role)))
	if err != nil {
		return errorResponse(c, fiber.StatusNotFound, "Role not found")
	}

	if err := h.Repos.UserRepository.UpdateRole(userID, role.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "User not found")
		}
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to update user role")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User role updated successfully",
	})
}

// DeleteUser soft deletes a user
// @Summary Delete a user
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "User not found"
// @Security BearerAuth
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	if current, _ := currentUser(c); current == userID {
		return errorResponse(c, fiber.StatusBadRequest, "Cannot delete your own account")
	}

	var user models.User
	if err := h.Repos.UserRepository.FindByID(userID, &user); err != nil {
		return errorResponse(c, fiber.StatusNotFound, "User not found")
	}
	if err := h.Repos.UserRepository.Delete(&user); err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to delete user")
	}
	if err := cache.Invalidate(c.UserContext(), h.Redis, userID.String()); err != nil {
		h.logger().Warn("Failed to drop cached settings", zap.String("user_id", userID.String()), zap.Error(err))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User deleted successfully",
	})
}
