package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chynybekuuludastan/content_studio/internal/api/middleware"
	"github.com/chynybekuuludastan/content_studio/internal/models"
	"github.com/chynybekuuludastan/content_studio/internal/repository"
	"github.com/chynybekuuludastan/content_studio/internal/utils/password"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	*Dependencies
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(deps *Dependencies) *AuthHandler {
	return &AuthHandler{Dependencies: deps}
}

// RegisterRequest represents a request to register a new user
type RegisterRequest struct {
	Username string `json:"username" example:"johndoe"`
	Email    string `json:"email" example:"johndoe@example.com"`
	Password string `json:"password" example:"securePassword"`
}

// LoginRequest represents a request to log in. Email also accepts a username.
type LoginRequest struct {
	Email    string `json:"email" example:"johndoe@example.com"`
	Password string `json:"password" example:"securePassword"`
}

// ChangePasswordRequest replaces the password of the current user
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// TokenResponse represents a JWT token response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// minPasswordLength applies to new accounts
const minPasswordLength = 8

func (r *RegisterRequest) validate() string {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	switch {
	case len(r.Username) < 3 || len(r.Username) > 50:
		return "Username must be between 3 and 50 characters"
	case !strings.Contains(r.Email, "@"):
		return "A valid email is required"
	case len(r.Password) < minPasswordLength:
		return "Password must be at least 8 characters"
	}
	return ""
}

// @Summary Register a new user
// @Description Register a new user with the editor role
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "User Registration"
// @Success 201 {object} map[string]interface{} "User created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 409 {object} map[string]interface{} "User already exists"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	req := new(RegisterRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if msg := req.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   msg,
		})
	}

	users := h.Repos.UserRepository
	exists, err := users.ExistsByEmail(req.Email)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Database error")
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Email already registered",
		})
	}

	exists, err = users.ExistsByUsername(req.Username)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Database error")
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Username already taken",
		})
	}

	role, err := users.FindRoleByName(middleware.RoleEditor)
	if err != nil {
		h.logger().Error("Default role missing, was the database seeded?", zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "Default role is not configured")
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		RoleID:       role.ID,
	}
	if err := users.Create(&user); err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to create user")
	}

	h.logActivity(c.UserContext(), user.ID, repository.ActionRegister, "user", user.ID, nil)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     role.Name,
		},
	})
}

// @Summary User login
// @Description Authenticate a user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login Credentials"
// @Success 200 {object} map[string]interface{} "Login successful"
// @Failure 401 {object} map[string]interface{} "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	req := new(LoginRequest)
	if err := c.BodyParser(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	identifier := strings.TrimSpace(req.Email)
	var user *models.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = h.Repos.UserRepository.FindByEmail(strings.ToLower(identifier))
	} else {
		user, err = h.Repos.UserRepository.FindByUsername(identifier)
	}
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	match, err := password.Verify(req.Password, user.PasswordHash)
	if err != nil || !match {
		return errorResponse(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	h.logActivity(c.UserContext(), user.ID, repository.ActionLogin, "user", user.ID, nil)
	return h.issueToken(c, user)
}

func (h *AuthHandler) issueToken(c *fiber.Ctx, user *models.User) error {
	token, err := middleware.GenerateJWT(user, user.Role.Name, h.Config.JWTSecret, h.Config.JWTExpiration)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": TokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresIn:   int(h.Config.JWTExpiration.Seconds()),
		},
	})
}

// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.Repos.UserRepository.FindWithRole(userID)
	if err != nil {
		return errorResponse(c, fiber.StatusNotFound, "User not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"role":       user.Role.Name,
			"created_at": user.CreatedAt,
		},
	})
}

// @Summary Refresh token
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	user, err := h.Repos.UserRepository.FindWithRole(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorResponse(c, fiber.StatusUnauthorized, "Invalid user")
	}
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Database error")
	}
	return h.issueToken(c, user)
}

// @Summary Logout
// @Description Revokes the presented token
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals(middleware.LocalToken).(string)
	if err := middleware.RevokeToken(c, h.Redis, token, h.Config.JWTSecret); err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to revoke token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{} "Wrong current password"
// @Security BearerAuth
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	req := new(ChangePasswordRequest)
	if err := c.BodyParser(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if len(req.NewPassword) < minPasswordLength {
		return errorResponse(c, fiber.StatusBadRequest, "Password must be at least 8 characters")
	}

	user, err := h.Repos.UserRepository.FindWithRole(userID)
	if err != nil {
		return errorResponse(c, fiber.StatusNotFound, "User not found")
	}
	match, err := password.Verify(req.CurrentPassword, user.PasswordHash)
	if err != nil || !match {
		return errorResponse(c, fiber.StatusUnauthorized, "Current password is incorrect")
	}

	hashed, err := password.Hash(req.NewPassword)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to hash password")
	}
	if err := h.Repos.UserRepository.UpdatePassword(userID, hashed); err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to update password")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password updated successfully",
	})
}
