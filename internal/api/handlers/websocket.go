package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chynybekuuludastan/content_studio/internal/api/middleware"
)

// WebSocketHandler streams generation events to the connected user
type WebSocketHandler struct {
	*Dependencies
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(deps *Dependencies) *WebSocketHandler {
	return &WebSocketHandler{Dependencies: deps}
}

// Upgrade rejects plain HTTP and unauthenticated requests
func (h *WebSocketHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, err := currentUser(c); err != nil {
		return errorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	return c.Next()
}

// HandleGenerations serves /ws/generations until the client disconnects
func (h *WebSocketHandler) HandleGenerations(c *websocket.Conn) {
	userID, ok := c.Locals(middleware.LocalUserID).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		h.logger().Warn("WebSocket connection without user", zap.String("remote", c.RemoteAddr().String()))
		_ = c.Close()
		return
	}
	h.Hub.Serve(c, userID)
}
