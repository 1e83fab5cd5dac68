package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// Role names
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// RoleMiddleware creates role-based access control middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userRole, ok := c.Locals(LocalRole).(string)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Unauthorized, role information missing",
			})
		}

		for _, r := range allowedRoles {
			if r == userRole {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Forbidden, insufficient permissions",
		})
	}
}

// AdminOnly middleware for admin-only routes
func AdminOnly() fiber.Handler {
	return RoleMiddleware(RoleAdmin)
}

// EditorOrAdmin guards routes that spend provider credits or change settings
func EditorOrAdmin() fiber.Handler {
	return RoleMiddleware(RoleEditor, RoleAdmin)
}
