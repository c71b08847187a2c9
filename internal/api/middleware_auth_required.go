package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medtrack/internal/logging"
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserKey, user)
	c.Locals(logging.ContextUserIDKey, user.ID)
	if user.MustChangePassword && !allowedDuringPasswordChange(c.Path()) {
		return apiError(c, fiber.StatusForbidden, "password change required")
	}

	return c.Next()
}

func allowedDuringPasswordChange(path string) bool {
	switch path {
	case "/api/auth/password", "/api/auth/logout", "/api/auth/me":
		return true
	default:
		return false
	}
}
