package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medtrack/internal/models"
)

const (
	authCookieName = "medtrack_auth"
	csrfCookieName = "medtrack_csrf"
	contextUserKey = "current_user"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok
}
