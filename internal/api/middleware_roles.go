package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medtrack/internal/services"
)

func (handler *Handler) PatientOnly(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !services.IsPatientUser(user) {
		return apiError(c, fiber.StatusForbidden, "patient access required")
	}
	return c.Next()
}

func (handler *Handler) CaretakerOnly(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !services.IsCaretakerUser(user) {
		return apiError(c, fiber.StatusForbidden, "caretaker access required")
	}
	return c.Next()
}
