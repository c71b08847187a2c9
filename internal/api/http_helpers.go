package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medtrack/internal/services"
)

type errorCategory struct {
	sentinel error
	status   int
}

// Order matters only for errors that wrap several categories.
var errorCategories = []errorCategory{
	{services.ErrNotAuthenticated, fiber.StatusUnauthorized},
	{services.ErrForbidden, fiber.StatusForbidden},
	{services.ErrNotFound, fiber.StatusNotFound},
	{services.ErrAlreadyExists, fiber.StatusConflict},
	{services.ErrUploadFailed, fiber.StatusBadGateway},
	{services.ErrMalformedInput, fiber.StatusBadRequest},
}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// respondServiceError maps a service error onto its HTTP status. Errors
// outside the taxonomy are logged and reported with the fallback message.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error, fallback string) error {
	for _, category := range errorCategories {
		if errors.Is(err, category.sentinel) {
			return apiError(c, category.status, publicErrorMessage(err, category.sentinel))
		}
	}

	handler.logger.Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg(fallback)
	return apiError(c, fiber.StatusInternalServerError, fallback)
}

// publicErrorMessage drops the category prefix added by "%w: detail" wrapping.
func publicErrorMessage(err error, category error) string {
	message := err.Error()
	if detail, ok := strings.CutPrefix(message, category.Error()+": "); ok && detail != "" {
		return detail
	}
	return message
}
