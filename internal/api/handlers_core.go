package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) Metrics(c *fiber.Ctx) error {
	if handler.metricsSource == nil {
		return apiError(c, fiber.StatusNotFound, "not found")
	}
	points, err := handler.metricsSource.Snapshot(c.UserContext())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to collect metrics")
	}
	return c.JSON(fiber.Map{"metrics": points})
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusNotFound, "not found")
}
