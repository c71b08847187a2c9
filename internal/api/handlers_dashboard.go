package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medtrack/internal/models"
	"github.com/terraincognita07/medtrack/internal/services"
)

func (handler *Handler) Dashboard(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return handler.respondDashboard(c, user, user.ID)
}

func (handler *Handler) Calendar(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return handler.respondCalendar(c, user, user.ID)
}

func (handler *Handler) PatientDashboard(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	patientID, ok := patientIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid patient id")
	}
	return handler.respondDashboard(c, user, patientID)
}

func (handler *Handler) PatientCalendar(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	patientID, ok := patientIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid patient id")
	}
	return handler.respondCalendar(c, user, patientID)
}

func (handler *Handler) respondDashboard(c *fiber.Ctx, viewer *models.User, patientID uint) error {
	now := handler.now()
	month, err := services.ParseMonth(c.Query("month"), now, handler.summaries.Location())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load dashboard")
	}

	view, err := handler.summaries.BuildDashboardForMonth(c.UserContext(), viewer, patientID, month, now)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load dashboard")
	}
	return c.JSON(view)
}

func (handler *Handler) respondCalendar(c *fiber.Ctx, viewer *models.User, patientID uint) error {
	now := handler.now()
	month, err := services.ParseMonth(c.Query("month"), now, handler.summaries.Location())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load calendar")
	}

	calendar, err := handler.summaries.BuildCalendar(viewer, patientID, month, now)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load calendar")
	}
	return c.JSON(calendar)
}

func patientIDParam(c *fiber.Ctx) (uint, bool) {
	value, err := c.ParamsInt("id")
	if err != nil || value <= 0 {
		return 0, false
	}
	return uint(value), true
}
