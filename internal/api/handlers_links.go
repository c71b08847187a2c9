package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) CreateLink(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := linkInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	link, err := handler.links.LinkByEmail(user, input.Email)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to link patient")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"link": link})
}

func (handler *Handler) ListLinks(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	roster, err := handler.links.Roster(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load linked patients")
	}
	return c.JSON(fiber.Map{"patients": roster})
}
