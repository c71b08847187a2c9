package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medtrack/internal/services"
	"github.com/terraincognita07/medtrack/internal/storage"
)

// GetPhoto streams a proof photo to its owner or a linked caretaker. Anyone
// else gets the same 404 as for a missing file.
func (handler *Handler) GetPhoto(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	ownerID, err := storage.ParseOwnerID(c.Params("owner"))
	name := c.Params("name")
	if err != nil || !storage.ValidPhotoName(name) {
		return apiError(c, fiber.StatusNotFound, "photo not found")
	}

	if err := services.AuthorizePatientView(user, ownerID, handler.links); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return apiError(c, fiber.StatusNotFound, "photo not found")
		}
		return handler.respondServiceError(c, err, "failed to load photo")
	}

	reader, contentType, err := handler.photos.Open(c.UserContext(), ownerID, name)
	if errors.Is(err, storage.ErrPhotoNotFound) {
		return apiError(c, fiber.StatusNotFound, "photo not found")
	}
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load photo")
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=86400")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	return c.SendStream(reader)
}
