package api

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medtrack/internal/models"
	"github.com/terraincognita07/medtrack/internal/services"
	"github.com/valyala/fasthttp"
)

const photoFormField = "photo"

func (handler *Handler) ListIntakes(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var (
		records []models.IntakeRecord
		err     error
	)
	if c.QueryBool("taken", false) {
		records, err = handler.intakes.FetchTakenRecords(user.ID)
	} else {
		records, err = handler.intakes.FetchRecords(user.ID)
	}
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load intake records")
	}
	return c.JSON(fiber.Map{"records": records})
}

func (handler *Handler) ScheduleIntake(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	payload := intakePayload{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid input")
		}
	}

	record, err := handler.intakes.Schedule(c.UserContext(), user.ID, c.Params("date"), payload.toInput())
	if err != nil {
		return handler.respondServiceError(c, err, "failed to schedule intake")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"record": record})
}

// MarkIntakeTaken accepts JSON, or multipart form data with an optional
// proof photo in the "photo" field.
func (handler *Handler) MarkIntakeTaken(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	payload := intakePayload{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid input")
		}
	}

	photo, err := handler.readProofPhoto(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid photo upload")
	}

	record, err := handler.intakes.MarkTaken(c.UserContext(), user.ID, c.Params("date"), payload.toInput(), photo)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to record intake")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"record": record})
}

func (handler *Handler) RemoveIntake(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := handler.intakes.RemovePending(c.UserContext(), user.ID, c.Params("date")); err != nil {
		return handler.respondServiceError(c, err, "failed to remove intake")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) readProofPhoto(c *fiber.Ctx) (*services.ProofPhoto, error) {
	if !isMultipartRequest(c) {
		return nil, nil
	}

	header, err := c.FormFile(photoFormField)
	if errors.Is(err, fasthttp.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open photo part: %w", err)
	}
	defer file.Close()

	// One byte past the limit is enough for the store to reject oversize files.
	data, err := io.ReadAll(io.LimitReader(file, handler.photoMaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read photo part: %w", err)
	}
	return &services.ProofPhoto{
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

func isMultipartRequest(c *fiber.Ctx) bool {
	contentType := strings.ToLower(string(c.Request().Header.ContentType()))
	return strings.HasPrefix(contentType, fiber.MIMEMultipartForm)
}

func (payload intakePayload) toInput() services.IntakeInput {
	return services.IntakeInput{
		MedicationName: strings.TrimSpace(payload.MedicationName),
		Dosage:         strings.TrimSpace(payload.Dosage),
		Frequency:      strings.TrimSpace(payload.Frequency),
		Description:    strings.TrimSpace(payload.Description),
	}
}
