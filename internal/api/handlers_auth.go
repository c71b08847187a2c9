package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/medtrack/internal/models"
	"github.com/terraincognita07/medtrack/internal/services"
)

type userResponse struct {
	ID                 uint   `json:"id"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	DisplayName        string `json:"display_name"`
	MustChangePassword bool   `json:"must_change_password"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:                 user.ID,
		Email:              user.Email,
		Role:               user.Role,
		DisplayName:        services.ProfileDisplayName(*user),
		MustChangePassword: user.MustChangePassword,
	}
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	input := registerInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.auth.Register(services.RegistrationInput{
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
		Role:            input.Role,
		DisplayName:     input.DisplayName,
	})
	if err != nil {
		return handler.respondServiceError(c, err, "failed to create account")
	}

	if err := handler.setAuthCookie(c, &user, true); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": newUserResponse(&user)})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	limiterKey := requestLimiterKey(c)
	now := handler.now()
	if handler.loginLimiter.blocked(limiterKey, now) {
		handler.metrics.RecordAuthFailure(c.UserContext(), "rate_limited")
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.auth.Authenticate(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrNotAuthenticated) {
			handler.loginLimiter.recordFailure(limiterKey, now)
			handler.metrics.RecordAuthFailure(c.UserContext(), "invalid_credentials")
		}
		return handler.respondServiceError(c, err, "failed to sign in")
	}
	handler.loginLimiter.reset(limiterKey)

	if err := handler.setAuthCookie(c, &user, input.RememberMe); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(fiber.Map{"user": newUserResponse(&user)})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Me(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(fiber.Map{"user": newUserResponse(user)})
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := changePasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	input.NewPassword = strings.TrimSpace(input.NewPassword)
	if input.CurrentPassword == "" || input.NewPassword == "" {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if strings.TrimSpace(input.ConfirmPassword) != input.NewPassword {
		return handler.respondServiceError(c, services.ErrPasswordMismatch, "failed to change password")
	}

	updated, err := handler.auth.ChangePassword(user.ID, input.CurrentPassword, input.NewPassword)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to change password")
	}

	// Sessions carry a password fingerprint, so the old cookie is now dead.
	if err := handler.setAuthCookie(c, &updated, false); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(fiber.Map{"ok": true, "user": newUserResponse(&updated)})
}

func (handler *Handler) CSRFToken(c *fiber.Ctx) error {
	token, _ := c.Locals("csrf").(string)
	return c.JSON(fiber.Map{"csrf_token": token})
}
