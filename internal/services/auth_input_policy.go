package services

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/terraincognita07/medtrack/internal/models"
)

const maxDisplayNameLength = 80

var (
	ErrAuthCredentialsInvalid = fmt.Errorf("%w: email and password are required", ErrMalformedInput)
	ErrPasswordMismatch       = fmt.Errorf("%w: passwords do not match", ErrMalformedInput)
	ErrInvalidRole            = fmt.Errorf("%w: role must be patient or caretaker", ErrMalformedInput)
	ErrDisplayNameTooLong     = fmt.Errorf("%w: display name is too long", ErrMalformedInput)
	ErrEmailTaken             = fmt.Errorf("%w: email already registered", ErrAlreadyExists)
	ErrInvalidCredentials     = fmt.Errorf("%w: invalid credentials", ErrNotAuthenticated)
	ErrCurrentPasswordInvalid = fmt.Errorf("%w: current password is incorrect", ErrForbidden)
)

type RegistrationInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
	DisplayName     string
}

func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ""
	}
	return email
}

func NormalizeCredentialsInput(emailRaw string, passwordRaw string) (string, string, error) {
	email := NormalizeAuthEmail(emailRaw)
	password := strings.TrimSpace(passwordRaw)
	if email == "" || password == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	return email, password, nil
}

// NormalizeRegistrationInput validates a sign-up request and returns it with
// email, role and display name normalized.
func NormalizeRegistrationInput(input RegistrationInput) (RegistrationInput, error) {
	email, password, err := NormalizeCredentialsInput(input.Email, input.Password)
	if err != nil {
		return RegistrationInput{}, err
	}
	if strings.TrimSpace(input.ConfirmPassword) != password {
		return RegistrationInput{}, ErrPasswordMismatch
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return RegistrationInput{}, err
	}

	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role == "" {
		role = models.RolePatient
	}
	if !models.IsValidRole(role) {
		return RegistrationInput{}, ErrInvalidRole
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if len([]rune(displayName)) > maxDisplayNameLength {
		return RegistrationInput{}, ErrDisplayNameTooLong
	}

	return RegistrationInput{
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
		Role:            role,
		DisplayName:     displayName,
	}, nil
}
