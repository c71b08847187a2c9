// Package cli holds operator commands that act on the database directly.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/medtrack/internal/db"
	"github.com/terraincognita07/medtrack/internal/models"
	"github.com/terraincognita07/medtrack/internal/security"
	"github.com/terraincognita07/medtrack/internal/services"
	"golang.org/x/crypto/bcrypt"
)

const (
	temporaryPasswordLength   = 14
	temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
)

type PasswordResetStore interface {
	FindByNormalizedEmail(email string) (models.User, bool, error)
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
}

type ResetOptions struct {
	Email string
	// Interactive reads the new password from the terminal instead of
	// generating one.
	Interactive bool
	Stdin       *os.File
	Out         io.Writer
}

func RunResetPasswordCommand(dbPath string, options ResetOptions, logger zerolog.Logger) error {
	database, err := db.OpenSQLite(dbPath, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	sqlDB, err := database.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	var read secretReader
	if options.Interactive {
		read = terminalSecretReader(options.Stdin)
	}
	_, err = ResetPassword(db.NewUserRepository(database), options, read)
	return err
}

// ResetPassword replaces the account password and flags the account so the
// user has to choose a new one after signing in.
func ResetPassword(users PasswordResetStore, options ResetOptions, read secretReader) (string, error) {
	out := options.Out
	if out == nil {
		out = io.Discard
	}

	email := services.NormalizeAuthEmail(options.Email)
	if email == "" {
		return "", errors.New("a valid email is required")
	}

	user, found, err := users.FindByNormalizedEmail(email)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if !found {
		return "", fmt.Errorf("user %s not found", email)
	}

	var password string
	if read != nil {
		password, err = promptNewPassword(read, out)
	} else {
		password, err = generateTemporaryPassword(temporaryPasswordLength)
	}
	if err != nil {
		return "", err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := users.UpdatePassword(user.ID, string(passwordHash), true); err != nil {
		return "", fmt.Errorf("update user password: %w", err)
	}

	fmt.Fprintf(out, "Password reset for %s\n", email)
	if read == nil {
		fmt.Fprintf(out, "Temporary password: %s\n", password)
	}
	fmt.Fprintln(out, "The user must change it after the next sign-in.")
	return password, nil
}

func generateTemporaryPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}
	return security.RandomString(length, temporaryPasswordAlphabet)
}
