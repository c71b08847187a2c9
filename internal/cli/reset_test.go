package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/terraincognita07/medtrack/internal/models"
	"github.com/terraincognita07/medtrack/internal/services"
	"golang.org/x/crypto/bcrypt"
)

type memoryResetStore struct {
	users map[string]models.User
}

func (store *memoryResetStore) FindByNormalizedEmail(email string) (models.User, bool, error) {
	user, ok := store.users[email]
	return user, ok, nil
}

func (store *memoryResetStore) UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error {
	for email, user := range store.users {
		if user.ID == userID {
			user.PasswordHash = passwordHash
			user.MustChangePassword = mustChangePassword
			store.users[email] = user
			return nil
		}
	}
	return errors.New("missing user")
}

func newMemoryResetStore() *memoryResetStore {
	return &memoryResetStore{users: map[string]models.User{
		"ana@example.com": {ID: 4, Email: "ana@example.com", PasswordHash: "old"},
	}}
}

func scriptedSecrets(lines ...string) secretReader {
	return func() (string, error) {
		if len(lines) == 0 {
			return "", errors.New("no more input")
		}
		line := lines[0]
		lines = lines[1:]
		return line, nil
	}
}

func TestGenerateTemporaryPasswordMinimumLength(t *testing.T) {
	t.Parallel()

	password, err := generateTemporaryPassword(4)
	if err != nil {
		t.Fatalf("generateTemporaryPassword returned error: %v", err)
	}
	if len(password) != 8 {
		t.Fatalf("generateTemporaryPassword minimum len = %d, want 8", len(password))
	}
	for _, char := range password {
		if !strings.ContainsRune(temporaryPasswordAlphabet, char) {
			t.Fatalf("password %q contains char %q outside alphabet", password, char)
		}
	}
}

func TestResetPasswordGeneratesTemporaryPassword(t *testing.T) {
	store := newMemoryResetStore()
	var out bytes.Buffer

	password, err := ResetPassword(store, ResetOptions{Email: "  ANA@example.com ", Out: &out}, nil)
	if err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if len(password) != temporaryPasswordLength {
		t.Fatalf("expected %d character password, got %q", temporaryPasswordLength, password)
	}

	user := store.users["ana@example.com"]
	if !user.MustChangePassword {
		t.Fatal("expected must_change_password to be set")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		t.Fatal("expected stored hash to match the temporary password")
	}
	if !strings.Contains(out.String(), "Temporary password: "+password) {
		t.Fatalf("expected temporary password in output, got %q", out.String())
	}
}

func TestResetPasswordInteractive(t *testing.T) {
	store := newMemoryResetStore()
	var out bytes.Buffer

	password, err := ResetPassword(store, ResetOptions{Email: "ana@example.com", Out: &out}, scriptedSecrets("Chosen123", "Chosen123"))
	if err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if password != "Chosen123" {
		t.Fatalf("expected chosen password, got %q", password)
	}
	if strings.Contains(out.String(), "Chosen123") {
		t.Fatal("interactive password must not be echoed to output")
	}
	if !store.users["ana@example.com"].MustChangePassword {
		t.Fatal("expected must_change_password to be set")
	}
}

func TestResetPasswordErrors(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		secrets secretReader
		check   func(error) bool
	}{
		{name: "invalid email", email: "not-an-email", check: func(err error) bool { return err != nil }},
		{name: "unknown user", email: "nobody@example.com", check: func(err error) bool {
			return err != nil && strings.Contains(err.Error(), "not found")
		}},
		{name: "mismatched prompt", email: "ana@example.com", secrets: scriptedSecrets("Chosen123", "Other1234"), check: func(err error) bool {
			return errors.Is(err, errPromptMismatch)
		}},
		{name: "weak prompt", email: "ana@example.com", secrets: scriptedSecrets("weak", "weak"), check: func(err error) bool {
			return errors.Is(err, services.ErrWeakPassword)
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := newMemoryResetStore()
			_, err := ResetPassword(store, ResetOptions{Email: test.email}, test.secrets)
			if !test.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
			if store.users["ana@example.com"].PasswordHash != "old" {
				t.Fatal("expected password to stay unchanged on failure")
			}
		})
	}
}
