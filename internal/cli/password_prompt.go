package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/terraincognita07/medtrack/internal/services"
)

var errPromptMismatch = errors.New("passwords do not match")

// secretReader reads one line without echoing it.
type secretReader func() (string, error)

func terminalSecretReader(stdin *os.File) secretReader {
	reader := bufio.NewReader(stdin)
	return func() (string, error) {
		if stdin == nil {
			return "", errors.New("stdin unavailable")
		}
		restore, err := disableEcho(stdin)
		if err != nil {
			return "", err
		}
		defer restore()

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}

// promptNewPassword asks for a password twice and applies the account
// password policy.
func promptNewPassword(read secretReader, out io.Writer) (string, error) {
	fmt.Fprint(out, "New password: ")
	first, err := read()
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(out, "Repeat password: ")
	second, err := read()
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if first != second {
		return "", errPromptMismatch
	}
	if err := services.ValidatePasswordStrength(first); err != nil {
		return "", err
	}
	return first, nil
}
