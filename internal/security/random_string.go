// Package security generates secrets handed to operators, such as temporary
// passwords.
package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	ErrNegativeLength = errors.New("length must be non-negative")
	ErrEmptyAlphabet  = errors.New("alphabet must not be empty")
	ErrNonASCII       = errors.New("alphabet must be ASCII")
)

// RandomString draws length characters uniformly from alphabet using
// crypto/rand.
func RandomString(length int, alphabet string) (string, error) {
	switch {
	case length < 0:
		return "", ErrNegativeLength
	case length == 0:
		return "", nil
	case alphabet == "":
		return "", ErrEmptyAlphabet
	}
	for index := 0; index < len(alphabet); index++ {
		if alphabet[index] >= 0x80 {
			return "", ErrNonASCII
		}
	}

	limit := big.NewInt(int64(len(alphabet)))
	var builder strings.Builder
	builder.Grow(length)
	for builder.Len() < length {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		builder.WriteByte(alphabet[position.Int64()])
	}
	return builder.String(), nil
}
