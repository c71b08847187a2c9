package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/medtrack/internal/models"
)

const DefaultSessionTTL = 7 * 24 * time.Hour

var ErrSessionTokenInvalid = fmt.Errorf("%w: invalid session", ErrNotAuthenticated)

type SessionClaims struct {
	UserID        uint   `json:"uid"`
	Role          string `json:"role"`
	PasswordState string `json:"pws"`
	jwt.RegisteredClaims
}

// BuildSessionToken signs an HS256 session for user. The token carries a
// fingerprint of the password hash so a password change ends old sessions.
func BuildSessionToken(secretKey []byte, user models.User, ttl time.Duration, now time.Time) (string, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	claims := SessionClaims{
		UserID:        user.ID,
		Role:          user.Role,
		PasswordState: PasswordStateFingerprint(user.PasswordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
}

func ParseSessionToken(secretKey []byte, rawToken string, now time.Time) (*SessionClaims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrSessionTokenInvalid
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secretKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil || !token.Valid {
		return nil, ErrSessionTokenInvalid
	}
	if claims.ExpiresAt == nil || claims.UserID == 0 {
		return nil, ErrSessionTokenInvalid
	}
	return claims, nil
}

func PasswordStateFingerprint(passwordHash string) string {
	normalized := strings.TrimSpace(passwordHash)
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte("medtrack.session.password-state.v1:" + normalized))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func SessionMatchesPassword(claims *SessionClaims, passwordHash string) bool {
	actual := PasswordStateFingerprint(passwordHash)
	if claims == nil || claims.PasswordState == "" || actual == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(claims.PasswordState), []byte(actual)) == 1
}
