// Package storage keeps proof photos. Objects are addressed by owner and a
// generated name, and referenced from intake records by their public URL
// path /api/photos/<owner>/<name>.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const PhotoURLPrefix = "/api/photos/"

var (
	// ErrPhotoRejected covers uploads refused for their content rather than
	// for a storage failure.
	ErrPhotoRejected        = errors.New("photo rejected")
	ErrPhotoTooLarge        = fmt.Errorf("%w: exceeds maximum size", ErrPhotoRejected)
	ErrPhotoEmpty           = fmt.Errorf("%w: empty file", ErrPhotoRejected)
	ErrUnsupportedPhotoType = fmt.Errorf("%w: content type not allowed", ErrPhotoRejected)
	ErrPhotoContentInvalid  = fmt.Errorf("%w: content does not match declared type", ErrPhotoRejected)
	ErrPhotoNotFound        = errors.New("photo not found")
	ErrInvalidPhotoURL      = errors.New("invalid photo url")
)

var extensionByContentType = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

var photoNamePattern = regexp.MustCompile(`^[0-9a-f-]{36}\.(png|jpg|webp|heic)$`)

type PhotoStore interface {
	Upload(ctx context.Context, ownerID uint, contentType string, data []byte) (string, error)
	Open(ctx context.Context, ownerID uint, name string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, photoURL string) error
}

// NormalizeContentType strips parameters and maps the content type onto the
// allow-list, returning the file extension to store under.
func NormalizeContentType(raw string) (string, string, error) {
	contentType := strings.ToLower(strings.TrimSpace(raw))
	if index := strings.Index(contentType, ";"); index >= 0 {
		contentType = strings.TrimSpace(contentType[:index])
	}
	if contentType == "image/jpg" {
		contentType = "image/jpeg"
	}
	extension, ok := extensionByContentType[contentType]
	if !ok {
		return "", "", ErrUnsupportedPhotoType
	}
	return contentType, extension, nil
}

func ContentTypeForName(name string) string {
	for contentType, extension := range extensionByContentType {
		if strings.HasSuffix(name, extension) {
			return contentType
		}
	}
	return "application/octet-stream"
}

func newPhotoName(extension string) string {
	return uuid.NewString() + extension
}

func PhotoURL(ownerID uint, name string) string {
	return PhotoURLPrefix + strconv.FormatUint(uint64(ownerID), 10) + "/" + name
}

// ParsePhotoURL splits a URL produced by PhotoURL back into owner and name.
func ParsePhotoURL(photoURL string) (uint, string, error) {
	rest, ok := strings.CutPrefix(photoURL, PhotoURLPrefix)
	if !ok {
		return 0, "", ErrInvalidPhotoURL
	}
	ownerRaw, name, ok := strings.Cut(rest, "/")
	if !ok {
		return 0, "", ErrInvalidPhotoURL
	}
	ownerID, err := ParseOwnerID(ownerRaw)
	if err != nil {
		return 0, "", err
	}
	if !ValidPhotoName(name) {
		return 0, "", ErrInvalidPhotoURL
	}
	return ownerID, name, nil
}

func ParseOwnerID(raw string) (uint, error) {
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, ErrInvalidPhotoURL
	}
	return uint(parsed), nil
}

// ValidPhotoName reports whether name could have been generated by a store.
// It also keeps path separators out of disk lookups.
func ValidPhotoName(name string) bool {
	return photoNamePattern.MatchString(name)
}

func checkUpload(contentType string, data []byte, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", ErrPhotoEmpty
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", ErrPhotoTooLarge
	}
	normalized, extension, err := NormalizeContentType(contentType)
	if err != nil {
		return "", err
	}
	if !contentMatches(normalized, data) {
		return "", ErrPhotoContentInvalid
	}
	return extension, nil
}

// contentMatches checks the leading bytes against the declared type.
// http.DetectContentType has no HEIF signature, so HEIC is recognised by its
// ISO BMFF "ftyp" box.
func contentMatches(contentType string, data []byte) bool {
	if contentType == "image/heic" {
		return len(data) >= 12 && string(data[4:8]) == "ftyp"
	}
	return http.DetectContentType(data) == contentType
}
