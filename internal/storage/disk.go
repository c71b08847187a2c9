package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// DiskPhotoStore writes photos under root/<owner>/<name>.
type DiskPhotoStore struct {
	root     string
	maxBytes int64
}

func NewDiskPhotoStore(root string, maxBytes int64) (*DiskPhotoStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create photo directory: %w", err)
	}
	return &DiskPhotoStore{root: root, maxBytes: maxBytes}, nil
}

func (store *DiskPhotoStore) Upload(_ context.Context, ownerID uint, contentType string, data []byte) (string, error) {
	extension, err := checkUpload(contentType, data, store.maxBytes)
	if err != nil {
		return "", err
	}

	ownerDir := filepath.Join(store.root, strconv.FormatUint(uint64(ownerID), 10))
	if err := os.MkdirAll(ownerDir, 0o750); err != nil {
		return "", fmt.Errorf("create owner directory: %w", err)
	}

	name := newPhotoName(extension)
	temporary, err := os.CreateTemp(ownerDir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temporary photo: %w", err)
	}
	if _, err := temporary.Write(data); err != nil {
		_ = temporary.Close()
		_ = os.Remove(temporary.Name())
		return "", fmt.Errorf("write photo: %w", err)
	}
	if err := temporary.Close(); err != nil {
		_ = os.Remove(temporary.Name())
		return "", fmt.Errorf("close photo: %w", err)
	}
	if err := os.Rename(temporary.Name(), filepath.Join(ownerDir, name)); err != nil {
		_ = os.Remove(temporary.Name())
		return "", fmt.Errorf("commit photo: %w", err)
	}

	return PhotoURL(ownerID, name), nil
}

func (store *DiskPhotoStore) Open(_ context.Context, ownerID uint, name string) (io.ReadCloser, string, error) {
	if !ValidPhotoName(name) {
		return nil, "", ErrPhotoNotFound
	}
	file, err := os.Open(store.path(ownerID, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", ErrPhotoNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("open photo: %w", err)
	}
	return file, ContentTypeForName(name), nil
}

func (store *DiskPhotoStore) Delete(_ context.Context, photoURL string) error {
	ownerID, name, err := ParsePhotoURL(photoURL)
	if err != nil {
		return err
	}
	err = os.Remove(store.path(ownerID, name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrPhotoNotFound
	}
	return err
}

func (store *DiskPhotoStore) path(ownerID uint, name string) string {
	return filepath.Join(store.root, strconv.FormatUint(uint64(ownerID), 10), name)
}
