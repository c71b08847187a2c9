package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

type storedPhoto struct {
	contentType string
	data        []byte
}

// MemoryPhotoStore keeps photos in process memory. Used by tests and by
// development runs without a writable photo directory.
type MemoryPhotoStore struct {
	mu       sync.RWMutex
	maxBytes int64
	photos   map[string]storedPhoto
}

func NewMemoryPhotoStore(maxBytes int64) *MemoryPhotoStore {
	return &MemoryPhotoStore{
		maxBytes: maxBytes,
		photos:   make(map[string]storedPhoto),
	}
}

func (store *MemoryPhotoStore) Upload(_ context.Context, ownerID uint, contentType string, data []byte) (string, error) {
	extension, err := checkUpload(contentType, data, store.maxBytes)
	if err != nil {
		return "", err
	}
	normalized, _, _ := NormalizeContentType(contentType)

	url := PhotoURL(ownerID, newPhotoName(extension))
	stored := storedPhoto{contentType: normalized, data: append([]byte(nil), data...)}

	store.mu.Lock()
	store.photos[url] = stored
	store.mu.Unlock()
	return url, nil
}

func (store *MemoryPhotoStore) Open(_ context.Context, ownerID uint, name string) (io.ReadCloser, string, error) {
	store.mu.RLock()
	photo, ok := store.photos[PhotoURL(ownerID, name)]
	store.mu.RUnlock()
	if !ok {
		return nil, "", ErrPhotoNotFound
	}
	return io.NopCloser(bytes.NewReader(photo.data)), photo.contentType, nil
}

func (store *MemoryPhotoStore) Delete(_ context.Context, photoURL string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.photos[photoURL]; !ok {
		return ErrPhotoNotFound
	}
	delete(store.photos, photoURL)
	return nil
}

func (store *MemoryPhotoStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.photos)
}
