package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\nfake-image-body")
	webpBytes = []byte("RIFF\x10\x00\x00\x00WEBPVP8 fake-image-body")
)

func TestNormalizeContentType(t *testing.T) {
	tests := []struct {
		raw       string
		want      string
		extension string
		wantErr   bool
	}{
		{raw: "image/png", want: "image/png", extension: ".png"},
		{raw: " IMAGE/JPEG; charset=binary", want: "image/jpeg", extension: ".jpg"},
		{raw: "image/jpg", want: "image/jpeg", extension: ".jpg"},
		{raw: "image/heic", want: "image/heic", extension: ".heic"},
		{raw: "application/pdf", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, testCase := range tests {
		got, extension, err := NormalizeContentType(testCase.raw)
		if testCase.wantErr {
			if !errors.Is(err, ErrPhotoRejected) {
				t.Fatalf("NormalizeContentType(%q) expected rejection, got %v", testCase.raw, err)
			}
			continue
		}
		if err != nil || got != testCase.want || extension != testCase.extension {
			t.Fatalf("NormalizeContentType(%q) = %q %q %v", testCase.raw, got, extension, err)
		}
	}
}

func TestParsePhotoURLRoundTripsAndRejectsTraversal(t *testing.T) {
	name := newPhotoName(".png")
	ownerID, parsedName, err := ParsePhotoURL(PhotoURL(42, name))
	if err != nil || ownerID != 42 || parsedName != name {
		t.Fatalf("expected round trip, got owner=%d name=%q err=%v", ownerID, parsedName, err)
	}

	for _, raw := range []string{
		"/api/photos/42/../../etc/passwd",
		"/api/photos/0/" + name,
		"/api/photos/abc/" + name,
		"/static/42/" + name,
		"/api/photos/42",
	} {
		if _, _, err := ParsePhotoURL(raw); !errors.Is(err, ErrInvalidPhotoURL) {
			t.Fatalf("ParsePhotoURL(%q) expected ErrInvalidPhotoURL, got %v", raw, err)
		}
	}
}

func TestDiskPhotoStoreUploadOpenDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewDiskPhotoStore(root, 1024)
	if err != nil {
		t.Fatalf("new disk store: %v", err)
	}
	ctx := context.Background()

	url, err := store.Upload(ctx, 7, "image/png", pngBytes)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(url, "/api/photos/7/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected photo url %q", url)
	}

	_, name, err := ParsePhotoURL(url)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "7", name)); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	reader, contentType, err := store.Open(ctx, 7, name)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	body, _ := io.ReadAll(reader)
	_ = reader.Close()
	if !bytes.Equal(body, pngBytes) || contentType != "image/png" {
		t.Fatalf("unexpected content %q type %q", body, contentType)
	}

	if _, _, err := store.Open(ctx, 8, name); !errors.Is(err, ErrPhotoNotFound) {
		t.Fatalf("expected other owner lookup to miss, got %v", err)
	}

	if err := store.Delete(ctx, url); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, url); !errors.Is(err, ErrPhotoNotFound) {
		t.Fatalf("expected second delete to report not found, got %v", err)
	}
}

func TestDiskPhotoStoreRejectsOversizeAndEmpty(t *testing.T) {
	store, err := NewDiskPhotoStore(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("new disk store: %v", err)
	}

	if _, err := store.Upload(context.Background(), 1, "image/png", pngBytes); !errors.Is(err, ErrPhotoTooLarge) {
		t.Fatalf("expected ErrPhotoTooLarge, got %v", err)
	}
	if _, err := store.Upload(context.Background(), 1, "image/png", nil); !errors.Is(err, ErrPhotoEmpty) {
		t.Fatalf("expected ErrPhotoEmpty, got %v", err)
	}
}

func TestMemoryPhotoStore(t *testing.T) {
	store := NewMemoryPhotoStore(0)
	ctx := context.Background()

	url, err := store.Upload(ctx, 3, "image/webp", webpBytes)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one stored photo, got %d", store.Len())
	}

	_, name, _ := ParsePhotoURL(url)
	reader, contentType, err := store.Open(ctx, 3, name)
	if err != nil || contentType != "image/webp" {
		t.Fatalf("open: type=%q err=%v", contentType, err)
	}
	_ = reader.Close()

	if _, err := store.Upload(ctx, 3, "text/plain", pngBytes); !errors.Is(err, ErrUnsupportedPhotoType) {
		t.Fatalf("expected unsupported type, got %v", err)
	}
	if err := store.Delete(ctx, url); err != nil || store.Len() != 0 {
		t.Fatalf("delete: len=%d err=%v", store.Len(), err)
	}
}

func TestUploadChecksContentAgainstDeclaredType(t *testing.T) {
	store := NewMemoryPhotoStore(0)
	ctx := context.Background()

	tests := []struct {
		name        string
		contentType string
		data        []byte
		wantErr     error
	}{
		{name: "png", contentType: "image/png", data: pngBytes},
		{name: "jpeg", contentType: "image/jpeg", data: []byte("\xff\xd8\xff\xe0fake-jpeg")},
		{name: "webp", contentType: "image/webp", data: webpBytes},
		{name: "heic", contentType: "image/heic", data: []byte("\x00\x00\x00\x18ftypheic\x00\x00\x00\x00")},
		{name: "text posing as png", contentType: "image/png", data: []byte("just some text"), wantErr: ErrPhotoContentInvalid},
		{name: "png posing as jpeg", contentType: "image/jpeg", data: pngBytes, wantErr: ErrPhotoContentInvalid},
		{name: "html posing as webp", contentType: "image/webp", data: []byte("<html><body>hi</body></html>"), wantErr: ErrPhotoContentInvalid},
		{name: "short heic", contentType: "image/heic", data: []byte("ftyp"), wantErr: ErrPhotoContentInvalid},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := store.Upload(ctx, 1, test.contentType, test.data)
			if test.wantErr == nil {
				if err != nil {
					t.Fatalf("expected upload to succeed, got %v", err)
				}
				return
			}
			if !errors.Is(err, test.wantErr) || !errors.Is(err, ErrPhotoRejected) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}
