package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"eventcraft_backend/internal/adapters/storage"
	"eventcraft_backend/platform/apperr"
	"eventcraft_backend/platform/httpkit"
	"eventcraft_backend/platform/logger"
)

type fakeIdentity struct {
	id uuid.UUID
}

func (f fakeIdentity) UserID() uuid.UUID     { return f.id }
func (f fakeIdentity) Email() string         { return "test@example.com" }
func (f fakeIdentity) AccountType() string   { return httpkit.AccountTypeProvider }
func (f fakeIdentity) IsProvider() bool      { return true }
func (f fakeIdentity) IsAuthenticated() bool { return true }

type fakeStore struct {
	maxSize     int64
	lastFolder  string
	lastType    string
	lastPayload []byte
}

func (f *fakeStore) EnsureBucket(context.Context, string) error { return nil }

func (f *fakeStore) Upload(_ context.Context, _, folder, fileName, contentType string, reader io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.lastFolder = folder
	f.lastType = contentType
	f.lastPayload = data
	return folder + "/" + fileName, nil
}

func (f *fakeStore) PresignGet(_ context.Context, _, fileKey string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{
		URL:       "https://minio.example.com/" + fileKey + "?sig=abc",
		FileKey:   fileKey,
		ExpiresAt: time.Now().Add(storage.PresignedURLTTL),
	}, nil
}

func (f *fakeStore) Delete(context.Context, string, string) error { return nil }
func (f *fakeStore) MaxFileSize() int64                           { return f.maxSize }

func upload(t *testing.T, svc *Service, contentType string, payload []byte) error {
	t.Helper()
	_, err := svc.UploadImage(context.Background(), fakeIdentity{id: uuid.New()}, UploadParams{
		FileName:    "logo.png",
		ContentType: contentType,
		Size:        int64(len(payload)),
		Reader:      bytes.NewReader(payload),
	})
	return err
}

func TestUploadImage_StoresUnderUserFolder(t *testing.T) {
	store := &fakeStore{}
	svc := New(store, "eventcraft-uploads", logger.New("development"))
	userID := uuid.New()

	resp, err := svc.UploadImage(context.Background(), fakeIdentity{id: userID}, UploadParams{
		FileName:    "logo.png",
		ContentType: "image/png",
		Size:        4,
		Reader:      strings.NewReader("data"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantFolder := "uploads/" + userID.String()
	if store.lastFolder != wantFolder {
		t.Errorf("folder = %q, want %q", store.lastFolder, wantFolder)
	}
	if resp.Key == "" || resp.URL == "" {
		t.Error("expected key and presigned url in response")
	}
	if resp.Orientation != 1 {
		t.Errorf("orientation = %d, want 1 for non-JPEG", resp.Orientation)
	}
}

func TestUploadImage_RejectsNonImageTypes(t *testing.T) {
	svc := New(&fakeStore{}, "eventcraft-uploads", logger.New("development"))

	for _, contentType := range []string{"application/pdf", "text/html", "video/mp4", ""} {
		err := upload(t, svc, contentType, []byte("payload"))
		if !apperr.Is(err, apperr.KindBadRequest) {
			t.Errorf("%q: expected bad request, got %v", contentType, err)
		}
	}
}

func TestUploadImage_NormalizesContentTypeParameters(t *testing.T) {
	store := &fakeStore{}
	svc := New(store, "eventcraft-uploads", logger.New("development"))

	if err := upload(t, svc, "image/PNG; charset=binary", []byte("data")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastType != "image/png" {
		t.Errorf("stored content type = %q, want image/png", store.lastType)
	}
}

func TestUploadImage_RejectsOversizedPayload(t *testing.T) {
	svc := New(&fakeStore{maxSize: 16}, "eventcraft-uploads", logger.New("development"))

	err := upload(t, svc, "image/png", bytes.Repeat([]byte("x"), 17))
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestUploadImage_UnavailableWithoutStorage(t *testing.T) {
	svc := New(nil, "eventcraft-uploads", logger.New("development"))

	err := upload(t, svc, "image/png", []byte("data"))
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestUploadImage_MalformedJPEGStillUploads(t *testing.T) {
	store := &fakeStore{}
	svc := New(store, "eventcraft-uploads", logger.New("development"))

	resp, err := svc.UploadImage(context.Background(), fakeIdentity{id: uuid.New()}, UploadParams{
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
		Size:        9,
		Reader:      strings.NewReader("not a jpg"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Orientation != 1 {
		t.Errorf("orientation = %d, want fallback 1", resp.Orientation)
	}
}
