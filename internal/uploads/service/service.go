// Package service implements image upload handling.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"eventcraft_backend/internal/adapters/storage"
	"eventcraft_backend/internal/uploads/transport"
	"eventcraft_backend/platform/apperr"
	"eventcraft_backend/platform/httpkit"
	"eventcraft_backend/platform/logger"
)

// maxImageSize caps uploads at 10 MB.
const maxImageSize = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Service stores uploaded images and hands back presigned links.
type Service struct {
	store  storage.ObjectStore
	bucket string
	log    *logger.Logger
}

// New creates a new uploads service. The store may be nil when object
// storage is not configured; uploads then report the feature as unavailable.
func New(store storage.ObjectStore, bucket string, log *logger.Logger) *Service {
	return &Service{store: store, bucket: bucket, log: log}
}

// UploadParams describes one incoming multipart image.
type UploadParams struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// UploadImage validates, stores, and presigns one image.
func (s *Service) UploadImage(ctx context.Context, identity httpkit.Identity, params UploadParams) (transport.UploadImageResponse, error) {
	if s.store == nil {
		return transport.UploadImageResponse{}, apperr.Unavailable("File storage unavailable")
	}

	contentType := normalizeContentType(params.ContentType)
	if !allowedImageTypes[contentType] {
		return transport.UploadImageResponse{}, apperr.BadRequest("Unsupported image type")
	}

	limit := int64(maxImageSize)
	if storeLimit := s.store.MaxFileSize(); storeLimit > 0 && storeLimit < limit {
		limit = storeLimit
	}
	if params.Size <= 0 || params.Size > limit {
		return transport.UploadImageResponse{}, apperr.BadRequest(fmt.Sprintf("Image must be between 1 byte and %d bytes", limit))
	}

	data, err := io.ReadAll(io.LimitReader(params.Reader, limit+1))
	if err != nil {
		return transport.UploadImageResponse{}, apperr.Wrap(apperr.KindInternal, "Failed to read image", err)
	}
	if int64(len(data)) > limit {
		return transport.UploadImageResponse{}, apperr.BadRequest(fmt.Sprintf("Image must be between 1 byte and %d bytes", limit))
	}

	orientation := exifOrientation(data, contentType)

	folder := "uploads/" + identity.UserID().String()
	key, err := s.store.Upload(ctx, s.bucket, folder, params.FileName, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return transport.UploadImageResponse{}, apperr.Wrap(apperr.KindInternal, "Failed to store image", err)
	}

	presigned, err := s.store.PresignGet(ctx, s.bucket, key)
	if err != nil {
		return transport.UploadImageResponse{}, apperr.Wrap(apperr.KindInternal, "Failed to generate download link", err)
	}

	s.log.Info("image uploaded",
		"user_id", identity.UserID(),
		"key", key,
		"size", len(data),
		"orientation", orientation,
	)

	return transport.UploadImageResponse{
		URL:         presigned.URL,
		Key:         key,
		Orientation: orientation,
		ExpiresAt:   presigned.ExpiresAt.UTC().Format(time.RFC3339),
	}, nil
}

func normalizeContentType(contentType string) string {
	normalized := strings.Split(contentType, ";")[0]
	return strings.TrimSpace(strings.ToLower(normalized))
}

// exifOrientation reads the EXIF orientation tag from a JPEG. Anything
// unreadable falls back to the identity orientation.
func exifOrientation(data []byte, contentType string) int {
	if contentType != "image/jpeg" {
		return 1
	}
	meta, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := meta.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	value, err := tag.Int(0)
	if err != nil || value < 1 || value > 8 {
		return 1
	}
	return value
}
