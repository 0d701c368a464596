// Package storage provides S3-compatible object storage for uploaded assets
// such as provider logos and gallery images.
package storage

import (
	"context"
	"io"
	"time"
)

// PresignedURLTTL is the expiration time for presigned download URLs.
const PresignedURLTTL = 15 * time.Minute

// PresignedURL is a time-limited link to a stored object.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ObjectStore defines the storage operations the application needs.
type ObjectStore interface {
	// EnsureBucket creates the bucket if it does not exist.
	EnsureBucket(ctx context.Context, bucket string) error

	// Upload stores an object under folder with a collision-proof name and
	// returns the full file key.
	Upload(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)

	// PresignGet creates a presigned download URL for an object.
	PresignGet(ctx context.Context, bucket, fileKey string) (*PresignedURL, error)

	// Delete removes an object.
	Delete(ctx context.Context, bucket, fileKey string) error

	// MaxFileSize returns the configured upload size limit in bytes.
	MaxFileSize() int64
}

// Config defines the configuration surface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	IsMinIOEnabled() bool
}
