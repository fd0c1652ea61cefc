package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for bucket storage of exercise media.
// Uploads happen browser-side against a presigned URL; the backend stores
// only the object key.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT
	// requests for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for downloading/viewing an object.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// ImageUpload is the stored reference returned by the image host.
type ImageUpload struct {
	PublicID string
	URL      string
}

// ImageStorage defines the interface for the hosted image service holding
// signature images. Uploads are server-side from base64 data URIs.
type ImageStorage interface {
	UploadImage(ctx context.Context, data string) (*ImageUpload, error)
	DeleteImage(ctx context.Context, publicID string) error
}
