package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// Storage archives issued certificates so re-downloads and audits don't
// re-render the PDF.
type Storage interface {
	// Store saves a rendered certificate and returns the storage key.
	Store(ctx context.Context, registrationID uuid.UUID, content io.Reader) (string, error)

	// Retrieve streams a previously stored certificate.
	Retrieve(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether a certificate is already archived.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes an archived certificate.
	Delete(ctx context.Context, key string) error
}

type Type string

const (
	TypeLocal Type = "local"
	TypeS3    Type = "s3"
)

// NewFromEnv picks the backend from STORAGE_TYPE, defaulting to local disk.
func NewFromEnv() (Storage, error) {
	storageType := Type(os.Getenv("STORAGE_TYPE"))
	if storageType == "" {
		storageType = TypeLocal
	}

	switch storageType {
	case TypeLocal:
		basePath := os.Getenv("STORAGE_LOCAL_PATH")
		if basePath == "" {
			basePath = "./certificates"
		}
		return NewLocalStorage(basePath)

	case TypeS3:
		bucket := os.Getenv("STORAGE_S3_BUCKET")
		region := os.Getenv("STORAGE_S3_REGION")
		if bucket == "" || region == "" {
			return nil, fmt.Errorf("s3 storage requires STORAGE_S3_BUCKET and STORAGE_S3_REGION")
		}
		return NewS3Storage(bucket, region)

	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}

// CertificateKey is stable per registration, so re-issuing overwrites.
func CertificateKey(registrationID uuid.UUID) string {
	return fmt.Sprintf("certificates/%s.pdf", registrationID)
}
