package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/joyeria/backend-go/internal/config"
)

// ErrNotConfigured is returned when no object storage endpoint is set.
var ErrNotConfigured = errors.New("object storage not configured")

// ObjectStorage captures the S3-compatible operations the product image
// upload needs.
type ObjectStorage interface {
	// Upload stores data under key and returns its public URL.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.Provider: "minio" (default) or
// "s3" for the chartmuseum Amazon S3 backend.
func New(cfg config.StorageConfig) (ObjectStorage, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket must be provided")
	}

	switch strings.ToLower(cfg.Provider) {
	case "", "minio":
		return NewMinioClient(cfg)
	case "s3":
		return NewS3Client(cfg)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// endpointURL adds a scheme to a bare host endpoint.
func endpointURL(endpoint string, useSSL bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return strings.TrimRight(endpoint, "/")
	}
	scheme := "https"
	if !useSSL {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s", scheme, strings.TrimRight(strings.TrimPrefix(endpoint, "//"), "/"))
}

// publicURL is PublicBaseURL/key when configured, otherwise the path-style
// object URL on the endpoint.
func publicURL(cfg config.StorageConfig, key string) string {
	key = strings.TrimLeft(key, "/")
	if base := strings.TrimRight(cfg.PublicBaseURL, "/"); base != "" {
		return base + "/" + key
	}
	return endpointURL(cfg.Endpoint, cfg.UseSSL) + "/" + cfg.Bucket + "/" + key
}
