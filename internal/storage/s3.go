package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/andresuchdata/joyeria/backend-go/internal/config"
	"github.com/chartmuseum/storage"
)

// S3Client implements ObjectStorage on chartmuseum's Amazon S3 backend,
// for providers where path-style addressing through the AWS SDK works
// better than minio-go.
type S3Client struct {
	backend storage.Backend
	cfg     config.StorageConfig
}

func NewS3Client(cfg config.StorageConfig) (*S3Client, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials must be provided")
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	// The backend reads credentials from the AWS environment
	os.Setenv("AWS_ACCESS_KEY_ID", cfg.AccessKey)
	os.Setenv("AWS_SECRET_ACCESS_KEY", cfg.SecretKey)
	os.Setenv("AWS_REGION", region)
	os.Setenv("AWS_DEFAULT_REGION", region)

	backend := storage.NewAmazonS3BackendWithOptions(
		cfg.Bucket,
		"",
		region,
		endpointURL(cfg.Endpoint, cfg.UseSSL),
		"",
		&storage.AmazonS3Options{
			S3ForcePathStyle: awsBool(true),
		},
	)

	return &S3Client{backend: backend, cfg: cfg}, nil
}

// Upload ignores contentType; the backend does not expose object metadata.
func (c *S3Client) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := c.backend.PutObject(key, data); err != nil {
		return "", fmt.Errorf("s3 upload %s: %w", key, err)
	}
	return publicURL(c.cfg, key), nil
}

func (c *S3Client) Delete(ctx context.Context, key string) error {
	if err := c.backend.DeleteObject(key); err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

var _ ObjectStorage = (*S3Client)(nil)

func awsBool(v bool) *bool {
	return &v
}
