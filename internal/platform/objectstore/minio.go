package objectstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"digipraman/internal/platform/config"
)

// Presigner issues time-limited download URLs for evidence objects.
type Presigner struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

// NewPresigner returns nil when no endpoint is configured.
func NewPresigner(cfg config.StorageConfig) (*Presigner, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	return &Presigner{client: client, bucket: cfg.Bucket, ttl: cfg.PresignTTL}, nil
}

// SignEvidence returns a presigned GET URL for the object stored under fileKey.
func (p *Presigner) SignEvidence(ctx context.Context, fileKey string) (string, error) {
	u, err := p.client.PresignedGetObject(ctx, p.bucket, fileKey, p.ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", fileKey, err)
	}
	return u.String(), nil
}
