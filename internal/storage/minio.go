package storage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage implements Storage for MinIO and other S3-compatible servers.
type MinioStorage struct {
	client *minio.Client
	bucket string
	prefix string
}

// MinioConfig holds MinIO connection settings.
type MinioConfig struct {
	Endpoint        string // host:port, no scheme
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
	Region          string
	Prefix          string // Optional prefix for all keys
}

// NewMinioStorage creates a new MinIO storage provider.
func NewMinioStorage(cfg MinioConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinioStorage{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Delete implements Storage.Delete.
func (m *MinioStorage) Delete(ctx context.Context, key string) error {
	objectKey := fullKey(m.prefix, key)

	if err := m.client.RemoveObject(ctx, m.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, m.bucket, objectKey)
		}
		return fmt.Errorf("failed to delete from MinIO: %w", err)
	}

	return nil
}

// List implements Storage.List. Common prefixes are skipped.
func (m *MinioStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	// Cancelling stops the listing goroutine if we return early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var objects []ObjectInfo

	opts := minio.ListObjectsOptions{
		Prefix:    listPrefix(m.prefix, prefix),
		Recursive: false,
	}
	for obj := range m.client.ListObjects(ctx, m.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list MinIO objects: %w", obj.Err)
		}
		key := stripPrefix(m.prefix, obj.Key)
		if !isDirectEntry(key) {
			continue
		}
		objects = append(objects, ObjectInfo{
			Key:          key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}

	return objects, nil
}
