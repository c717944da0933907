package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage persists uploaded image attachments and returns the stored object
// name. The rest of the application treats that name as an opaque reference.
type Storage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error)
}

// Disk stores objects under a media root directory. Used in development and
// tests.
type Disk struct {
	root string
}

func NewDisk(root string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("error creating media root: %w", err)
	}
	return &Disk{root: root}, nil
}

func (d *Disk) Save(_ context.Context, name, _ string, r io.Reader, _ int64) (string, error) {
	path := filepath.Join(d.root, filepath.Base(name))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error creating media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("error writing media file: %w", err)
	}
	return filepath.Base(name), nil
}

// Minio stores objects in an S3-compatible bucket.
type Minio struct {
	client *minio.Client
	bucket string
}

func NewMinio(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Minio, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("error checking bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("error creating bucket: %w", err)
		}
	}

	return &Minio{client: client, bucket: bucket}, nil
}

func (m *Minio) Save(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("error storing object: %w", err)
	}
	return name, nil
}
