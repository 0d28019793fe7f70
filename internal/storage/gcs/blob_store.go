// Package gcs provides a BlobStore backed by Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// Config captures the parameters required to write to GCS.
type Config struct {
	Bucket string
}

// objectWriterFactory opens a writer for one object. *storage.Client is
// adapted to it by clientWriters.
type objectWriterFactory interface {
	NewWriter(ctx context.Context, bucket, object, contentType string) io.WriteCloser
}

type clientWriters struct {
	client *storage.Client
}

func (c clientWriters) NewWriter(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
	w := c.client.Bucket(bucket).Object(object).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	return w
}

// BlobStore writes crawl archives to a configured GCS bucket.
type BlobStore struct {
	writers objectWriterFactory
	bucket  string
}

// New creates a GCS-backed blob store.
func New(client *storage.Client, cfg Config) (*BlobStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	return newWithWriters(clientWriters{client: client}, cfg)
}

func newWithWriters(writers objectWriterFactory, cfg Config) (*BlobStore, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	bucket = strings.TrimPrefix(bucket, "gs://")
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &BlobStore{writers: writers, bucket: bucket}, nil
}

// PutObject uploads data and returns a gs:// URI. The object is only
// committed when the writer closes cleanly.
func (s *BlobStore) PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error) {
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	writer := s.writers.NewWriter(ctx, s.bucket, path, contentType)
	if _, err := io.Copy(writer, r); err != nil {
		if closeErr := writer.Close(); closeErr != nil {
			return "", fmt.Errorf("copy object: %w (close writer: %v)", err, closeErr)
		}
		return "", fmt.Errorf("copy object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close writer: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, path), nil
}
