package contentstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"redshift-ddl/internal/domain"
)

// Compile-time check: GCSStore implements domain.ContentStore.
var _ domain.ContentStore = (*GCSStore)(nil)

// GCSStore stores documents in Google Cloud Storage.
type GCSStore struct {
	client *storage.Client
}

// NewGCSStore creates a GCS store. With an empty keyFilePath the client uses
// Application Default Credentials.
func NewGCSStore(ctx context.Context, keyFilePath string) (*GCSStore, error) {
	var opts []option.ClientOption
	if keyFilePath != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, keyFilePath))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	client.SetRetry(storage.WithPolicy(storage.RetryNever))
	return &GCSStore{client: client}, nil
}

// Scheme implements domain.ContentStore.
func (s *GCSStore) Scheme() string { return "gs" }

// Put writes body as a new object generation. GCS commits the object only
// when the writer is closed, so a failed write leaves the old generation.
func (s *GCSStore) Put(ctx context.Context, bucket, key string, body []byte) error {
	w := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/sql; charset=utf-8"
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gs://%s/%s: %w", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("commit gs://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// Get reads the current object generation.
func (s *GCSStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	ref := domain.ContentRef{Scheme: s.Scheme(), Bucket: bucket, Key: key}.String()

	r, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, &domain.ContentNotFoundError{Ref: ref, Err: err}
		}
		return nil, fmt.Errorf("open %s: %w", ref, err)
	}
	defer r.Close() //nolint:errcheck

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return body, nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
