package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/vetreportflow/internal/gcp"
)

// BlobStore stores uploaded PDFs and extracted images.
type BlobStore interface {
	// Upload writes data to object in the uploads bucket and returns its gs:// URI.
	Upload(ctx context.Context, object string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, bucket, object string) ([]byte, error)
}

// GCSBlobStore is the Cloud Storage BlobStore.
type GCSBlobStore struct {
	client     *storage.Client
	bucket     string
	maxRetries int
	backoff    time.Duration
}

func NewGCSBlobStore(client *storage.Client, bucket string) *GCSBlobStore {
	return &GCSBlobStore{client: client, bucket: bucket, maxRetries: 4, backoff: time.Second}
}

// Upload retries transient failures with exponential backoff.
func (s *GCSBlobStore) Upload(ctx context.Context, object string, data []byte, contentType string) (string, error) {
	backoff := s.backoff
	var lastErr error

	for i := 0; i < s.maxRetries; i++ {
		err := func() error {
			writeCtx, cancel := context.WithTimeout(ctx, time.Second*50)
			defer cancel()
			return gcp.SaveToGCSAtomically(writeCtx, s.client.Bucket(s.bucket), object, data, contentType)
		}()
		if err == nil {
			return gcp.URI(s.bucket, object), nil
		}

		lastErr = err
		slog.Warn(
			"Upload failed, will retry.",
			"gcsObject", object,
			"attempt", i+1,
			"maxRetries", s.maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return "", fmt.Errorf("%w: upload of %s cancelled: %w", ErrStorage, object, ctx.Err())
		}
	}
	return "", fmt.Errorf("%w: upload for %s failed after all retries: %w", ErrStorage, object, lastErr)
}

func (s *GCSBlobStore) Download(ctx context.Context, bucket, object string) ([]byte, error) {
	data, err := gcp.ReadObject(ctx, s.client, bucket, object)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return data, nil
}
