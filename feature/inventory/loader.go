package inventory

import (
	"context"
	"fmt"
	"io"
	"os"

	"ddi-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// Loader resolves export files from local disk or from object storage.
type Loader struct {
	store  storage.Client
	bucket string
}

// NewLoader creates a loader. The storage client may be nil when only local
// files are used.
func NewLoader(store storage.Client, bucket string) *Loader {
	return &Loader{store: store, bucket: bucket}
}

// FromFile opens a local export file.
func (l *Loader) FromFile(path string) (io.ReadCloser, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open export file: %w", err)
	}
	return f, DetectFormat(path), nil
}

// FromObject fetches an export file from the configured bucket.
func (l *Loader) FromObject(ctx context.Context, object string) (io.ReadCloser, Format, error) {
	if l.store == nil {
		return nil, "", fmt.Errorf("object storage not configured")
	}

	obj, err := l.store.GetObject(ctx, l.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch export object %s: %w", object, err)
	}
	return obj, DetectFormat(object), nil
}
