package archive

import (
	"context"
	"io"
)

// StorageDriver defines how archived source files reach their backing storage
type StorageDriver interface {
	// Save writes the content under the given key
	Save(ctx context.Context, key string, body io.Reader, contentType string) error

	// Get returns a ReadCloser for the stored file and its content type
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)

	// Delete removes the file
	Delete(ctx context.Context, key string) error
}
