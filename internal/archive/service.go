package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
)

// SourceFile records where one archived spreadsheet ended up.
type SourceFile struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Key      string    `json:"key"`
	Size     int64     `json:"size"`
	MimeType string    `json:"mime_type"`
}

// Archiver keeps a verbatim copy of every uploaded spreadsheet so rejected
// imports can be re-examined against the source file.
type Archiver struct {
	Driver StorageDriver
}

func NewArchiver(driver StorageDriver) *Archiver {
	return &Archiver{Driver: driver}
}

// Archive stores the raw file under a generated key and returns its metadata.
func (a *Archiver) Archive(ctx context.Context, filename string, reader io.Reader, size int64, mime string) (*SourceFile, error) {
	if mime == "" {
		mime = "application/octet-stream"
	}
	id := uuid.New()
	key := fmt.Sprintf("%s%s", id.String(), filepath.Ext(filename))

	if err := a.Driver.Save(ctx, key, reader, mime); err != nil {
		return nil, fmt.Errorf("archiving source file: %w", err)
	}

	slog.InfoContext(ctx, "source file archived", "id", id, "key", key, "name", filename)
	return &SourceFile{
		ID:       id,
		Name:     filename,
		Key:      key,
		Size:     size,
		MimeType: mime,
	}, nil
}

// Retrieve streams an archived file back with its content type.
func (a *Archiver) Retrieve(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return a.Driver.Get(ctx, key)
}
