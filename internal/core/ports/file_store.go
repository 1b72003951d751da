package ports

import (
	"context"
	"io"
)

// ImageUpload is an uploaded file as received at the boundary. Size is the
// declared length in bytes; Content is read exactly once on save.
type ImageUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// FileStore is the opaque capability for persisting uploaded assets.
// Save returns a storage key used later to Delete the file.
type FileStore interface {
	Save(ctx context.Context, content io.Reader, filename string) (string, error)
	Delete(ctx context.Context, storageKey string) error
}
