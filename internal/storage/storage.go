package storage

import (
	"context"
	"io"
)

// Upload is a file handed to the store by the HTTP layer.
type Upload struct {
	Filename string
	Content  io.Reader
}

//go:generate mockgen -source=storage.go -destination=mock/storage_mock.go -package=mock
type Store interface {
	// Save persists the upload and returns an opaque reference usable
	// with Delete.
	Save(ctx context.Context, up Upload) (string, error)
	Delete(ctx context.Context, ref string) error
}
