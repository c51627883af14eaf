// Package storage abstracts blob storage for uploaded spot photos.
package storage

import (
	"context"
	"io"
)

// Storage stores and retrieves blobs by relative path.
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error
}
