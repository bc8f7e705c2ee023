package repository

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned by a BlobStore that has never been written.
var ErrBlobNotFound = errors.New("document not found")

// BlobStore holds the serialized posts document as a single opaque value.
type BlobStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}
