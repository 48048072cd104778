package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a BlobStore when the key has never been written.
var ErrNotFound = errors.New("blob not found")

// BlobStore keeps opaque values under string keys. Put overwrites.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}
