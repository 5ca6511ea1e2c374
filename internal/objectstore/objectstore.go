package objectstore

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound signals that no blob exists at the given path.
var ErrObjectNotFound = errors.New("object not found")

// Store is the hosted object storage holding uploaded document blobs. Paths
// are opaque keys scoped to a bucket; metadata lives in the relational store.
type Store interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, bucket string, paths []string) error
	SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
}
