// Package storage abstracts the object store holding post images. The
// client is constructed once at process start and injected into
// whatever needs it; delete calls are best-effort and callers never
// depend on them for correctness.
package storage

import "context"

type PutResult struct {
	URL  string
	Name string
}

type Client interface {
	Put(ctx context.Context, key, localFile string) (*PutResult, error)
	Delete(ctx context.Context, key string) error
	DeleteMulti(ctx context.Context, keys []string) error
}
