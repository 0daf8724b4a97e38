package storage

import (
	"context"
	"io"
	"time"
)

// Service stores media blobs referenced by posts and profiles. The rest of
// the system treats the returned location as an opaque string.
type Service interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}
