package model

import (
	"context"
	"io"
)

// Storage stores listing images.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	URL(key string) string
	KeyFromURL(url string) (string, bool)
}
