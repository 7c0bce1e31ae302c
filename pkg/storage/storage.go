package storage

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidKey = errors.New("invalid storage key")

// FileStorage stores attachment bytes under keys such as "photos/ab12cd34.jpg"
// and returns an opaque reference that the other methods accept.
type FileStorage interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
	Locate(ctx context.Context, ref string) (Location, error)
}

// Location tells a caller where stored bytes can be read from. Exactly one of
// the fields is set.
type Location struct {
	Path string
	URL  string
}
