package object

import (
	"context"
	"io"
)

// Info describes a stored object.
type Info struct {
	Key         string
	Size        int64
	ContentType string
}

// ObjectStore is the read-side contract for document sources.
type ObjectStore interface {
	List(ctx context.Context) ([]Info, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
