package document

import (
	"context"
	"io"
)

type Repository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	List(ctx context.Context, q string, limit, offset int) ([]Document, int, error)
	Delete(ctx context.Context, id string) error
}

// BlobStore is satisfied by storage.FS.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
