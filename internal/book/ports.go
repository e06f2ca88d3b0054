package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	List(ctx context.Context, q Query) ([]Book, int, error)
	GetByID(ctx context.Context, id string) (Book, error)
	GetByISBN(ctx context.Context, isbn string) (Book, error)
	Create(ctx context.Context, b *Book) error
	Update(ctx context.Context, id string, p Patch) (Book, error)
	Delete(ctx context.Context, id string) error
	// UpsertByISBN inserts or refreshes catalog metadata. Existing rows keep
	// their total_copies. It reports whether a new row was created.
	UpsertByISBN(ctx context.Context, b *Book) (bool, error)
}
