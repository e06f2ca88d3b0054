package importer

import (
	"context"

	"libralink/internal/book"
	"libralink/internal/platform/openlibrary"
)

type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	FinishRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (Run, error)
}

type OpenLibraryClient interface {
	GetBooksByISBN(ctx context.Context, isbns []string) (map[string]openlibrary.BookDetails, error)
}

// Books is the slice of the catalog the importer writes to.
type Books interface {
	UpsertByISBN(ctx context.Context, b *book.Book) (bool, error)
}
