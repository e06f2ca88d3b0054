package book

import (
	"context"
	"strings"

	"libralink/internal/httpx"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns a list of books matching the query.
func (s *Service) List(ctx context.Context, q Query) ([]Book, int, error) {
	return s.repo.List(ctx, q)
}

func (s *Service) GetByID(ctx context.Context, id string) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByISBN returns a book by its ISBN. Hyphens and spaces are ignored.
func (s *Service) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	return s.repo.GetByISBN(ctx, httpx.NormalizeISBN(isbn))
}

func (s *Service) Create(ctx context.Context, b Book) (Book, error) {
	b.ISBN = httpx.NormalizeISBN(b.ISBN)
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	if b.TotalCopies < 1 {
		return Book{}, ErrInvalidCopies
	}
	if err := s.repo.Create(ctx, &b); err != nil {
		return Book{}, err
	}
	b.AvailableCopies = b.TotalCopies
	return b, nil
}

// Update applies a partial change. Lowering total_copies below the number of
// open loans fails with ErrCopiesOnLoan.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Book, error) {
	if p.TotalCopies != nil && *p.TotalCopies < 1 {
		return Book{}, ErrInvalidCopies
	}
	if p.Empty() {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.Update(ctx, id, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) UpsertByISBN(ctx context.Context, b *Book) (bool, error) {
	b.ISBN = httpx.NormalizeISBN(b.ISBN)
	if b.TotalCopies < 1 {
		b.TotalCopies = 1
	}
	return s.repo.UpsertByISBN(ctx, b)
}
