package bookmark

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add saves the book for the user. Adding the same book twice is a no-op.
func (s *Service) Add(ctx context.Context, userID, bookID string) error {
	return s.repo.Add(ctx, userID, bookID)
}

func (s *Service) Remove(ctx context.Context, userID, bookID string) error {
	return s.repo.Remove(ctx, userID, bookID)
}

// List returns bookmarked books, newest bookmark first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Item, int, error) {
	return s.repo.List(ctx, userID, limit, offset)
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.repo.Count(ctx, userID)
}
