package rating

import (
	"context"
	"math"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateOrUpdate stores the caller's rating, replacing any earlier one.
func (s *Service) CreateOrUpdate(ctx context.Context, userID, bookID string, star int, review string) (Rating, error) {
	if star < 1 || star > 5 {
		return Rating{}, ErrInvalidStar
	}
	r := Rating{
		UserID: userID,
		BookID: bookID,
		Star:   star,
		Review: strings.TrimSpace(review),
	}
	if err := s.repo.Upsert(ctx, &r); err != nil {
		return Rating{}, err
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, userID, bookID string) error {
	return s.repo.Delete(ctx, userID, bookID)
}

func (s *Service) GetBookRating(ctx context.Context, bookID string) (Summary, error) {
	avg, count, err := s.repo.GetBookRating(ctx, bookID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{BookID: bookID, AverageRating: round2(avg), RatingsCount: count}, nil
}

func (s *Service) ListReviews(ctx context.Context, bookID string, limit, offset int) ([]Rating, int, error) {
	return s.repo.ListReviews(ctx, bookID, limit, offset)
}

func (s *Service) GetUserRatingStats(ctx context.Context, userID string) (UserStats, error) {
	avg, count, err := s.repo.GetUserRatingStats(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}
	return UserStats{AverageRating: round2(avg), RatingsCount: count}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
