package rating

import "context"

type Repository interface {
	Upsert(ctx context.Context, r *Rating) error
	Delete(ctx context.Context, userID, bookID string) error
	GetBookRating(ctx context.Context, bookID string) (average float64, count int, err error)
	ListReviews(ctx context.Context, bookID string, limit, offset int) ([]Rating, int, error)
	GetUserRatingStats(ctx context.Context, userID string) (average float64, count int, err error)
}
