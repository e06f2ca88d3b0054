package profile

import (
	"context"

	"libralink/internal/loan"
	"libralink/internal/rating"
	"libralink/internal/user"
)

type UserService interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	GetPublicProfile(ctx context.Context, id string) (user.User, error)
	UpdateProfile(ctx context.Context, userID string, updates map[string]any) error
}

type LoanService interface {
	ListUserLoans(ctx context.Context, userID string, activeOnly bool) ([]loan.Loan, error)
	FeeSummary(ctx context.Context, userID string) (loan.FeeReport, error)
}

type RatingService interface {
	GetUserRatingStats(ctx context.Context, userID string) (rating.UserStats, error)
}

type BookmarkService interface {
	Count(ctx context.Context, userID string) (int, error)
}
