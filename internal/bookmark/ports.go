package bookmark

import "context"

type Repository interface {
	Add(ctx context.Context, userID, bookID string) error
	Remove(ctx context.Context, userID, bookID string) error
	List(ctx context.Context, userID string, limit, offset int) ([]Item, int, error)
	Count(ctx context.Context, userID string) (int, error)
}
