package analytics

import (
	"context"
	"time"

	"libralink/internal/platform/metrics"
)

type Repository interface {
	Overview(ctx context.Context, now time.Time) (Overview, error)
	DailyActivity(ctx context.Context, since time.Time) ([]DailyCount, error)
	TopBooks(ctx context.Context, limit int) ([]TopBook, error)
	GenreDistribution(ctx context.Context) ([]GenreCount, error)
	LibraryStats(ctx context.Context, now time.Time) (metrics.LibraryStats, error)
}

// Cache is satisfied by cache.JSON.
type Cache interface {
	Get(ctx context.Context, key string, target any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}
