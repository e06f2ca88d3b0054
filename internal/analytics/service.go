package analytics

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"libralink/internal/platform/cache"
	"libralink/internal/platform/metrics"
)

type Service struct {
	repo   Repository
	cache  Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewService builds the dashboard service. cache may be nil.
func NewService(repo Repository, c Cache, logger *zap.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger, now: time.Now}
}

// Overview serves the headline counters from the cache when it can. Cache
// failures are logged and fall through to the database.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	if s.cache != nil {
		var cached Overview
		err := s.cache.Get(ctx, overviewKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("analytics cache read failed", zap.Error(err))
		}
	}

	now := s.now().UTC()
	o, err := s.repo.Overview(ctx, now)
	if err != nil {
		return Overview{}, err
	}
	o.GeneratedAt = now

	if s.cache != nil {
		if err := s.cache.Set(ctx, overviewKey, o, OverviewTTL); err != nil {
			s.logger.Warn("analytics cache write failed", zap.Error(err))
		}
	}
	return o, nil
}

// IssueTrend returns one entry per day for the last days days, oldest first,
// including today. Days without activity are zero.
func (s *Service) IssueTrend(ctx context.Context, days int) ([]DailyCount, error) {
	if days < 1 || days > MaxTrendDays {
		return nil, ErrInvalidRange
	}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(days - 1))

	rows, err := s.repo.DailyActivity(ctx, since)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]DailyCount, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r
	}

	trend := make([]DailyCount, 0, days)
	for d := since; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(trendDayLayout)
		c, ok := byDay[key]
		if !ok {
			c = DailyCount{Day: key}
		}
		trend = append(trend, c)
	}
	return trend, nil
}

func (s *Service) TopBooks(ctx context.Context, limit int) ([]TopBook, error) {
	if limit < 1 || limit > MaxTopBooks {
		return nil, ErrInvalidRange
	}
	return s.repo.TopBooks(ctx, limit)
}

func (s *Service) GenreDistribution(ctx context.Context) ([]GenreCount, error) {
	return s.repo.GenreDistribution(ctx)
}

// LibraryStats feeds the circulation gauges on every metrics scrape.
func (s *Service) LibraryStats(ctx context.Context) (metrics.LibraryStats, error) {
	return s.repo.LibraryStats(ctx, s.now().UTC())
}
