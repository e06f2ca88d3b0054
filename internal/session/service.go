package session

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Service struct {
	repo          Repository
	blacklistRepo BlacklistRepository
}

func NewService(repo Repository, blacklistRepo BlacklistRepository) *Service {
	return &Service{
		repo:          repo,
		blacklistRepo: blacklistRepo,
	}
}

func (s *Service) ListByUserID(ctx context.Context, userID string) ([]Session, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Delete removes a session owned by userID; other users' sessions are
// reported as ErrNotFound.
func (s *Service) Delete(ctx context.Context, sessionID, userID string) error {
	return s.repo.DeleteForUser(ctx, sessionID, userID)
}

func (s *Service) Create(ctx context.Context, session *Session) error {
	return s.repo.Create(ctx, session)
}

func (s *Service) GetByTokenHash(ctx context.Context, hash string) (Session, error) {
	return s.repo.GetByTokenHash(ctx, hash)
}

func (s *Service) DeleteByTokenHash(ctx context.Context, hash string) error {
	return s.repo.DeleteByTokenHash(ctx, hash)
}

func (s *Service) AddToBlacklist(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	return s.blacklistRepo.AddToken(ctx, jti, userID, expiresAt)
}

func (s *Service) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	return s.blacklistRepo.IsBlacklisted(ctx, jti)
}

// Cleanup purges expired sessions and blacklist rows.
func (s *Service) Cleanup(ctx context.Context) (sessions, tokens int64, err error) {
	sessions, err = s.repo.CleanupExpired(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	tokens, err = s.blacklistRepo.CleanupExpired(ctx)
	if err != nil {
		return sessions, 0, fmt.Errorf("cleanup blacklist: %w", err)
	}
	return sessions, tokens, nil
}

// RunJanitor calls Cleanup every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions, tokens, err := s.Cleanup(ctx)
			if err != nil {
				logger.Warn("session cleanup failed", zap.Error(err))
				continue
			}
			if sessions > 0 || tokens > 0 {
				logger.Info("session cleanup", zap.Int64("sessions", sessions), zap.Int64("blacklisted_tokens", tokens))
			}
		}
	}
}
