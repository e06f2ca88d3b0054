package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"libralink/internal/platform/crypto"
	"libralink/internal/session"
	"libralink/internal/user"
)

var ErrUnauthorized = errors.New("unauthorized")

const (
	accessTokenTTL       = 15 * time.Minute
	refreshTokenTTL      = 30 * 24 * time.Hour
	rememberMeRefreshTTL = 90 * 24 * time.Hour
	blacklistFallbackTTL = 24 * time.Hour
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	TouchLogin(ctx context.Context, userID string) error
}

type SessionStore interface {
	Create(ctx context.Context, s *session.Session) error
	GetByTokenHash(ctx context.Context, hash string) (session.Session, error)
	DeleteByTokenHash(ctx context.Context, hash string) error
	AddToBlacklist(ctx context.Context, jti, userID string, expiresAt time.Time) error
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type Service struct {
	secret   string
	users    UserStore
	sessions SessionStore
	now      func() time.Time
}

func NewService(secret string, users UserStore, sessions SessionStore) *Service {
	return &Service{
		secret:   secret,
		users:    users,
		sessions: sessions,
		now:      time.Now,
	}
}

func refreshTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return rememberMeRefreshTTL
	}
	return refreshTokenTTL
}

func (s *Service) Login(ctx context.Context, email, password string, rememberMe bool, userAgent, ipAddress string) (TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !crypto.VerifyPassword(u.PasswordHash, password) {
		return TokenPair{}, ErrUnauthorized
	}

	pair, err := s.issue(ctx, u, session.Session{
		UserID:     u.ID,
		UserAgent:  userAgent,
		IPAddress:  ipAddress,
		RememberMe: rememberMe,
	})
	if err != nil {
		return TokenPair{}, err
	}
	_ = s.users.TouchLogin(ctx, u.ID)
	return pair, nil
}

// RefreshToken rotates a refresh token: the presented token is consumed and a
// new session row replaces it.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (TokenPair, error) {
	tokenHash := crypto.HashToken(refreshToken)
	sess, err := s.sessions.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return TokenPair{}, ErrUnauthorized
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return TokenPair{}, ErrUnauthorized
	}

	if err := s.sessions.DeleteByTokenHash(ctx, tokenHash); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, fmt.Errorf("consume refresh token: %w", err)
	}

	sess.ID = ""
	return s.issue(ctx, u, sess)
}

func (s *Service) issue(ctx context.Context, u user.User, sess session.Session) (TokenPair, error) {
	accessToken, _, err := crypto.GenerateToken(s.secret, u.ID, u.Role, accessTokenTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := crypto.NewOpaqueToken()
	if err != nil {
		return TokenPair{}, err
	}

	sess.RefreshTokenHash = crypto.HashToken(refreshToken)
	sess.ExpiresAt = s.now().Add(refreshTTL(sess.RememberMe))
	if err := s.sessions.Create(ctx, &sess); err != nil {
		return TokenPair{}, fmt.Errorf("create session: %w", err)
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(accessTokenTTL.Seconds()),
	}, nil
}

// Logout blacklists the access token's jti until the token would have expired.
func (s *Service) Logout(ctx context.Context, token string, userID string) error {
	claims, err := crypto.ParseToken(s.secret, token)
	if err != nil {
		return ErrUnauthorized
	}

	expiresAt := s.now().Add(blacklistFallbackTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return s.sessions.AddToBlacklist(ctx, claims.ID, userID, expiresAt)
}
