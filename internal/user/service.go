package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a USER account. The password must already be hashed.
func (s *Service) Register(ctx context.Context, email, username, passwordHash string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return User{}, ErrAlreadyExists
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("lookup email: %w", err)
	}

	newUser := &User{
		Email:        email,
		Username:     strings.TrimSpace(username),
		PasswordHash: passwordHash,
		Role:         RoleUser,
		IsPublic:     true,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		return User{}, err
	}
	return *newUser, nil
}

// CreateAdmin is used by the seeder; it skips the duplicate check and returns
// ErrAlreadyExists from the unique index instead.
func (s *Service) CreateAdmin(ctx context.Context, email, username, passwordHash string) (User, error) {
	u := &User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         RoleAdmin,
		IsPublic:     false,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return *u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) GetPublicProfile(ctx context.Context, id string) (User, error) {
	return s.repo.GetPublicProfile(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, updates map[string]any) error {
	return s.repo.UpdateProfile(ctx, userID, updates)
}

func (s *Service) TouchLogin(ctx context.Context, userID string) error {
	return s.repo.UpdateLastLogin(ctx, userID)
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]User, int, error) {
	if q.Role != "" && !ValidRole(q.Role) {
		return nil, 0, ErrInvalidRole
	}
	return s.repo.List(ctx, q)
}

// SetRole changes another user's role. Admins cannot change their own role,
// which keeps at least the acting admin in place.
func (s *Service) SetRole(ctx context.Context, actorID, userID, role string) (User, error) {
	if !ValidRole(role) {
		return User{}, ErrInvalidRole
	}
	if actorID == userID {
		return User{}, ErrSelfDemotion
	}
	if err := s.repo.SetRole(ctx, userID, role); err != nil {
		return User{}, err
	}
	return s.repo.GetByID(ctx, userID)
}
