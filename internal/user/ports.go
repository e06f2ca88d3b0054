package user

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetPublicProfile(ctx context.Context, id string) (User, error)
	UpdateProfile(ctx context.Context, userID string, updates map[string]any) error
	UpdateLastLogin(ctx context.Context, userID string) error
	List(ctx context.Context, q ListQuery) ([]User, int, error)
	SetRole(ctx context.Context, userID, role string) error
}
