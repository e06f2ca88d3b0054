package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = "new-id"
	}
	return args.Error(0)
}

func (m *mockRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(User), args.Error(1)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

func (m *mockRepo) GetPublicProfile(ctx context.Context, id string) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

func (m *mockRepo) UpdateProfile(ctx context.Context, userID string, updates map[string]any) error {
	return m.Called(ctx, userID, updates).Error(0)
}

func (m *mockRepo) UpdateLastLogin(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockRepo) List(ctx context.Context, q ListQuery) ([]User, int, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]User), args.Int(1), args.Error(2)
}

func (m *mockRepo) SetRole(ctx context.Context, userID, role string) error {
	return m.Called(ctx, userID, role).Error(0)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("new email", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByEmail", ctx, "alice@example.com").Return(User{}, ErrNotFound)
		repo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
			return u.Email == "alice@example.com" && u.Role == RoleUser && u.PasswordHash == "hash"
		})).Return(nil)

		u, err := NewService(repo).Register(ctx, " Alice@Example.com ", "alice", "hash")
		require.NoError(t, err)
		assert.Equal(t, "new-id", u.ID)
		assert.Equal(t, RoleUser, u.Role)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByEmail", ctx, "alice@example.com").Return(User{ID: "x"}, nil)

		_, err := NewService(repo).Register(ctx, "alice@example.com", "alice", "hash")
		assert.ErrorIs(t, err, ErrAlreadyExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("GetByEmail", ctx, "alice@example.com").Return(User{}, errors.New("db down"))

		_, err := NewService(repo).Register(ctx, "alice@example.com", "alice", "hash")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrAlreadyExists)
	})
}

func TestService_SetRole(t *testing.T) {
	ctx := context.Background()

	t.Run("self demotion", func(t *testing.T) {
		repo := new(mockRepo)
		_, err := NewService(repo).SetRole(ctx, "admin-1", "admin-1", RoleUser)
		assert.ErrorIs(t, err, ErrSelfDemotion)
	})

	t.Run("invalid role", func(t *testing.T) {
		repo := new(mockRepo)
		_, err := NewService(repo).SetRole(ctx, "admin-1", "u2", "ROOT")
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("promote", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("SetRole", ctx, "u2", RoleAdmin).Return(nil)
		repo.On("GetByID", ctx, "u2").Return(User{ID: "u2", Role: RoleAdmin}, nil)

		u, err := NewService(repo).SetRole(ctx, "admin-1", "u2", RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, u.Role)
	})
}
