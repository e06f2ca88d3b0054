package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"libralink/internal/testutil"
	"libralink/internal/user"
)

func TestPostgresRepo_MalformedIDIsNotFound(t *testing.T) {
	pool := testutil.OpenTestDB(t)
	repo := user.NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "abc")
	require.ErrorIs(t, err, user.ErrNotFound)

	_, err = repo.GetPublicProfile(ctx, "abc")
	require.ErrorIs(t, err, user.ErrNotFound)

	require.ErrorIs(t, repo.SetRole(ctx, "abc", user.RoleAdmin), user.ErrNotFound)
	require.ErrorIs(t, repo.UpdateProfile(ctx, "abc", map[string]any{"bio": "hi"}), user.ErrNotFound)
}

func TestPostgresRepo_SetRoleAndList(t *testing.T) {
	pool := testutil.OpenTestDB(t)
	repo := user.NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()

	id := testutil.InsertUser(t, pool, "under_score")
	testutil.InsertUser(t, pool, "plainname")

	require.NoError(t, repo.SetRole(ctx, id, user.RoleAdmin))
	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, user.RoleAdmin, u.Role)

	users, total, err := repo.List(ctx, user.ListQuery{Q: "_", Limit: 20})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "under_score", users[0].Username)
}
