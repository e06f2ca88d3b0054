package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"libralink/internal/testutil"
)

func TestPostgresRepo_CreateAndGetByTokenHash(t *testing.T) {
	pool := testutil.OpenTestDB(t)
	repo := NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()
	userID := testutil.InsertUser(t, pool, "sessionuser")

	s := &Session{
		UserID:           userID,
		RefreshTokenHash: "test-hash",
		UserAgent:        "test-agent",
		IPAddress:        "127.0.0.1",
		ExpiresAt:        time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, repo.Create(ctx, s))
	require.NotEmpty(t, s.ID)
	require.NotZero(t, s.CreatedAt)

	found, err := repo.GetByTokenHash(ctx, "test-hash")
	require.NoError(t, err)
	require.Equal(t, s.ID, found.ID)
	require.Equal(t, userID, found.UserID)
}

func TestPostgresRepo_ListAndDelete(t *testing.T) {
	pool := testutil.OpenTestDB(t)
	repo := NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()
	userID := testutil.InsertUser(t, pool, "listuser")
	otherID := testutil.InsertUser(t, pool, "otheruser")

	first := &Session{UserID: userID, RefreshTokenHash: "hash-1", ExpiresAt: time.Now().Add(time.Hour)}
	second := &Session{UserID: userID, RefreshTokenHash: "hash-2", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	sessions, err := repo.ListByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	require.ErrorIs(t, repo.DeleteForUser(ctx, first.ID, otherID), ErrNotFound)
	require.NoError(t, repo.DeleteForUser(ctx, first.ID, userID))

	_, err = repo.GetByTokenHash(ctx, "hash-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresRepo_CleanupExpired(t *testing.T) {
	pool := testutil.OpenTestDB(t)
	repo := NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()
	userID := testutil.InsertUser(t, pool, "expireduser")

	require.NoError(t, repo.Create(ctx, &Session{UserID: userID, RefreshTokenHash: "stale", ExpiresAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, repo.Create(ctx, &Session{UserID: userID, RefreshTokenHash: "fresh", ExpiresAt: time.Now().Add(time.Hour)}))

	removed, err := repo.CleanupExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	_, err = repo.GetByTokenHash(ctx, "fresh")
	require.NoError(t, err)
}

func TestPostgresRepo_MalformedIDIsNotFound(t *testing.T) {
	pool := testutil.OpenTestDB(t)
	repo := NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()
	userID := testutil.InsertUser(t, pool, "malformeduser")

	require.ErrorIs(t, repo.DeleteForUser(ctx, "abc", userID), ErrNotFound)

	sessions, err := repo.ListByUserID(ctx, "abc")
	require.NoError(t, err)
	require.Empty(t, sessions)
}

func TestBlacklistPostgresRepo(t *testing.T) {
	pool := testutil.OpenTestDB(t)
	repo := NewBlacklistPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()
	userID := testutil.InsertUser(t, pool, "revokeduser")

	require.NoError(t, repo.AddToken(ctx, "jti-live", userID, time.Now().Add(time.Hour)))
	require.NoError(t, repo.AddToken(ctx, "jti-live", userID, time.Now().Add(time.Hour)))
	require.NoError(t, repo.AddToken(ctx, "jti-old", userID, time.Now().Add(-time.Hour)))

	revoked, err := repo.IsBlacklisted(ctx, "jti-live")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = repo.IsBlacklisted(ctx, "jti-old")
	require.NoError(t, err)
	require.False(t, revoked)

	removed, err := repo.CleanupExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)
}
