package document

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"libralink/internal/testutil"
)

func TestPostgresRepo_CreateGetDelete(t *testing.T) {
	pool := testutil.OpenTestDB(t)
	repo := NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()
	adminID := testutil.InsertUser(t, pool, "docadmin")

	d := &Document{
		ID:          uuid.NewString(),
		Title:       "Field Guide",
		Filename:    "guide.pdf",
		StorageKey:  "documents/guide.pdf",
		SizeBytes:   2048,
		PageCount:   3,
		ContentType: ContentTypePDF,
		UploadedBy:  adminID,
	}
	require.NoError(t, repo.Create(ctx, d))
	require.NotZero(t, d.CreatedAt)

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, "Field Guide", got.Title)

	docs, total, err := repo.List(ctx, "%", 20, 0)
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, docs)

	require.NoError(t, repo.Delete(ctx, d.ID))
	require.ErrorIs(t, repo.Delete(ctx, d.ID), ErrNotFound)
}

func TestPostgresRepo_MalformedIDIsNotFound(t *testing.T) {
	pool := testutil.OpenTestDB(t)
	repo := NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "abc")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, "abc"), ErrNotFound)
}
