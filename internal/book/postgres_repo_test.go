package book_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"libralink/internal/book"
	"libralink/internal/testutil"
)

func TestPostgresRepo_MalformedIDIsNotFound(t *testing.T) {
	pool := testutil.OpenTestDB(t)
	repo := book.NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "abc")
	require.ErrorIs(t, err, book.ErrNotFound)

	title := "Renamed"
	_, err = repo.Update(ctx, "abc", book.Patch{Title: &title})
	require.ErrorIs(t, err, book.ErrNotFound)

	require.ErrorIs(t, repo.Delete(ctx, "abc"), book.ErrNotFound)
}

func TestPostgresRepo_ListMatchesWildcardsLiterally(t *testing.T) {
	pool := testutil.OpenTestDB(t)
	repo := book.NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()

	testutil.InsertBook(t, pool, "9780441013593", "Dune", 1)
	testutil.InsertBook(t, pool, "9780306406157", "100% Pure_Fiction", 1)

	books, total, err := repo.List(ctx, book.Query{Q: "%", Limit: 20})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "100% Pure_Fiction", books[0].Title)

	_, total, err = repo.List(ctx, book.Query{Q: "_", Limit: 20})
	require.NoError(t, err)
	require.Equal(t, 1, total)

	books, total, err = repo.List(ctx, book.Query{Q: "dune", Limit: 20})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "Dune", books[0].Title)
}
