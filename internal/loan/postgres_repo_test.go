package loan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libralink/internal/testutil"
)

var repoPolicy = Policy{
	LoanPeriod:      14 * 24 * time.Hour,
	MaxRenewals:     2,
	MaxActiveLoans:  5,
	FinePerDayCents: 50,
}

func TestPostgresRepo_ConcurrentIssueCannotOversubscribe(t *testing.T) {
	pool := testutil.OpenTestDB(t)
	bookID := testutil.InsertBook(t, pool, "9780547928227", "The Hobbit", 1)

	svc := NewService(NewPostgresRepo(pool, 5*time.Second), repoPolicy)

	const borrowers = 5
	userIDs := make([]string, borrowers)
	for i := range userIDs {
		userIDs[i] = testutil.InsertUser(t, pool, fmt.Sprintf("reader%d", i))
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		issued   int
		rejected int
	)
	for _, userID := range userIDs {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := svc.Issue(context.Background(), userID, bookID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				issued++
			case errors.Is(err, ErrNoCopiesAvailable):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(userID)
	}
	wg.Wait()

	assert.Equal(t, 1, issued)
	assert.Equal(t, borrowers-1, rejected)

	a, err := svc.IsBookAvailable(context.Background(), bookID)
	require.NoError(t, err)
	assert.False(t, a.Available)
	assert.Equal(t, 0, a.AvailableCopies)
}

func TestPostgresRepo_IssueRenewReturnLedger(t *testing.T) {
	pool := testutil.OpenTestDB(t)
	ctx := context.Background()
	bookID := testutil.InsertBook(t, pool, "9780441013593", "Dune", 2)
	userID := testutil.InsertUser(t, pool, "paul")

	svc := NewService(NewPostgresRepo(pool, 5*time.Second), repoPolicy)
	issuedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	l, err := svc.Issue(ctx, userID, bookID)
	require.NoError(t, err)
	assert.True(t, l.DueAt.Equal(issuedAt.Add(14*24*time.Hour)))

	_, err = svc.Issue(ctx, userID, bookID)
	assert.ErrorIs(t, err, ErrAlreadyIssued)

	svc.now = func() time.Time { return issuedAt.Add(10 * 24 * time.Hour) }
	renewed, err := svc.Renew(ctx, userID, bookID)
	require.NoError(t, err)
	assert.Equal(t, 1, renewed.Renewals)
	assert.True(t, renewed.DueAt.Equal(issuedAt.Add(28*24*time.Hour)))

	// Three days past the renewed due date.
	svc.now = func() time.Time { return issuedAt.Add(31 * 24 * time.Hour) }
	returned, err := svc.Return(ctx, userID, bookID)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnedAt)
	assert.Equal(t, int64(150), returned.LateFeeCents)

	_, err = svc.Return(ctx, userID, bookID)
	assert.ErrorIs(t, err, ErrNoActiveLoan)

	txns, total, err := svc.ListTransactions(ctx, userID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, txns, 3)
	stamped := map[TxType]time.Time{}
	for _, tx := range txns {
		stamped[tx.Type] = tx.OccurredAt
	}
	assert.True(t, stamped[TxIssue].Equal(issuedAt))
	assert.True(t, stamped[TxRenew].Equal(issuedAt.Add(10*24*time.Hour)))
	assert.True(t, stamped[TxReturn].Equal(issuedAt.Add(31*24*time.Hour)))

	report, err := svc.FeeSummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), report.SettledCents)
	assert.Zero(t, report.AccruingCents)
}

func TestPostgresRepo_IssueUnknownBook(t *testing.T) {
	pool := testutil.OpenTestDB(t)
	userID := testutil.InsertUser(t, pool, "ghost")
	svc := NewService(NewPostgresRepo(pool, 5*time.Second), repoPolicy)

	_, err := svc.Issue(context.Background(), userID, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = svc.IsBookAvailable(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrBookNotFound)
}
