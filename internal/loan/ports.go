package loan

import (
	"context"
	"time"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=loan

// Repository runs each circulation change inside one database transaction.
// The callbacks receive the locked state and return the row to write, or an
// error that rolls the transaction back.
type Repository interface {
	Availability(ctx context.Context, bookID string) (total, active int, err error)
	Issue(ctx context.Context, userID, bookID string, decide func(IssueState) (Loan, error)) (Loan, error)
	Return(ctx context.Context, userID, bookID string, decide func(Loan) (Loan, error)) (Loan, error)
	Renew(ctx context.Context, userID, bookID string, at time.Time, decide func(Loan) (Loan, error)) (Loan, error)
	ListByUser(ctx context.Context, userID string, activeOnly bool) ([]Loan, error)
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, int, error)
	AllTransactions(ctx context.Context, userID string) ([]Transaction, error)
	ListOverdue(ctx context.Context, now time.Time, limit, offset int) ([]Loan, int, error)
}
