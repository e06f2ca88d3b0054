package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"libralink/internal/platform/database"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// inTx runs fn in a transaction and commits when it returns nil.
func (r *PostgresRepo) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const loanColumns = `l.id, l.user_id, l.book_id, b.title, b.isbn, l.issued_at, l.due_at, l.returned_at, l.renewals, l.late_fee_cents`

func scanLoan(row pgx.Row) (Loan, error) {
	var l Loan
	err := row.Scan(&l.ID, &l.UserID, &l.BookID, &l.BookTitle, &l.BookISBN,
		&l.IssuedAt, &l.DueAt, &l.ReturnedAt, &l.Renewals, &l.LateFeeCents)
	return l, err
}

func insertTransaction(ctx context.Context, tx pgx.Tx, l Loan, typ TxType, at time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO transactions (user_id, book_id, loan_id, type, occurred_at, due_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.UserID, l.BookID, l.ID, string(typ), at, l.DueAt)
	return err
}

func (r *PostgresRepo) Availability(ctx context.Context, bookID string) (int, int, error) {
	const query = `
		SELECT b.total_copies,
		       (SELECT COUNT(*) FROM loans WHERE book_id = b.id AND returned_at IS NULL)
		FROM books b WHERE b.id = $1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var total, active int
	if err := r.db.QueryRow(timeoutCtx, query, bookID).Scan(&total, &active); err != nil {
		if database.IsNotFound(err) {
			return 0, 0, ErrBookNotFound
		}
		return 0, 0, err
	}
	return total, active, nil
}

// Issue locks the book row, then the borrower, so concurrent issues of the
// same title serialize on copy count and one user's issues serialize on the
// loan limit.
func (r *PostgresRepo) Issue(ctx context.Context, userID, bookID string, decide func(IssueState) (Loan, error)) (Loan, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out Loan
	err := r.inTx(timeoutCtx, func(tx pgx.Tx) error {
		var st IssueState
		var title, isbn string
		err := tx.QueryRow(timeoutCtx, `SELECT total_copies, title, isbn FROM books WHERE id = $1 FOR UPDATE`, bookID).
			Scan(&st.TotalCopies, &title, &isbn)
		if database.IsNotFound(err) {
			return ErrBookNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(timeoutCtx, `SELECT 1 FROM users WHERE id = $1 FOR UPDATE`, userID); err != nil {
			return err
		}

		err = tx.QueryRow(timeoutCtx, `
			SELECT
				(SELECT COUNT(*) FROM loans WHERE book_id = $1 AND returned_at IS NULL),
				EXISTS (SELECT 1 FROM loans WHERE book_id = $1 AND user_id = $2 AND returned_at IS NULL),
				(SELECT COUNT(*) FROM loans WHERE user_id = $2 AND returned_at IS NULL)`,
			bookID, userID).Scan(&st.ActiveLoans, &st.UserHasOpenLoan, &st.UserActiveLoans)
		if err != nil {
			return err
		}

		l, err := decide(st)
		if err != nil {
			return err
		}

		err = tx.QueryRow(timeoutCtx, `
			INSERT INTO loans (user_id, book_id, issued_at, due_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id`, l.UserID, l.BookID, l.IssuedAt, l.DueAt).Scan(&l.ID)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return ErrAlreadyIssued
			}
			return err
		}
		if err := insertTransaction(timeoutCtx, tx, l, TxIssue, l.IssuedAt); err != nil {
			return err
		}
		l.BookTitle, l.BookISBN = title, isbn
		out = l
		return nil
	})
	return out, err
}

func (r *PostgresRepo) lockOpenLoan(ctx context.Context, tx pgx.Tx, userID, bookID string) (Loan, error) {
	query := `SELECT ` + loanColumns + `
		FROM loans l JOIN books b ON b.id = l.book_id
		WHERE l.user_id = $1 AND l.book_id = $2 AND l.returned_at IS NULL
		FOR UPDATE OF l`
	l, err := scanLoan(tx.QueryRow(ctx, query, userID, bookID))
	if database.IsNotFound(err) {
		return Loan{}, ErrNoActiveLoan
	}
	return l, err
}

func (r *PostgresRepo) Return(ctx context.Context, userID, bookID string, decide func(Loan) (Loan, error)) (Loan, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out Loan
	err := r.inTx(timeoutCtx, func(tx pgx.Tx) error {
		current, err := r.lockOpenLoan(timeoutCtx, tx, userID, bookID)
		if err != nil {
			return err
		}
		l, err := decide(current)
		if err != nil {
			return err
		}
		if l.ReturnedAt == nil {
			return errors.New("return decision must set returned_at")
		}
		if _, err := tx.Exec(timeoutCtx,
			`UPDATE loans SET returned_at = $1, late_fee_cents = $2 WHERE id = $3`,
			*l.ReturnedAt, l.LateFeeCents, l.ID); err != nil {
			return err
		}
		if err := insertTransaction(timeoutCtx, tx, l, TxReturn, *l.ReturnedAt); err != nil {
			return err
		}
		out = l
		return nil
	})
	return out, err
}

// Renew records the RENEW transaction at at.
func (r *PostgresRepo) Renew(ctx context.Context, userID, bookID string, at time.Time, decide func(Loan) (Loan, error)) (Loan, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out Loan
	err := r.inTx(timeoutCtx, func(tx pgx.Tx) error {
		current, err := r.lockOpenLoan(timeoutCtx, tx, userID, bookID)
		if err != nil {
			return err
		}
		l, err := decide(current)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(timeoutCtx,
			`UPDATE loans SET due_at = $1, renewals = $2 WHERE id = $3`,
			l.DueAt, l.Renewals, l.ID); err != nil {
			return err
		}
		if err := insertTransaction(timeoutCtx, tx, l, TxRenew, at); err != nil {
			return err
		}
		out = l
		return nil
	})
	return out, err
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string, activeOnly bool) ([]Loan, error) {
	query := `SELECT ` + loanColumns + `
		FROM loans l JOIN books b ON b.id = l.book_id
		WHERE l.user_id = $1 AND ($2 = false OR l.returned_at IS NULL)
		ORDER BY l.issued_at DESC`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, userID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loans := []Loan{}
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

const txColumns = `id, user_id, book_id, loan_id, type, occurred_at, due_at`

func scanTransactions(rows pgx.Rows) ([]Transaction, error) {
	defer rows.Close()
	out := []Transaction{}
	for rows.Next() {
		var t Transaction
		var typ string
		if err := rows.Scan(&t.ID, &t.UserID, &t.BookID, &t.LoanID, &typ, &t.OccurredAt, &t.DueAt); err != nil {
			return nil, err
		}
		t.Type = TxType(typ)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(timeoutCtx, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(timeoutCtx, `SELECT `+txColumns+` FROM transactions
		WHERE user_id = $1 ORDER BY occurred_at DESC, id DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	txns, err := scanTransactions(rows)
	return txns, total, err
}

func (r *PostgresRepo) AllTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, `SELECT `+txColumns+` FROM transactions
		WHERE user_id = $1 ORDER BY occurred_at, id`, userID)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

func (r *PostgresRepo) ListOverdue(ctx context.Context, now time.Time, limit, offset int) ([]Loan, int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(timeoutCtx,
		`SELECT COUNT(*) FROM loans WHERE returned_at IS NULL AND due_at < $1`, now).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + loanColumns + `
		FROM loans l JOIN books b ON b.id = l.book_id
		WHERE l.returned_at IS NULL AND l.due_at < $1
		ORDER BY l.due_at ASC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(timeoutCtx, query, now, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	loans := []Loan{}
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, 0, err
		}
		loans = append(loans, l)
	}
	return loans, total, rows.Err()
}
