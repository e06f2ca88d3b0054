package bookmark

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"libralink/internal/book"
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

func (r *PostgresRepo) Add(ctx context.Context, userID, bookID string) error {
	// The no-op update makes a repeated bookmark count as an affected row, so
	// zero rows means the book does not exist.
	const upsertSQL = `
		INSERT INTO bookmarks (user_id, book_id, created_at)
		SELECT $1, b.id, NOW()
		FROM books b
		WHERE b.id = $2
		ON CONFLICT (user_id, book_id)
		DO UPDATE SET created_at = bookmarks.created_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	commandTag, err := r.db.Exec(timeoutCtx, upsertSQL, userID, bookID)
	if err != nil {
		if database.IsInvalidID(err) {
			return ErrBookNotFound
		}
		return err
	}
	if commandTag.RowsAffected() == 0 {
		return ErrBookNotFound
	}
	return nil
}

func (r *PostgresRepo) Remove(ctx context.Context, userID, bookID string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	commandTag, err := r.db.Exec(timeoutCtx, `DELETE FROM bookmarks WHERE user_id = $1 AND book_id::text = $2`, userID, bookID)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Count(ctx context.Context, userID string) (int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var total int
	err := r.db.QueryRow(timeoutCtx, `SELECT COUNT(*) FROM bookmarks WHERE user_id = $1`, userID).Scan(&total)
	return total, err
}

func (r *PostgresRepo) List(ctx context.Context, userID string, limit, offset int) ([]Item, int, error) {
	total, err := r.Count(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	dataSQL := `
		SELECT ` + book.Columns + `, bm.created_at
		FROM bookmarks bm
		JOIN books b ON b.id = bm.book_id
		` + book.ActiveLoansJoin + `
		WHERE bm.user_id = $1
		ORDER BY bm.created_at DESC, b.title
		LIMIT $2 OFFSET $3
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, dataSQL, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		b := &it.Book
		if err := rows.Scan(
			&b.ID, &b.ISBN, &b.Title, &b.Subtitle, &b.Author, &b.Genre, &b.Publisher, &b.Description,
			&b.PublicationYear, &b.PageCount, &b.Language, &b.CoverURL,
			&b.TotalCopies, &b.AvailableCopies,
			&b.CreatedAt, &b.UpdatedAt,
			&it.BookmarkedAt,
		); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}
