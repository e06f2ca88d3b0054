package rating

import (
	"context"
	"database/sql"
	"fmt"
	"time"

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

func (repo *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, repo.timeout)
}

// isMissingBook matches a foreign key violation or a malformed book UUID.
func isMissingBook(err error) bool {
	return database.IsForeignKeyViolation(err) || database.IsInvalidID(err)
}

func (repo *PostgresRepo) Upsert(ctx context.Context, r *Rating) error {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	upsertSQL := `
		INSERT INTO ratings(user_id, book_id, star, review, created_at, updated_at)
		VALUES($1, $2, $3, $4, now(), now())
		ON CONFLICT(user_id, book_id)
		DO UPDATE SET star = excluded.star, review = excluded.review, updated_at = now()
		RETURNING created_at, updated_at
	`
	err := repo.db.QueryRow(ctx, upsertSQL, r.UserID, r.BookID, r.Star, r.Review).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if isMissingBook(err) {
			return ErrBookNotFound
		}
		return err
	}
	return nil
}

func (repo *PostgresRepo) Delete(ctx context.Context, userID, bookID string) error {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	tag, err := repo.db.Exec(ctx, `DELETE FROM ratings WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (repo *PostgresRepo) GetBookRating(ctx context.Context, bookID string) (float64, int, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT AVG(r.star)::FLOAT, COUNT(r.star)
		FROM ratings r
		WHERE r.book_id = $1
	`
	var average sql.NullFloat64
	var count int
	if err := repo.db.QueryRow(ctx, query, bookID).Scan(&average, &count); err != nil {
		return 0, 0, err
	}
	if !average.Valid {
		return 0, 0, nil
	}
	return average.Float64, count, nil
}

func (repo *PostgresRepo) ListReviews(ctx context.Context, bookID string, limit, offset int) ([]Rating, int, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	var total int
	if err := repo.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM ratings WHERE book_id = $1 AND review <> ''`, bookID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	rows, err := repo.db.Query(ctx, `
		SELECT r.user_id, u.username, r.book_id, r.star, r.review, r.created_at, r.updated_at
		FROM ratings r
		JOIN users u ON u.id = r.user_id
		WHERE r.book_id = $1 AND r.review <> ''
		ORDER BY r.updated_at DESC
		LIMIT $2 OFFSET $3
	`, bookID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []Rating{}
	for rows.Next() {
		var r Rating
		if err := rows.Scan(&r.UserID, &r.Username, &r.BookID, &r.Star, &r.Review, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, r)
	}
	return reviews, total, rows.Err()
}

func (repo *PostgresRepo) GetUserRatingStats(ctx context.Context, userID string) (float64, int, error) {
	ctx, cancel := repo.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT AVG(star)::FLOAT, COUNT(star)
		FROM ratings
		WHERE user_id = $1
	`
	var average sql.NullFloat64
	var count int
	if err := repo.db.QueryRow(ctx, query, userID).Scan(&average, &count); err != nil {
		return 0, 0, err
	}
	if !average.Valid {
		return 0, 0, nil
	}
	return average.Float64, count, nil
}
