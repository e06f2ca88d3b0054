package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"libralink/internal/platform/metrics"
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

func (r *PostgresRepo) Overview(ctx context.Context, now time.Time) (Overview, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const query = `
		SELECT
			(SELECT COUNT(*) FROM books),
			(SELECT COALESCE(SUM(total_copies), 0) FROM books),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM loans WHERE returned_at IS NULL),
			(SELECT COUNT(*) FROM loans WHERE returned_at IS NULL AND due_at < $1),
			(SELECT COUNT(*) FROM documents)
	`
	var o Overview
	if err := r.db.QueryRow(ctx, query, now).Scan(
		&o.TotalBooks, &o.TotalCopies, &o.TotalUsers, &o.ActiveLoans, &o.OverdueLoans, &o.TotalDocuments,
	); err != nil {
		return Overview{}, fmt.Errorf("overview: %w", err)
	}
	o.AvailableCopies = o.TotalCopies - o.ActiveLoans
	return o, nil
}

func (r *PostgresRepo) DailyActivity(ctx context.Context, since time.Time) ([]DailyCount, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT (occurred_at AT TIME ZONE 'UTC')::date AS day,
			COUNT(*) FILTER (WHERE type = 'ISSUE'),
			COUNT(*) FILTER (WHERE type = 'RETURN'),
			COUNT(*) FILTER (WHERE type = 'RENEW')
		FROM transactions
		WHERE occurred_at >= $1
		GROUP BY day
		ORDER BY day
	`, since)
	if err != nil {
		return nil, fmt.Errorf("daily activity: %w", err)
	}
	defer rows.Close()

	counts := []DailyCount{}
	for rows.Next() {
		var day time.Time
		var c DailyCount
		if err := rows.Scan(&day, &c.Issues, &c.Returns, &c.Renewals); err != nil {
			return nil, err
		}
		c.Day = day.Format(trendDayLayout)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *PostgresRepo) TopBooks(ctx context.Context, limit int) ([]TopBook, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT b.id, b.title, b.author, COUNT(t.id) AS issues
		FROM transactions t
		JOIN books b ON b.id = t.book_id
		WHERE t.type = 'ISSUE'
		GROUP BY b.id, b.title, b.author
		ORDER BY issues DESC, b.title
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top books: %w", err)
	}
	defer rows.Close()

	books := []TopBook{}
	for rows.Next() {
		var b TopBook
		if err := rows.Scan(&b.BookID, &b.Title, &b.Author, &b.Issues); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *PostgresRepo) GenreDistribution(ctx context.Context) ([]GenreCount, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT COALESCE(NULLIF(b.genre, ''), 'Unknown') AS genre,
			COUNT(DISTINCT b.id) AS books,
			COUNT(t.id) AS issues
		FROM books b
		LEFT JOIN transactions t ON t.book_id = b.id AND t.type = 'ISSUE'
		GROUP BY 1
		ORDER BY issues DESC, books DESC, genre
	`)
	if err != nil {
		return nil, fmt.Errorf("genre distribution: %w", err)
	}
	defer rows.Close()

	genres := []GenreCount{}
	for rows.Next() {
		var g GenreCount
		if err := rows.Scan(&g.Genre, &g.Books, &g.Issues); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

func (r *PostgresRepo) LibraryStats(ctx context.Context, now time.Time) (metrics.LibraryStats, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var s metrics.LibraryStats
	var totalCopies int64
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM loans WHERE returned_at IS NULL),
			(SELECT COUNT(*) FROM loans WHERE returned_at IS NULL AND due_at < $1),
			(SELECT COALESCE(SUM(total_copies), 0) FROM books)
	`, now).Scan(&s.ActiveLoans, &s.OverdueLoans, &totalCopies)
	if err != nil {
		return metrics.LibraryStats{}, fmt.Errorf("library stats: %w", err)
	}
	s.AvailableCopies = totalCopies - s.ActiveLoans
	return s, nil
}
