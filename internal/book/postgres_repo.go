package book

import (
	"context"
	"fmt"
	"strings"
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

// ActiveLoansJoin and Columns let other packages select books with their
// available copy count.
const ActiveLoansJoin = `LEFT JOIN (
	SELECT book_id, COUNT(*) AS active FROM loans WHERE returned_at IS NULL GROUP BY book_id
) l_stats ON l_stats.book_id = b.id`

const Columns = `b.id, b.isbn, b.title, b.subtitle, b.author, b.genre, b.publisher, b.description,
	b.publication_year, b.page_count, b.language, b.cover_url,
	b.total_copies, b.total_copies - COALESCE(l_stats.active, 0) AS available_copies,
	b.created_at, b.updated_at`

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.ISBN, &b.Title, &b.Subtitle, &b.Author, &b.Genre, &b.Publisher, &b.Description,
		&b.PublicationYear, &b.PageCount, &b.Language, &b.CoverURL,
		&b.TotalCopies, &b.AvailableCopies,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if database.IsNotFound(err) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Genre != "" {
		clauses = append(clauses, fmt.Sprintf("b.genre = $%d", argn))
		args = append(args, q.Genre)
		argn++
	}

	if len(q.Genres) > 0 {
		clauses = append(clauses, fmt.Sprintf("b.genre = ANY($%d)", argn))
		args = append(args, q.Genres)
		argn++
	}

	if q.Author != "" {
		clauses = append(clauses, fmt.Sprintf("b.author ILIKE $%d", argn))
		args = append(args, database.ContainsPattern(q.Author))
		argn++
	}

	if q.Publisher != "" {
		clauses = append(clauses, fmt.Sprintf("b.publisher = $%d", argn))
		args = append(args, q.Publisher)
		argn++
	}

	if q.Language != "" {
		clauses = append(clauses, fmt.Sprintf("b.language = $%d", argn))
		args = append(args, q.Language)
		argn++
	}

	if q.YearFrom != nil {
		clauses = append(clauses, fmt.Sprintf("b.publication_year >= $%d", argn))
		args = append(args, *q.YearFrom)
		argn++
	}

	if q.YearTo != nil {
		clauses = append(clauses, fmt.Sprintf("b.publication_year <= $%d", argn))
		args = append(args, *q.YearTo)
		argn++
	}

	if q.AvailableOnly {
		clauses = append(clauses, "b.total_copies - COALESCE(l_stats.active, 0) > 0")
	}

	if q.Search != "" {
		clauses = append(clauses, fmt.Sprintf("b.search_vector @@ plainto_tsquery('english', $%d)", argn))
		args = append(args, q.Search)
		argn++
	} else if q.Q != "" {
		clauses = append(clauses, fmt.Sprintf("(b.isbn ILIKE $%[1]d OR b.title ILIKE $%[1]d OR b.author ILIKE $%[1]d OR b.description ILIKE $%[1]d OR b.genre ILIKE $%[1]d)", argn))
		args = append(args, database.ContainsPattern(q.Q))
		argn++
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	ratingJoin := ""
	if q.MinRating != nil {
		ratingJoin = "JOIN (SELECT book_id, AVG(star) AS avg_star FROM ratings GROUP BY book_id) r_stats ON r_stats.book_id = b.id"
		where += fmt.Sprintf(" AND r_stats.avg_star >= $%d", argn)
		args = append(args, *q.MinRating)
		argn++
	}

	var sortCol string
	if q.Search != "" && q.Sort == "relevance" {
		sortCol = fmt.Sprintf("ts_rank(b.search_vector, plainto_tsquery('english', $%d))", argn-1)
		if q.MinRating != nil {
			sortCol = fmt.Sprintf("ts_rank(b.search_vector, plainto_tsquery('english', $%d))", argn-2)
		}
	} else {
		switch q.Sort {
		case "created_at":
			sortCol = "b.created_at"
		case "rating":
			if ratingJoin == "" {
				ratingJoin = "LEFT JOIN (SELECT book_id, AVG(star) AS avg_star FROM ratings GROUP BY book_id) r_stats ON r_stats.book_id = b.id"
			}
			sortCol = "COALESCE(r_stats.avg_star, 0)"
		case "year":
			sortCol = "b.publication_year"
		default:
			sortCol = "b.title"
		}
	}

	order := "ASC"
	if q.Desc || q.Sort == "relevance" || q.Sort == "rating" {
		order = "DESC"
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM books b %s %s %s", ActiveLoansJoin, ratingJoin, where)
	var total int
	if err := r.db.QueryRow(timeoutCtx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`
		SELECT %s
		FROM books b
		%s
		%s
		%s
		ORDER BY %s %s, b.id
		LIMIT $%d OFFSET $%d`,
		Columns, ActiveLoansJoin, ratingJoin, where, sortCol, order, argn, argn+1)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, q.Limit, q.Offset)
	rows, err := r.db.Query(timeoutCtx, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Book, error) {
	query := `SELECT ` + Columns + ` FROM books b ` + ActiveLoansJoin + ` WHERE b.id = $1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanBook(r.db.QueryRow(timeoutCtx, query, id))
}

func (r *PostgresRepo) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	query := `SELECT ` + Columns + ` FROM books b ` + ActiveLoansJoin + ` WHERE b.isbn = $1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanBook(r.db.QueryRow(timeoutCtx, query, isbn))
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const query = `
		INSERT INTO books (isbn, title, subtitle, author, genre, publisher, description,
		                   publication_year, page_count, language, cover_url, total_copies)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query,
		b.ISBN, b.Title, b.Subtitle, b.Author, b.Genre, b.Publisher, b.Description,
		b.PublicationYear, b.PageCount, b.Language, b.CoverURL, b.TotalCopies,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return ErrDuplicateISBN
	}
	return err
}

// Update locks the row so the active-loan check and the write see the same
// state as concurrent issues.
func (r *PostgresRepo) Update(ctx context.Context, id string, p Patch) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return Book{}, err
	}
	defer func() { _ = tx.Rollback(timeoutCtx) }()

	var active int
	err = tx.QueryRow(timeoutCtx, `
		SELECT (SELECT COUNT(*) FROM loans WHERE book_id = b.id AND returned_at IS NULL)
		FROM books b WHERE b.id = $1 FOR UPDATE`, id).Scan(&active)
	if err != nil {
		if database.IsNotFound(err) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	if p.TotalCopies != nil && *p.TotalCopies < active {
		return Book{}, ErrCopiesOnLoan
	}

	fields := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		fields = append(fields, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Subtitle != nil {
		add("subtitle", *p.Subtitle)
	}
	if p.Author != nil {
		add("author", *p.Author)
	}
	if p.Genre != nil {
		add("genre", *p.Genre)
	}
	if p.Publisher != nil {
		add("publisher", *p.Publisher)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.PublicationYear != nil {
		add("publication_year", *p.PublicationYear)
	}
	if p.PageCount != nil {
		add("page_count", *p.PageCount)
	}
	if p.Language != nil {
		add("language", *p.Language)
	}
	if p.CoverURL != nil {
		add("cover_url", *p.CoverURL)
	}
	if p.TotalCopies != nil {
		add("total_copies", *p.TotalCopies)
	}
	fields = append(fields, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE books SET %s WHERE id = $%d", strings.Join(fields, ", "), len(args))
	if _, err := tx.Exec(timeoutCtx, query, args...); err != nil {
		return Book{}, err
	}

	b, err := scanBook(tx.QueryRow(timeoutCtx, `SELECT `+Columns+` FROM books b `+ActiveLoansJoin+` WHERE b.id = $1`, id))
	if err != nil {
		return Book{}, err
	}
	if err := tx.Commit(timeoutCtx); err != nil {
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	const query = `
		DELETE FROM books b
		WHERE b.id = $1
		  AND NOT EXISTS (SELECT 1 FROM loans WHERE book_id = b.id AND returned_at IS NULL)`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, id)
	if err != nil {
		if database.IsInvalidID(err) {
			return ErrNotFound
		}
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(timeoutCtx, `SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrCopiesOnLoan
	}
	return ErrNotFound
}

func (r *PostgresRepo) UpsertByISBN(ctx context.Context, b *Book) (bool, error) {
	const query = `
		INSERT INTO books (isbn, title, subtitle, author, genre, publisher, description,
		                   publication_year, page_count, language, cover_url, total_copies)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (isbn) DO UPDATE SET
			title = EXCLUDED.title,
			subtitle = EXCLUDED.subtitle,
			author = EXCLUDED.author,
			genre = COALESCE(NULLIF(EXCLUDED.genre, ''), books.genre),
			publisher = EXCLUDED.publisher,
			description = COALESCE(NULLIF(EXCLUDED.description, ''), books.description),
			publication_year = EXCLUDED.publication_year,
			page_count = EXCLUDED.page_count,
			language = EXCLUDED.language,
			cover_url = COALESCE(books.cover_url, EXCLUDED.cover_url),
			updated_at = now()
		RETURNING id, total_copies, created_at, updated_at, (xmax = 0) AS inserted`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var inserted bool
	err := r.db.QueryRow(timeoutCtx, query,
		b.ISBN, b.Title, b.Subtitle, b.Author, b.Genre, b.Publisher, b.Description,
		b.PublicationYear, b.PageCount, b.Language, b.CoverURL, b.TotalCopies,
	).Scan(&b.ID, &b.TotalCopies, &b.CreatedAt, &b.UpdatedAt, &inserted)
	return inserted, err
}
