package document

import (
	"context"
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

const documentColumns = `id, title, description, filename, storage_key, size_bytes, page_count,
	content_type, uploaded_by, created_at`

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.Title, &d.Description, &d.Filename, &d.StorageKey, &d.SizeBytes,
		&d.PageCount, &d.ContentType, &d.UploadedBy, &d.CreatedAt)
	if err != nil {
		if database.IsNotFound(err) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return d, nil
}

func (r *PostgresRepo) Create(ctx context.Context, d *Document) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO documents (id, title, description, filename, storage_key, size_bytes, page_count, content_type, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		d.ID, d.Title, d.Description, d.Filename, d.StorageKey, d.SizeBytes, d.PageCount, d.ContentType, d.UploadedBy,
	).Scan(&d.CreatedAt)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Document, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return scanDocument(r.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
}

func (r *PostgresRepo) List(ctx context.Context, q string, limit, offset int) ([]Document, int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	where := ""
	args := []any{}
	if q != "" {
		where = "WHERE title ILIKE $1 OR description ILIKE $1"
		args = append(args, database.ContainsPattern(q))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM documents %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		documentColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, d)
	}
	return docs, total, rows.Err()
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		if database.IsInvalidID(err) {
			return ErrNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
