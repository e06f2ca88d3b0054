package importer

import (
	"context"
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

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) CreateRun(ctx context.Context, run *Run) error {
	const query = `
		INSERT INTO import_runs (requested_by, status, copies, requested, started_at)
		VALUES (NULLIF($1, '')::uuid, $2, $3, $4, $5)
		RETURNING id`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(ctx, query,
		run.RequestedBy, run.Status, run.Copies, run.Requested, run.StartedAt,
	).Scan(&run.ID)
}

func (r *PostgresRepo) FinishRun(ctx context.Context, run *Run) error {
	const query = `
		UPDATE import_runs SET
			status = $2,
			found = $3,
			created = $4,
			updated = $5,
			missing = $6,
			failed = $7,
			error = $8,
			finished_at = $9
		WHERE id = $1`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(ctx, query,
		run.ID, run.Status, run.Found, run.Created, run.Updated,
		run.Missing, run.Failed, run.Error, run.FinishedAt,
	)
	return err
}

func (r *PostgresRepo) GetRun(ctx context.Context, id string) (Run, error) {
	const query = `
		SELECT id, COALESCE(requested_by::text, ''), status, copies, requested, found,
		       created, updated, missing, failed, error, started_at, finished_at
		FROM import_runs
		WHERE id::text = $1`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var run Run
	err := r.db.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.RequestedBy, &run.Status, &run.Copies, &run.Requested, &run.Found,
		&run.Created, &run.Updated, &run.Missing, &run.Failed, &run.Error,
		&run.StartedAt, &run.FinishedAt,
	)
	if err != nil {
		if database.IsNotFound(err) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	return run, nil
}
