package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
)

const schemaLockID int64 = 2026101801

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS extraction_jobs (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	status TEXT NOT NULL,
	progress_current INTEGER NOT NULL DEFAULT 0,
	progress_total INTEGER NOT NULL DEFAULT 0,
	records JSONB,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_extraction_jobs_status ON extraction_jobs(status);
CREATE INDEX IF NOT EXISTS idx_extraction_jobs_created_at ON extraction_jobs(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *JobRepository) Create(ctx context.Context, job *domain.ExtractionJob) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO extraction_jobs (
	id, filename, storage_path, status, progress_current, progress_total, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		job.ID, job.Filename, job.StoragePath, string(job.Status),
		job.Progress.Current, job.Progress.Total, job.Error, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert extraction job: %w", err)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.ExtractionJob, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, storage_path, status, progress_current, progress_total, records, error_message, created_at, updated_at
FROM extraction_jobs
WHERE id = $1
`, id)

	var job domain.ExtractionJob
	var status string
	var recordsRaw []byte

	err := row.Scan(
		&job.ID, &job.Filename, &job.StoragePath, &status, &job.Progress.Current, &job.Progress.Total,
		&recordsRaw, &job.Error, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrJobNotFound, "get job by id", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan extraction job: %w", err)
	}

	if len(recordsRaw) > 0 {
		if err := json.Unmarshal(recordsRaw, &job.Records); err != nil {
			return nil, fmt.Errorf("unmarshal records: %w", err)
		}
	}
	job.Status = domain.JobStatus(status)
	return &job, nil
}

func (r *JobRepository) MarkRunning(ctx context.Context, id string) error {
	return r.update(ctx, "mark job running", `
UPDATE extraction_jobs
SET status = $2, error_message = '', updated_at = $3
WHERE id = $1
`, id, string(domain.JobRunning), time.Now().UTC())
}

func (r *JobRepository) UpdateProgress(ctx context.Context, id string, p domain.Progress) error {
	return r.update(ctx, "update job progress", `
UPDATE extraction_jobs
SET progress_current = $2, progress_total = $3, updated_at = $4
WHERE id = $1
`, id, p.Current, p.Total, time.Now().UTC())
}

func (r *JobRepository) SaveResult(ctx context.Context, id string, records []domain.HighlightRecord) error {
	if records == nil {
		records = []domain.HighlightRecord{}
	}
	recordsJSON, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	return r.update(ctx, "save job result", `
UPDATE extraction_jobs
SET status = $2, records = $3, error_message = '', updated_at = $4
WHERE id = $1
`, id, string(domain.JobSucceeded), recordsJSON, time.Now().UTC())
}

func (r *JobRepository) MarkFailed(ctx context.Context, id string, message string) error {
	return r.update(ctx, "mark job failed", `
UPDATE extraction_jobs
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(domain.JobFailed), message, time.Now().UTC())
}

func (r *JobRepository) update(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrJobNotFound, op, fmt.Errorf("id=%v", args[0]))
	}
	return nil
}
