package exports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new export job.
func (r *PGRepo) Create(ctx context.Context, job ExportJob) error {
	const query = `
INSERT INTO export_jobs (
    id,
    book_id,
    user_id,
    format,
    status,
    settings,
    file_url,
    error_message,
    created_at,
    completed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	settingsJSON, err := marshalSettings(job.Settings)
	if err != nil {
		return err
	}
	status := job.Status
	if status == "" {
		status = StatusProcessing
	}

	var completedAt sql.NullTime
	if job.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *job.CompletedAt, Valid: true}
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		job.ID,
		job.BookID,
		job.UserID,
		job.Format,
		status,
		settingsJSON,
		job.FileURL,
		job.ErrorMessage,
		job.CreatedAt,
		completedAt,
	)
	return err
}

const jobColumns = `id, book_id, user_id, format, status, settings, file_url, error_message, created_at, completed_at`

// GetByID fetches an export job.
func (r *PGRepo) GetByID(ctx context.Context, jobID string) (ExportJob, error) {
	const query = `
SELECT ` + jobColumns + `
FROM export_jobs
WHERE id = $1
LIMIT 1`
	return scanJob(r.DB.QueryRowContext(ctx, query, jobID))
}

// ListByBook returns a book's export jobs, newest first.
func (r *PGRepo) ListByBook(ctx context.Context, bookID string, limit, offset int) ([]ExportJob, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + jobColumns + `
FROM export_jobs
WHERE book_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, bookID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// MarkComplete finishes a processing job with its artifact URL. Guarding
// on status keeps terminal states terminal.
func (r *PGRepo) MarkComplete(ctx context.Context, jobID, fileURL string, completedAt time.Time) error {
	const query = `
UPDATE export_jobs
SET status = $1, file_url = $2, completed_at = $3
WHERE id = $4 AND status = $5`
	return r.finish(ctx, query, StatusComplete, fileURL, completedAt, jobID)
}

// MarkFailed finishes a processing job with an error message.
func (r *PGRepo) MarkFailed(ctx context.Context, jobID, message string, completedAt time.Time) error {
	const query = `
UPDATE export_jobs
SET status = $1, error_message = $2, completed_at = $3
WHERE id = $4 AND status = $5`
	return r.finish(ctx, query, StatusFailed, message, completedAt, jobID)
}

func (r *PGRepo) finish(ctx context.Context, query, status, detail string, completedAt time.Time, jobID string) error {
	res, err := r.DB.ExecContext(ctx, query, status, detail, completedAt, jobID, StatusProcessing)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, jobID); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrTerminal
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (ExportJob, error) {
	var job ExportJob
	var settingsJSON []byte
	var fileURL sql.NullString
	var errorMessage sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(
		&job.ID,
		&job.BookID,
		&job.UserID,
		&job.Format,
		&job.Status,
		&settingsJSON,
		&fileURL,
		&errorMessage,
		&job.CreatedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ExportJob{}, ErrNotFound
		}
		return ExportJob{}, err
	}
	if len(settingsJSON) > 0 {
		if err := json.Unmarshal(settingsJSON, &job.Settings); err != nil {
			return ExportJob{}, fmt.Errorf("unmarshal settings: %w", err)
		}
	}
	if fileURL.Valid {
		job.FileURL = fileURL.String
	}
	if errorMessage.Valid {
		job.ErrorMessage = errorMessage.String
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	return job, nil
}

func marshalSettings(settings map[string]any) ([]byte, error) {
	if settings == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return data, nil
}

var _ Repo = (*PGRepo)(nil)
