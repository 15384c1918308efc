package chapters

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new chapter.
func (r *PGRepo) Create(ctx context.Context, ch Chapter) error {
	const query = `
INSERT INTO chapters (
    id,
    book_id,
    order_index,
    title,
    summary,
    target_word_count,
    content,
    word_count,
    status,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	status := ch.Status
	if status == "" {
		status = StatusOutline
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		ch.ID,
		ch.BookID,
		ch.OrderIndex,
		ch.Title,
		ch.Summary,
		ch.TargetWordCount,
		ch.Content,
		ch.WordCount,
		status,
		ch.CreatedAt,
		ch.UpdatedAt,
	)
	return err
}

const chapterColumns = `id, book_id, order_index, title, summary, target_word_count, content, word_count, status, created_at, updated_at`

// GetByID fetches a chapter.
func (r *PGRepo) GetByID(ctx context.Context, chapterID string) (Chapter, error) {
	const query = `
SELECT ` + chapterColumns + `
FROM chapters
WHERE id = $1
LIMIT 1`
	var ch Chapter
	err := r.DB.QueryRowContext(ctx, query, chapterID).Scan(
		&ch.ID,
		&ch.BookID,
		&ch.OrderIndex,
		&ch.Title,
		&ch.Summary,
		&ch.TargetWordCount,
		&ch.Content,
		&ch.WordCount,
		&ch.Status,
		&ch.CreatedAt,
		&ch.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Chapter{}, ErrNotFound
		}
		return Chapter{}, err
	}
	return ch, nil
}

// ListByBook returns a book's chapters in manuscript order.
func (r *PGRepo) ListByBook(ctx context.Context, bookID string) ([]Chapter, error) {
	const query = `
SELECT ` + chapterColumns + `
FROM chapters
WHERE book_id = $1
ORDER BY order_index ASC`

	rows, err := r.DB.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Chapter
	for rows.Next() {
		var ch Chapter
		if err := rows.Scan(
			&ch.ID,
			&ch.BookID,
			&ch.OrderIndex,
			&ch.Title,
			&ch.Summary,
			&ch.TargetWordCount,
			&ch.Content,
			&ch.WordCount,
			&ch.Status,
			&ch.CreatedAt,
			&ch.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// UpdateContent stores generated content and advances status. The write is
// scoped to one chapter row so concurrent generation of distinct chapters
// cannot interfere.
func (r *PGRepo) UpdateContent(ctx context.Context, chapterID, content string, wordCount int, status string, updatedAt time.Time) error {
	const query = `
UPDATE chapters
SET content = $1, word_count = $2, status = $3, updated_at = $4
WHERE id = $5`
	res, err := r.DB.ExecContext(ctx, query, content, wordCount, status, updatedAt, chapterID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
