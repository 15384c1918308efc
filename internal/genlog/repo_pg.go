package genlog

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Append inserts a log entry.
func (r *PGRepo) Append(ctx context.Context, entry Entry) error {
	const query = `
INSERT INTO generation_logs (
    id,
    book_id,
    chapter_id,
    action_type,
    prompt_excerpt,
    response_excerpt,
    model,
    tokens_used,
    credits_charged,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var bookID sql.NullString
	if entry.BookID != "" {
		bookID = sql.NullString{String: entry.BookID, Valid: true}
	}
	var chapterID sql.NullString
	if entry.ChapterID != "" {
		chapterID = sql.NullString{String: entry.ChapterID, Valid: true}
	}
	var tokens sql.NullInt64
	if entry.TokensUsed != nil {
		tokens = sql.NullInt64{Int64: int64(*entry.TokensUsed), Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		entry.ID,
		bookID,
		chapterID,
		entry.ActionType,
		entry.PromptExcerpt,
		entry.ResponseExcerpt,
		entry.Model,
		tokens,
		entry.CreditsCharged,
		entry.CreatedAt,
	)
	return err
}

// ListByBook returns log entries for a book, newest first.
func (r *PGRepo) ListByBook(ctx context.Context, bookID string, limit, offset int) ([]Entry, error) {
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
SELECT id, book_id, chapter_id, action_type, prompt_excerpt, response_excerpt, model, tokens_used, credits_charged, created_at
FROM generation_logs
WHERE book_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, bookID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var entry Entry
		var gotBookID sql.NullString
		var chapterID sql.NullString
		var tokens sql.NullInt64
		if err := rows.Scan(
			&entry.ID,
			&gotBookID,
			&chapterID,
			&entry.ActionType,
			&entry.PromptExcerpt,
			&entry.ResponseExcerpt,
			&entry.Model,
			&tokens,
			&entry.CreditsCharged,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if gotBookID.Valid {
			entry.BookID = gotBookID.String
		}
		if chapterID.Valid {
			entry.ChapterID = chapterID.String
		}
		if tokens.Valid {
			total := int(tokens.Int64)
			entry.TokensUsed = &total
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
