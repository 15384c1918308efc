package books

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookstudio-backend/internal/blueprints"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new book with its blueprint snapshot.
func (r *PGRepo) Create(ctx context.Context, b Book) error {
	const query = `
INSERT INTO books (
    id,
    user_id,
    title,
    subtitle,
    description,
    book_type,
    target_audience,
    target_word_count,
    voice_profile,
    blueprint,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	voiceJSON, err := marshalVoice(b.VoiceProfile)
	if err != nil {
		return err
	}
	blueprintJSON, err := json.Marshal(b.Blueprint)
	if err != nil {
		return fmt.Errorf("marshal blueprint: %w", err)
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		b.ID,
		b.UserID,
		b.Title,
		b.Subtitle,
		b.Description,
		b.BookType,
		b.TargetAudience,
		b.TargetWordCount,
		voiceJSON,
		blueprintJSON,
		b.CreatedAt,
		b.UpdatedAt,
	)
	return err
}

const bookColumns = `id, user_id, title, subtitle, description, book_type, target_audience, target_word_count, voice_profile, blueprint, created_at, updated_at`

// GetByID fetches a book owned by the given user.
func (r *PGRepo) GetByID(ctx context.Context, userID, bookID string) (Book, error) {
	const query = `
SELECT ` + bookColumns + `
FROM books
WHERE user_id = $1 AND id = $2
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID, bookID))
}

// ListByUser lists books newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Book, error) {
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
SELECT ` + bookColumns + `
FROM books
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateMetadata applies a metadata patch and returns the updated book.
func (r *PGRepo) UpdateMetadata(ctx context.Context, userID, bookID string, patch MetadataPatch) (Book, error) {
	current, err := r.GetByID(ctx, userID, bookID)
	if err != nil {
		return Book{}, err
	}
	applyPatch(&current, patch)
	current.UpdatedAt = time.Now().UTC()

	voiceJSON, err := marshalVoice(current.VoiceProfile)
	if err != nil {
		return Book{}, err
	}

	const query = `
UPDATE books
SET title = $1, subtitle = $2, description = $3, target_audience = $4, voice_profile = $5, updated_at = $6
WHERE user_id = $7 AND id = $8`
	res, err := r.DB.ExecContext(ctx, query,
		current.Title,
		current.Subtitle,
		current.Description,
		current.TargetAudience,
		voiceJSON,
		current.UpdatedAt,
		userID,
		bookID,
	)
	if err != nil {
		return Book{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Book{}, err
	}
	if affected == 0 {
		return Book{}, ErrNotFound
	}
	return current, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (Book, error) {
	var b Book
	var voiceJSON []byte
	var blueprintJSON []byte
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.Title,
		&b.Subtitle,
		&b.Description,
		&b.BookType,
		&b.TargetAudience,
		&b.TargetWordCount,
		&voiceJSON,
		&blueprintJSON,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	if len(voiceJSON) > 0 {
		var vp VoiceProfile
		if err := json.Unmarshal(voiceJSON, &vp); err != nil {
			return Book{}, fmt.Errorf("unmarshal voice profile: %w", err)
		}
		b.VoiceProfile = &vp
	}
	if len(blueprintJSON) > 0 {
		var bp blueprints.Blueprint
		if err := json.Unmarshal(blueprintJSON, &bp); err != nil {
			return Book{}, fmt.Errorf("unmarshal blueprint snapshot: %w", err)
		}
		b.Blueprint = bp
	}
	return b, nil
}

func marshalVoice(vp *VoiceProfile) ([]byte, error) {
	if vp == nil {
		return nil, nil
	}
	data, err := json.Marshal(vp)
	if err != nil {
		return nil, fmt.Errorf("marshal voice profile: %w", err)
	}
	return data, nil
}

func applyPatch(b *Book, patch MetadataPatch) {
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Subtitle != nil {
		b.Subtitle = *patch.Subtitle
	}
	if patch.Description != nil {
		b.Description = *patch.Description
	}
	if patch.TargetAudience != nil {
		b.TargetAudience = *patch.TargetAudience
	}
	if patch.VoiceProfile != nil {
		b.VoiceProfile = patch.VoiceProfile
	}
}

var _ Repo = (*PGRepo)(nil)
