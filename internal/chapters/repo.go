package chapters

import (
	"context"
	"time"
)

// Repo defines persistence operations for chapters.
type Repo interface {
	Create(ctx context.Context, ch Chapter) error
	GetByID(ctx context.Context, chapterID string) (Chapter, error)
	ListByBook(ctx context.Context, bookID string) ([]Chapter, error)
	UpdateContent(ctx context.Context, chapterID, content string, wordCount int, status string, updatedAt time.Time) error
}
