package genlog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bookstudio-backend/internal/shared/telemetry"
)

// Service writes audit entries best-effort. A failed write is emitted to
// the error channel but never propagated: logging must not fail an
// otherwise-successful generation.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Append truncates excerpts, assigns id/timestamp, and writes the entry.
// Uses a detached context with its own deadline so a cancelled request
// context cannot suppress the audit write.
func (s *Service) Append(ctx context.Context, entry Entry) {
	if s == nil || s.Repo == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.PromptExcerpt = truncate(entry.PromptExcerpt, PromptExcerptLimit)
	entry.ResponseExcerpt = truncate(entry.ResponseExcerpt, ResponseExcerptLimit)

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.Repo.Append(writeCtx, entry); err != nil {
		telemetry.Error("genlog.append_failed", map[string]any{
			"book_id":     entry.BookID,
			"chapter_id":  entry.ChapterID,
			"action_type": entry.ActionType,
			"error":       err.Error(),
		})
	}
}

// ListByBook returns entries for a book, newest first.
func (s *Service) ListByBook(ctx context.Context, bookID string, limit, offset int) ([]Entry, error) {
	return s.Repo.ListByBook(ctx, bookID, limit, offset)
}

func truncate(raw string, limit int) string {
	if limit <= 0 || len(raw) <= limit {
		return raw
	}
	return raw[:limit]
}
