package books

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookstudio-backend/internal/blueprints"
	"bookstudio-backend/internal/chapters"
	"bookstudio-backend/internal/shared/telemetry"
)

// Service materializes accepted blueprints into persisted books and
// chapters, and serves book reads and metadata edits.
type Service struct {
	Repo     Repo
	Chapters chapters.Repo
}

// Materialize creates the book record first, then one chapter per outline
// with contiguous 0-based order_index matching outline order, all in
// status outline. A chapter insert failure after the book insert yields a
// *PartialMaterializationError naming the chapters that made it.
func (s *Service) Materialize(ctx context.Context, bp blueprints.Blueprint, userID, subtitle string) (Book, []chapters.Chapter, error) {
	if userID == "" {
		return Book{}, nil, errors.New("userID is required")
	}
	subtitle = strings.TrimSpace(subtitle)
	if subtitle == "" && len(bp.SubtitleOptions) > 0 {
		subtitle = bp.SubtitleOptions[0]
	}

	now := time.Now().UTC()
	book := Book{
		ID:              uuid.NewString(),
		UserID:          userID,
		Title:           bp.Title,
		Subtitle:        subtitle,
		Description:     bp.Description,
		BookType:        bp.BookType,
		TargetAudience:  bp.TargetAudience,
		TargetWordCount: bp.TargetWordCount,
		Blueprint:       bp,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if strings.TrimSpace(bp.Tone) != "" {
		book.VoiceProfile = &VoiceProfile{
			Tone:            bp.Tone,
			VocabularyLevel: "moderate",
		}
	}

	if err := s.Repo.Create(ctx, book); err != nil {
		return Book{}, nil, err
	}

	created := make([]chapters.Chapter, 0, len(bp.Chapters))
	for i, outline := range bp.Chapters {
		ch := chapterFromOutline(book.ID, i, outline, now)
		if err := s.Chapters.Create(ctx, ch); err != nil {
			ids := make([]string, 0, len(created))
			for _, c := range created {
				ids = append(ids, c.ID)
			}
			telemetry.Error("books.materialize_partial", map[string]any{
				"book_id":      book.ID,
				"created":      len(ids),
				"failed_index": i,
				"error":        err.Error(),
			})
			return book, created, &PartialMaterializationError{
				BookID:            book.ID,
				CreatedChapterIDs: ids,
				FailedIndex:       i,
				Err:               err,
			}
		}
		created = append(created, ch)
	}

	return book, created, nil
}

// MaterializeMissing creates any chapters from the book's blueprint
// snapshot whose order_index is not yet persisted. Used to finish a
// partial materialization without discarding the book.
func (s *Service) MaterializeMissing(ctx context.Context, userID, bookID string) ([]chapters.Chapter, error) {
	book, err := s.Repo.GetByID(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	existing, err := s.Chapters.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	have := make(map[int]bool, len(existing))
	for _, ch := range existing {
		have[ch.OrderIndex] = true
	}

	now := time.Now().UTC()
	var created []chapters.Chapter
	for i, outline := range book.Blueprint.Chapters {
		if have[i] {
			continue
		}
		ch := chapterFromOutline(bookID, i, outline, now)
		if err := s.Chapters.Create(ctx, ch); err != nil {
			ids := make([]string, 0, len(created))
			for _, c := range created {
				ids = append(ids, c.ID)
			}
			return created, &PartialMaterializationError{
				BookID:            bookID,
				CreatedChapterIDs: ids,
				FailedIndex:       i,
				Err:               err,
			}
		}
		created = append(created, ch)
	}
	return created, nil
}

// Get returns a book with its chapters in manuscript order.
func (s *Service) Get(ctx context.Context, userID, bookID string) (Book, []chapters.Chapter, error) {
	book, err := s.Repo.GetByID(ctx, userID, bookID)
	if err != nil {
		return Book{}, nil, err
	}
	chs, err := s.Chapters.ListByBook(ctx, bookID)
	if err != nil {
		return Book{}, nil, err
	}
	return book, chs, nil
}

// List returns a user's books newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Book, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// UpdateMetadata applies a metadata patch.
func (s *Service) UpdateMetadata(ctx context.Context, userID, bookID string, patch MetadataPatch) (Book, error) {
	return s.Repo.UpdateMetadata(ctx, userID, bookID, patch)
}

func chapterFromOutline(bookID string, index int, outline blueprints.ChapterOutline, now time.Time) chapters.Chapter {
	return chapters.Chapter{
		ID:              uuid.NewString(),
		BookID:          bookID,
		OrderIndex:      index,
		Title:           outline.Title,
		Summary:         outline.Summary,
		TargetWordCount: outline.TargetWordCount,
		Status:          chapters.StatusOutline,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
