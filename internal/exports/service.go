package exports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bookstudio-backend/internal/books"
	"bookstudio-backend/internal/queue"
	"bookstudio-backend/internal/shared/metrics"
	"bookstudio-backend/internal/shared/telemetry"
)

// Service coordinates export job lifecycle: it records a processing job,
// delegates rendering, and resolves the job to complete or failed.
type Service struct {
	Repo     Repo
	Books    *books.Service
	Renderer Renderer
	// Queue, when set, routes rendering to the background worker instead
	// of running it inline on the request path.
	Queue queue.Client
}

// Begin validates the request, persists a job in processing, and starts
// rendering. With a queue configured the job is handed to the worker and
// returned still in processing; otherwise rendering runs inline and the
// returned job is already terminal.
func (s *Service) Begin(ctx context.Context, userID, bookID, format string, settings map[string]any) (ExportJob, error) {
	if !ValidFormat(format) {
		return ExportJob{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	// Ownership check happens here: a book the caller does not own reads
	// as missing.
	book, _, err := s.Books.Get(ctx, userID, bookID)
	if err != nil {
		return ExportJob{}, err
	}

	job := ExportJob{
		ID:        uuid.NewString(),
		BookID:    book.ID,
		UserID:    book.UserID,
		Format:    format,
		Status:    StatusProcessing,
		Settings:  settings,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return ExportJob{}, fmt.Errorf("create export job: %w", err)
	}
	metrics.IncExportStarted()

	if s.Queue != nil {
		msg := queue.Message{
			ExportID:   job.ID,
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
			Version:    1,
		}
		if err := s.Queue.Send(ctx, msg); err != nil {
			// The job is already on record, so resolve it rather than
			// leaving it stuck in processing.
			s.fail(ctx, job.ID, "failed to enqueue export")
			return ExportJob{}, fmt.Errorf("enqueue export: %w", err)
		}
		return job, nil
	}

	return s.render(ctx, job)
}

// Process renders a previously enqueued job. The worker calls this with
// the id from the queue message.
func (s *Service) Process(ctx context.Context, jobID string) error {
	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != StatusProcessing {
		return ErrTerminal
	}
	_, err = s.render(ctx, job)
	return err
}

func (s *Service) render(ctx context.Context, job ExportJob) (ExportJob, error) {
	book, chs, err := s.Books.Get(ctx, job.UserID, job.BookID)
	if err != nil {
		s.fail(ctx, job.ID, "failed to load book for export")
		return ExportJob{}, err
	}

	fileURL, err := s.Renderer.Render(ctx, job, book, chs)
	if err != nil {
		s.fail(ctx, job.ID, "rendering failed")
		return ExportJob{}, fmt.Errorf("render export: %w", err)
	}

	now := time.Now().UTC()
	if err := s.Repo.MarkComplete(ctx, job.ID, fileURL, now); err != nil {
		if errors.Is(err, ErrTerminal) {
			return s.Repo.GetByID(ctx, job.ID)
		}
		return ExportJob{}, fmt.Errorf("complete export job: %w", err)
	}
	metrics.IncExportCompleted()

	job.Status = StatusComplete
	job.FileURL = fileURL
	job.CompletedAt = &now
	return job, nil
}

func (s *Service) fail(ctx context.Context, jobID, message string) {
	metrics.IncExportFailed()
	if err := s.Repo.MarkFailed(ctx, jobID, message, time.Now().UTC()); err != nil && !errors.Is(err, ErrTerminal) {
		telemetry.Error("exports.mark_failed", map[string]any{
			"export_id": jobID,
			"error":     err.Error(),
		})
	}
}

// Get returns a single export job. A job owned by another user reads as
// missing.
func (s *Service) Get(ctx context.Context, userID, jobID string) (ExportJob, error) {
	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return ExportJob{}, err
	}
	if job.UserID != userID {
		return ExportJob{}, ErrNotFound
	}
	return job, nil
}

// ListByBook returns the book's export jobs, newest first.
func (s *Service) ListByBook(ctx context.Context, userID, bookID string, limit, offset int) ([]ExportJob, error) {
	if _, _, err := s.Books.Get(ctx, userID, bookID); err != nil {
		return nil, err
	}
	return s.Repo.ListByBook(ctx, bookID, limit, offset)
}
