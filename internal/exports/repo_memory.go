package exports

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]ExportJob
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]ExportJob)}
}

// Create stores an export job.
func (r *MemoryRepo) Create(ctx context.Context, job ExportJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.Status == "" {
		job.Status = StatusProcessing
	}
	r.data[job.ID] = job
	return nil
}

// GetByID returns an export job.
func (r *MemoryRepo) GetByID(ctx context.Context, jobID string) (ExportJob, error) {
	if err := ctx.Err(); err != nil {
		return ExportJob{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.data[jobID]
	if !ok {
		return ExportJob{}, ErrNotFound
	}
	return job, nil
}

// ListByBook returns a book's export jobs, newest first.
func (r *MemoryRepo) ListByBook(ctx context.Context, bookID string, limit, offset int) ([]ExportJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	var out []ExportJob
	for _, job := range r.data {
		if job.BookID == bookID {
			out = append(out, job)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []ExportJob{}, nil
	}
	end := len(out)
	if offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// MarkComplete finishes a processing job with its artifact URL.
func (r *MemoryRepo) MarkComplete(ctx context.Context, jobID, fileURL string, completedAt time.Time) error {
	return r.finish(ctx, jobID, func(job *ExportJob) {
		job.Status = StatusComplete
		job.FileURL = fileURL
		job.CompletedAt = &completedAt
	})
}

// MarkFailed finishes a processing job with an error message.
func (r *MemoryRepo) MarkFailed(ctx context.Context, jobID, message string, completedAt time.Time) error {
	return r.finish(ctx, jobID, func(job *ExportJob) {
		job.Status = StatusFailed
		job.ErrorMessage = message
		job.CompletedAt = &completedAt
	})
}

func (r *MemoryRepo) finish(ctx context.Context, jobID string, apply func(*ExportJob)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.data[jobID]
	if !ok {
		return ErrNotFound
	}
	if job.Status != StatusProcessing {
		return ErrTerminal
	}
	apply(&job)
	r.data[jobID] = job
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
