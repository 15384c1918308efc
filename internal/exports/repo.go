package exports

import (
	"context"
	"time"
)

// Repo defines persistence for export jobs. Completion updates apply only
// to jobs still in processing, which keeps the state machine monotonic at
// the storage layer.
type Repo interface {
	Create(ctx context.Context, job ExportJob) error
	GetByID(ctx context.Context, jobID string) (ExportJob, error)
	ListByBook(ctx context.Context, bookID string, limit, offset int) ([]ExportJob, error)
	MarkComplete(ctx context.Context, jobID, fileURL string, completedAt time.Time) error
	MarkFailed(ctx context.Context, jobID, message string, completedAt time.Time) error
}
