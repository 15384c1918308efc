package genlog

import "context"

// Repo defines persistence for generation log entries.
type Repo interface {
	Append(ctx context.Context, entry Entry) error
	ListByBook(ctx context.Context, bookID string, limit, offset int) ([]Entry, error)
}
