package books

import "context"

// Repo defines persistence operations for books. Ownership filtering
// happens here: reads take the requesting user's id and miss when it does
// not match.
type Repo interface {
	Create(ctx context.Context, b Book) error
	GetByID(ctx context.Context, userID, bookID string) (Book, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Book, error)
	UpdateMetadata(ctx context.Context, userID, bookID string, patch MetadataPatch) (Book, error)
}
