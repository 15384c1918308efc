package books

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Book // bookID -> book
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Book)}
}

// Create stores a book.
func (r *MemoryRepo) Create(ctx context.Context, b Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[b.ID] = b
	return nil
}

// GetByID returns a book owned by the given user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, bookID string) (Book, error) {
	if err := ctx.Err(); err != nil {
		return Book{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.data[bookID]
	if !ok || b.UserID != userID {
		return Book{}, ErrNotFound
	}
	return b, nil
}

// ListByUser lists books newest-first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Book, error) {
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
	var out []Book
	for _, b := range r.data {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []Book{}, nil
	}
	end := len(out)
	if offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// UpdateMetadata applies a metadata patch.
func (r *MemoryRepo) UpdateMetadata(ctx context.Context, userID, bookID string, patch MetadataPatch) (Book, error) {
	if err := ctx.Err(); err != nil {
		return Book{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.data[bookID]
	if !ok || b.UserID != userID {
		return Book{}, ErrNotFound
	}
	applyPatch(&b, patch)
	b.UpdatedAt = time.Now().UTC()
	r.data[bookID] = b
	return b, nil
}

var _ Repo = (*MemoryRepo)(nil)
