package chapters

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Chapter // chapterID -> chapter

	// FailCreateAfter, when >= 0, makes Create fail once that many creates
	// have succeeded. Test hook for partial-materialization paths.
	FailCreateAfter int
	created         int
	failErr         error
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data:            make(map[string]Chapter),
		FailCreateAfter: -1,
	}
}

// FailCreates makes Create return err after n successful creates.
func (r *MemoryRepo) FailCreates(n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FailCreateAfter = n
	r.failErr = err
}

// Create stores a chapter.
func (r *MemoryRepo) Create(ctx context.Context, ch Chapter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreateAfter >= 0 && r.created >= r.FailCreateAfter {
		return r.failErr
	}
	if ch.Status == "" {
		ch.Status = StatusOutline
	}
	r.data[ch.ID] = ch
	r.created++
	return nil
}

// GetByID returns a chapter by id.
func (r *MemoryRepo) GetByID(ctx context.Context, chapterID string) (Chapter, error) {
	if err := ctx.Err(); err != nil {
		return Chapter{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.data[chapterID]
	if !ok {
		return Chapter{}, ErrNotFound
	}
	return ch, nil
}

// ListByBook returns a book's chapters in manuscript order.
func (r *MemoryRepo) ListByBook(ctx context.Context, bookID string) ([]Chapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []Chapter
	for _, ch := range r.data {
		if ch.BookID == bookID {
			out = append(out, ch)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out, nil
}

// UpdateContent stores content and advances status for one chapter.
func (r *MemoryRepo) UpdateContent(ctx context.Context, chapterID, content string, wordCount int, status string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.data[chapterID]
	if !ok {
		return ErrNotFound
	}
	ch.Content = content
	ch.WordCount = wordCount
	ch.Status = status
	ch.UpdatedAt = updatedAt
	r.data[chapterID] = ch
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
