package genlog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type failingRepo struct{}

func (failingRepo) Append(ctx context.Context, entry Entry) error { return errors.New("write failed") }
func (failingRepo) ListByBook(ctx context.Context, bookID string, limit, offset int) ([]Entry, error) {
	return nil, nil
}

func TestAppendAssignsIDAndTruncates(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	svc.Append(context.Background(), Entry{
		BookID:          "book-1",
		ActionType:      ActionChapterGeneration,
		PromptExcerpt:   strings.Repeat("p", PromptExcerptLimit+50),
		ResponseExcerpt: strings.Repeat("r", ResponseExcerptLimit+50),
	})

	entries := repo.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	e := entries[0]
	if e.ID == "" {
		t.Fatalf("expected generated id")
	}
	if e.CreatedAt.IsZero() {
		t.Fatalf("expected timestamp")
	}
	if len(e.PromptExcerpt) != PromptExcerptLimit {
		t.Fatalf("PromptExcerpt length = %d, want %d", len(e.PromptExcerpt), PromptExcerptLimit)
	}
	if len(e.ResponseExcerpt) != ResponseExcerptLimit {
		t.Fatalf("ResponseExcerpt length = %d, want %d", len(e.ResponseExcerpt), ResponseExcerptLimit)
	}
}

func TestAppendShortExcerptsUntouched(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	svc.Append(context.Background(), Entry{
		BookID:          "book-1",
		ActionType:      ActionBlueprintGeneration,
		PromptExcerpt:   "short prompt",
		ResponseExcerpt: "short response",
	})
	e := repo.All()[0]
	if e.PromptExcerpt != "short prompt" || e.ResponseExcerpt != "short response" {
		t.Fatalf("short excerpts must not be altered: %+v", e)
	}
}

func TestAppendSurvivesRepoFailure(t *testing.T) {
	svc := NewService(failingRepo{})
	// Must not panic or propagate.
	svc.Append(context.Background(), Entry{BookID: "book-1", ActionType: ActionChapterGeneration})
}

func TestAppendSurvivesCancelledContext(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Append(ctx, Entry{BookID: "book-1", ActionType: ActionChapterGeneration})

	if len(repo.All()) != 1 {
		t.Fatalf("audit write must survive a cancelled request context")
	}
}

func TestListByBookNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		if err := repo.Append(ctx, Entry{
			ID:        string(rune('a' + i)),
			BookID:    "book-1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := repo.Append(ctx, Entry{ID: "other", BookID: "book-2", CreatedAt: base}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries, err := svc.ListByBook(ctx, "book-1", 10, 0)
	if err != nil {
		t.Fatalf("ListByBook: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt.After(entries[i-1].CreatedAt) {
			t.Fatalf("entries not newest-first: %v then %v", entries[i-1].CreatedAt, entries[i].CreatedAt)
		}
	}

	page, err := svc.ListByBook(ctx, "book-1", 2, 2)
	if err != nil {
		t.Fatalf("ListByBook paged: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("expected 1 entry on second page, got %d", len(page))
	}
}
