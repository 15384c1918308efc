package exports

import (
	"context"
	"fmt"
	"strings"

	"bookstudio-backend/internal/books"
	"bookstudio-backend/internal/chapters"
	"bookstudio-backend/internal/shared/storage/object"
)

// Renderer turns a book snapshot with ordered chapters into a downloadable
// artifact and returns its URL. The byte-level format construction lives
// behind this port; it is not implemented here.
type Renderer interface {
	Render(ctx context.Context, job ExportJob, book books.Book, chs []chapters.Chapter) (fileURL string, err error)
}

// StubRenderer stands in for the real format renderer. It assembles the
// manuscript as plain markdown, stores it via the object store, and
// returns the artifact URL.
type StubRenderer struct {
	Store   object.ObjectStore
	BaseURL string
}

// Render stores the assembled manuscript and returns its URL.
func (r *StubRenderer) Render(ctx context.Context, job ExportJob, book books.Book, chs []chapters.Chapter) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", book.Title)
	if book.Subtitle != "" {
		fmt.Fprintf(&b, "## %s\n", book.Subtitle)
	}
	for _, ch := range chs {
		fmt.Fprintf(&b, "\n\n## %s\n\n%s", ch.Title, ch.Content)
	}

	fileName := fmt.Sprintf("%s.%s", job.ID, job.Format)
	storageKey, _, err := r.Store.Save(ctx, book.UserID, fileName, contentTypeFor(job.Format), strings.NewReader(b.String()))
	if err != nil {
		return "", fmt.Errorf("store export artifact: %w", err)
	}

	base := strings.TrimRight(r.BaseURL, "/")
	if base == "" {
		return storageKey, nil
	}
	return base + "/" + storageKey, nil
}

var _ Renderer = (*StubRenderer)(nil)
