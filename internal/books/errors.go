package books

import (
	"errors"
	"fmt"
)

// ErrNotFound signals a book that does not exist or is not owned by the
// requesting user.
var ErrNotFound = errors.New("book not found")

// PartialMaterializationError reports a materialization that created the
// book but failed part-way through chapter inserts. CreatedChapterIDs are
// in outline order; FailedIndex is the outline position that failed. The
// caller decides whether to retry the gaps or discard the book.
type PartialMaterializationError struct {
	BookID            string
	CreatedChapterIDs []string
	FailedIndex       int
	Err               error
}

func (e *PartialMaterializationError) Error() string {
	return fmt.Sprintf("materialization of book %s incomplete: chapter %d failed: %v",
		e.BookID, e.FailedIndex, e.Err)
}

func (e *PartialMaterializationError) Unwrap() error { return e.Err }
