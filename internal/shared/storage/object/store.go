// Package object abstracts where rendered manuscript artifacts live.
package object

import (
	"context"
	"io"
)

// ObjectStore persists export artifacts under per-user namespaces.
// Save is idempotent for a given user and file name: re-rendering the
// same export overwrites the previous artifact.
type ObjectStore interface {
	Save(ctx context.Context, userID, fileName, contentType string, r io.Reader) (storageKey string, sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
