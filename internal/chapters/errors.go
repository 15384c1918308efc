package chapters

import "errors"

// ErrNotFound signals a chapter that does not exist or is not visible to
// the requesting owner.
var ErrNotFound = errors.New("chapter not found")
