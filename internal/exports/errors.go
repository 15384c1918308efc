package exports

import "errors"

var (
	// ErrNotFound signals a missing export job.
	ErrNotFound = errors.New("export job not found")
	// ErrTerminal signals an update attempt on a job already in a
	// terminal state.
	ErrTerminal = errors.New("export job already finished")
	// ErrUnsupportedFormat signals a format outside the supported set.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
