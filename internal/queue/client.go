// Package queue carries export jobs from the API to the worker.
package queue

import "context"

// Client hands an export job message to the queue backend. A nil Client
// on the export service means jobs render inline instead.
type Client interface {
	Send(ctx context.Context, msg Message) error
}
