package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client abstracts text-generation providers.
type Client interface {
	Generate(ctx context.Context, input GenerateInput) (Completion, error)
}

// GenerateInput captures a single generation request.
type GenerateInput struct {
	System    string
	User      string
	MaxTokens int
}

// Usage reports provider token accounting when available.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Completion is the raw text result of a generation call.
type Completion struct {
	Text  string
	Model string
	Usage *Usage
}

// Sentinel failure kinds. Callers pick retry policy; the client never
// retries on its own.
var (
	// ErrTransport covers network failures and timeouts.
	ErrTransport = errors.New("generation transport failure")
	// ErrService covers non-success responses from the provider.
	ErrService = errors.New("generation service failure")
	// ErrEmptyOutput covers success responses carrying no usable text.
	ErrEmptyOutput = errors.New("generation returned no text")
)

// ServiceError wraps ErrService with the raw provider body for diagnostics.
// The body is for logs only and must not cross the API boundary.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("generation service failure: status %d", e.StatusCode)
}

func (e *ServiceError) Unwrap() error { return ErrService }

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// Generate returns ErrNotImplemented.
func (PlaceholderClient) Generate(ctx context.Context, input GenerateInput) (Completion, error) {
	_ = ctx
	_ = input
	return Completion{}, ErrNotImplemented
}
