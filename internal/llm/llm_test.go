package llm

import (
	"context"
	"errors"
	"testing"
)

func TestPlaceholderClientNotImplemented(t *testing.T) {
	_, err := PlaceholderClient{}.Generate(context.Background(), GenerateInput{User: "anything"})
	if !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
}
