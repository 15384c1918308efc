package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"bookstudio-backend/internal/llm"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		Model:   "test-model",
		APIKey:  "test-key",
		BaseURL: baseURL,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestGenerateSendsHeadersAndBody(t *testing.T) {
	var mu sync.Mutex
	var gotHeaders http.Header
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		mu.Lock()
		gotHeaders = r.Header.Clone()
		gotBody = payload
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"test-model","content":[{"type":"text","text":"hello"}],"usage":{"input_tokens":10,"output_tokens":5}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	out, err := client.Generate(context.Background(), llm.GenerateInput{
		System:    "system text",
		User:      "user text",
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if got := gotHeaders.Get("x-api-key"); got != "test-key" {
		t.Fatalf("x-api-key = %q, want %q", got, "test-key")
	}
	if got := gotHeaders.Get("anthropic-version"); got != apiVersion {
		t.Fatalf("anthropic-version = %q, want %q", got, apiVersion)
	}
	if gotBody["system"] != "system text" {
		t.Fatalf("system = %v", gotBody["system"])
	}
	if gotBody["max_tokens"] != float64(256) {
		t.Fatalf("max_tokens = %v", gotBody["max_tokens"])
	}
	msgs, ok := gotBody["messages"].([]any)
	if !ok || len(msgs) != 1 {
		t.Fatalf("messages = %v", gotBody["messages"])
	}

	if out.Text != "hello" {
		t.Fatalf("Text = %q", out.Text)
	}
	if out.Usage == nil || out.Usage.Total() != 15 {
		t.Fatalf("Usage = %+v", out.Usage)
	}
}

func TestGenerateCollectsTextBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"part one "},{"type":"tool_use","text":"skip me"},{"type":"text","text":"part two"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	out, err := client.Generate(context.Background(), llm.GenerateInput{User: "u", MaxTokens: 64})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Text != "part one part two" {
		t.Fatalf("Text = %q", out.Text)
	}
	if out.Model != "test-model" {
		t.Fatalf("Model fallback = %q", out.Model)
	}
}

func TestGenerateServiceErrorCarriesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Generate(context.Background(), llm.GenerateInput{User: "u", MaxTokens: 64})
	if !errors.Is(err, llm.ErrService) {
		t.Fatalf("expected ErrService, got %v", err)
	}
	var svcErr *llm.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *llm.ServiceError, got %T", err)
	}
	if svcErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("StatusCode = %d", svcErr.StatusCode)
	}
	if svcErr.Body == "" {
		t.Fatalf("expected raw body to be captured")
	}
}

func TestGenerateTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := newTestClient(t, server.URL)
	_, err := client.Generate(context.Background(), llm.GenerateInput{User: "u", MaxTokens: 64})
	if !errors.Is(err, llm.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestGenerateEmptyOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"   "}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Generate(context.Background(), llm.GenerateInput{User: "u", MaxTokens: 64})
	if !errors.Is(err, llm.ErrEmptyOutput) {
		t.Fatalf("expected ErrEmptyOutput, got %v", err)
	}
}

func TestGenerateRejectsNonPositiveMaxTokens(t *testing.T) {
	client := newTestClient(t, "http://localhost:1")
	if _, err := client.Generate(context.Background(), llm.GenerateInput{User: "u"}); err == nil {
		t.Fatalf("expected error for max tokens <= 0")
	}
}
