package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"bookstudio-backend/internal/llm"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	defaultTimeout = 120 * time.Second
)

// Config holds the explicit client configuration. Nothing is read from
// ambient process state inside the client so pipelines stay testable with
// a fake.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client implements llm.Client using the Anthropic Messages API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient constructs an Anthropic client from explicit configuration.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Anthropic")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage,omitempty"`
}

// Generate performs a single generation call. It never retries; retry
// policy belongs to callers because not every stage is retry-safe.
func (c *Client) Generate(ctx context.Context, input llm.GenerateInput) (llm.Completion, error) {
	if input.MaxTokens <= 0 {
		return llm.Completion{}, fmt.Errorf("max tokens must be positive")
	}

	reqBody := messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: input.MaxTokens,
		System:    input.System,
		Messages: []message{
			{Role: "user", Content: input.User},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return llm.Completion{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return llm.Completion{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return llm.Completion{}, fmt.Errorf("%w: %v", llm.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Completion{}, fmt.Errorf("%w: read body: %v", llm.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return llm.Completion{}, &llm.ServiceError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed messagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return llm.Completion{}, fmt.Errorf("%w: response parse: %v", llm.ErrService, err)
	}

	text := collectText(parsed)
	if strings.TrimSpace(text) == "" {
		return llm.Completion{}, llm.ErrEmptyOutput
	}

	out := llm.Completion{Text: text, Model: parsed.Model}
	if out.Model == "" {
		out.Model = c.cfg.Model
	}
	if parsed.Usage != nil {
		out.Usage = &llm.Usage{
			InputTokens:  parsed.Usage.InputTokens,
			OutputTokens: parsed.Usage.OutputTokens,
		}
		logUsage(out.Model, out.Usage)
	}
	return out, nil
}

func collectText(resp messagesResponse) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type != "" && block.Type != "text" {
			continue
		}
		b.WriteString(block.Text)
	}
	return b.String()
}

func logUsage(model string, usage *llm.Usage) {
	log.Printf("llm response model=%s input_tokens=%d output_tokens=%d",
		model, usage.InputTokens, usage.OutputTokens)
}

var _ llm.Client = (*Client)(nil)
