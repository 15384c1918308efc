package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"bookstudio-backend/internal/books"
	"bookstudio-backend/internal/chapters"
	"bookstudio-backend/internal/llm"
	"bookstudio-backend/internal/shared/server/middleware"
	"bookstudio-backend/internal/usage"
)

const guestUser = "guest:test-guest"

func setupGenerationRouter(t *testing.T, client llm.Client) (*gin.Engine, *chapters.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bookRepo := books.NewMemoryRepo()
	chapterRepo := chapters.NewMemoryRepo()
	now := time.Now().UTC()
	ctx := context.Background()

	if err := bookRepo.Create(ctx, books.Book{
		ID: "book-1", UserID: guestUser, Title: "Rising", BookType: "guide",
		CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("create book: %v", err)
	}
	if err := chapterRepo.Create(ctx, chapters.Chapter{
		ID: "ch-1", BookID: "book-1", Title: "Starter Care", TargetWordCount: 2000,
		Status: chapters.StatusOutline, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("create chapter: %v", err)
	}

	svc := &Service{
		Books:    bookRepo,
		Chapters: chapterRepo,
		LLM:      client,
		Usage:    usage.NewService(),
		Leases:   NewChapterLeases(),
	}

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Auth("test"))
	NewHandler(svc).RegisterRoutes(api)
	return r, chapterRepo
}

func postGenerate(t *testing.T, router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestGenerateEndpointSuccess(t *testing.T) {
	client := &fakeLLM{text: "Generated chapter body with several words."}
	router, chapterRepo := setupGenerationRouter(t, client)

	resp := postGenerate(t, router, "/api/v1/books/book-1/chapters/ch-1/generate", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}

	var out struct {
		Content        string `json:"content"`
		WordCount      int    `json:"word_count"`
		CreditsCharged int    `json:"credits_charged"`
		Warning        string `json:"warning"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Content == "" || out.WordCount != 6 {
		t.Fatalf("response = %+v", out)
	}
	if out.CreditsCharged != CreditsFor(2000) {
		t.Fatalf("CreditsCharged = %d", out.CreditsCharged)
	}
	if out.Warning != "" {
		t.Fatalf("unexpected warning %q", out.Warning)
	}

	saved, err := chapterRepo.GetByID(context.Background(), "ch-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if saved.Status != chapters.StatusDraft {
		t.Fatalf("Status = %q", saved.Status)
	}
}

func TestGenerateEndpointUnknownChapter(t *testing.T) {
	client := &fakeLLM{text: "content"}
	router, _ := setupGenerationRouter(t, client)

	resp := postGenerate(t, router, "/api/v1/books/book-1/chapters/missing/generate", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d", resp.Code)
	}
}

func TestGenerateEndpointLimitReached(t *testing.T) {
	client := &fakeLLM{text: "content"}
	router, _ := setupGenerationRouter(t, client)

	resp := postGenerate(t, router, "/api/v1/books/book-1/chapters/ch-1/generate", map[string]any{
		"target_word_count": 50000,
	})
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Error struct {
			Code    string              `json:"code"`
			Details []map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Code != "limit_reached" {
		t.Fatalf("error code = %q", envelope.Error.Code)
	}
	if len(envelope.Error.Details) != 1 || envelope.Error.Details[0]["issue"] != "limit_reached" {
		t.Fatalf("details = %+v", envelope.Error.Details)
	}
}

func TestGenerateEndpointServiceUnavailable(t *testing.T) {
	client := &fakeLLM{err: llm.ErrTransport}
	router, _ := setupGenerationRouter(t, client)

	resp := postGenerate(t, router, "/api/v1/books/book-1/chapters/ch-1/generate", nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", resp.Code)
	}
}

func TestGenerateEndpointBadBody(t *testing.T) {
	client := &fakeLLM{text: "content"}
	router, _ := setupGenerationRouter(t, client)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/books/book-1/chapters/ch-1/generate", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.Code)
	}
}
