package books

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"bookstudio-backend/internal/chapters"
	"bookstudio-backend/internal/shared/server/middleware"
)

func setupBookRouter(t *testing.T) (*gin.Engine, *chapters.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	chapterRepo := chapters.NewMemoryRepo()
	svc := &Service{Repo: NewMemoryRepo(), Chapters: chapterRepo}

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Auth("test"))
	NewHandler(svc).RegisterRoutes(api)
	return r, chapterRepo
}

func doBookRequest(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "test-guest")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCreateBookEndpoint(t *testing.T) {
	router, _ := setupBookRouter(t)

	resp := doBookRequest(t, router, http.MethodPost, "/api/v1/books", map[string]any{
		"blueprint": testBlueprint(),
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}

	var out struct {
		Book struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			Subtitle string `json:"subtitle"`
		} `json:"book"`
		Chapters []struct {
			OrderIndex int    `json:"order_index"`
			Status     string `json:"status"`
		} `json:"chapters"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Book.ID == "" || out.Book.Title != "Rising" {
		t.Fatalf("book = %+v", out.Book)
	}
	if out.Book.Subtitle != "A Sourdough Story" {
		t.Fatalf("Subtitle = %q", out.Book.Subtitle)
	}
	if len(out.Chapters) != 3 {
		t.Fatalf("chapters = %d", len(out.Chapters))
	}
	for i, ch := range out.Chapters {
		if ch.OrderIndex != i || ch.Status != chapters.StatusOutline {
			t.Fatalf("chapter %d = %+v", i, ch)
		}
	}
}

func TestCreateBookEndpointPartialFailure(t *testing.T) {
	router, chapterRepo := setupBookRouter(t)
	chapterRepo.FailCreates(1, errors.New("insert failed"))

	resp := doBookRequest(t, router, http.MethodPost, "/api/v1/books", map[string]any{
		"blueprint": testBlueprint(),
	})
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				BookID            string   `json:"book_id"`
				CreatedChapterIDs []string `json:"created_chapter_ids"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Code != "partial_materialization" {
		t.Fatalf("error code = %q", envelope.Error.Code)
	}
	if envelope.Error.Details.BookID == "" || len(envelope.Error.Details.CreatedChapterIDs) != 1 {
		t.Fatalf("details = %+v", envelope.Error.Details)
	}
}

func TestGetBookEndpointNotFound(t *testing.T) {
	router, _ := setupBookRouter(t)
	resp := doBookRequest(t, router, http.MethodGet, "/api/v1/books/missing", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d", resp.Code)
	}
}

func TestListBooksEndpointEmpty(t *testing.T) {
	router, _ := setupBookRouter(t)
	resp := doBookRequest(t, router, http.MethodGet, "/api/v1/books", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	var out struct {
		Books []any `json:"books"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Books == nil || len(out.Books) != 0 {
		t.Fatalf("books = %v", out.Books)
	}
}

func TestPatchBookEndpoint(t *testing.T) {
	router, _ := setupBookRouter(t)

	created := doBookRequest(t, router, http.MethodPost, "/api/v1/books", map[string]any{
		"blueprint": testBlueprint(),
	})
	var out struct {
		Book struct {
			ID string `json:"id"`
		} `json:"book"`
	}
	if err := json.NewDecoder(created.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	resp := doBookRequest(t, router, http.MethodPatch, "/api/v1/books/"+out.Book.ID, map[string]any{
		"title": "Rising, Revised",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	var patched struct {
		Book struct {
			Title string `json:"title"`
		} `json:"book"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&patched); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if patched.Book.Title != "Rising, Revised" {
		t.Fatalf("Title = %q", patched.Book.Title)
	}
}
