package genlog

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookstudio-backend/internal/shared/server/middleware"
	"bookstudio-backend/internal/shared/server/respond"
)

// ErrBookNotFound is returned by a BookResolver when the book does not
// exist or is owned by another user.
var ErrBookNotFound = errors.New("book not found")

// BookResolver reports whether the given user owns the given book. It
// returns ErrBookNotFound when the book is missing or owned by someone
// else, keeping this package decoupled from the books package.
type BookResolver func(ctx context.Context, userID, bookID string) error

// Handler exposes the generation ledger for a book.
type Handler struct {
	Svc     *Service
	Resolve BookResolver
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, resolve BookResolver) *Handler {
	return &Handler{Svc: svc, Resolve: resolve}
}

// RegisterRoutes attaches ledger routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/books/:bookId/generation-logs", h.list)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	bookID := c.Param("bookId")

	// Ownership gate before exposing ledger contents.
	if err := h.Resolve(c.Request.Context(), userID, bookID); err != nil {
		if errors.Is(err, ErrBookNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "book not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch book", nil)
		return
	}

	limit := 50
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	entries, err := h.Svc.ListByBook(c.Request.Context(), bookID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list generation logs", nil)
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		item := gin.H{
			"id":               e.ID,
			"action_type":      e.ActionType,
			"prompt_excerpt":   e.PromptExcerpt,
			"response_excerpt": e.ResponseExcerpt,
			"model":            e.Model,
			"credits_charged":  e.CreditsCharged,
			"created_at":       e.CreatedAt,
		}
		if e.ChapterID != "" {
			item["chapter_id"] = e.ChapterID
		}
		if e.TokensUsed != nil {
			item["tokens_used"] = *e.TokensUsed
		}
		items = append(items, item)
	}
	respond.OK(c, gin.H{"logs": items})
}
