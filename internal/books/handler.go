package books

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookstudio-backend/internal/blueprints"
	"bookstudio-backend/internal/chapters"
	"bookstudio-backend/internal/shared/server/middleware"
	"bookstudio-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the books service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches book routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/books", h.create)
	rg.GET("/books", h.list)
	rg.GET("/books/:bookId", h.get)
	rg.PATCH("/books/:bookId", h.patchMetadata)
	rg.POST("/books/:bookId/chapters/missing", h.materializeMissing)
}

type createRequest struct {
	Blueprint blueprints.Blueprint `json:"blueprint"`
	Subtitle  string               `json:"subtitle"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	book, chs, err := h.Svc.Materialize(c.Request.Context(), req.Blueprint, userID, req.Subtitle)
	if err != nil {
		var partial *PartialMaterializationError
		if errors.As(err, &partial) {
			// The book exists; tell the caller which chapters made it so
			// the retry can fill only the gaps.
			respond.Error(c, http.StatusInternalServerError, "partial_materialization", "some chapters could not be created", gin.H{
				"book_id":             partial.BookID,
				"created_chapter_ids": partial.CreatedChapterIDs,
			})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create book", nil)
		return
	}

	c.Set("bookId", book.ID)
	respond.JSON(c, http.StatusCreated, gin.H{
		"book":     bookJSON(book),
		"chapters": chaptersJSON(chs),
	})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	bookID := c.Param("bookId")

	book, chs, err := h.Svc.Get(c.Request.Context(), userID, bookID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "book not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch book", nil)
		return
	}

	c.Set("bookId", book.ID)
	respond.OK(c, gin.H{
		"book":     bookJSON(book),
		"chapters": chaptersJSON(chs),
	})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
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

	out, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list books", nil)
		return
	}

	items := make([]gin.H, 0, len(out))
	for _, b := range out {
		items = append(items, bookJSON(b))
	}
	respond.OK(c, gin.H{"books": items})
}

func (h *Handler) patchMetadata(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	bookID := c.Param("bookId")

	var patch MetadataPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	book, err := h.Svc.UpdateMetadata(c.Request.Context(), userID, bookID, patch)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "book not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update book", nil)
		return
	}

	c.Set("bookId", book.ID)
	respond.OK(c, gin.H{"book": bookJSON(book)})
}

func (h *Handler) materializeMissing(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	bookID := c.Param("bookId")

	created, err := h.Svc.MaterializeMissing(c.Request.Context(), userID, bookID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "book not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to materialize chapters", nil)
		return
	}

	c.Set("bookId", bookID)
	respond.OK(c, gin.H{"created": chaptersJSON(created)})
}

func bookJSON(b Book) gin.H {
	out := gin.H{
		"id":                b.ID,
		"title":             b.Title,
		"subtitle":          b.Subtitle,
		"description":       b.Description,
		"book_type":         b.BookType,
		"target_audience":   b.TargetAudience,
		"target_word_count": b.TargetWordCount,
		"created_at":        b.CreatedAt,
		"updated_at":        b.UpdatedAt,
	}
	if b.VoiceProfile != nil {
		out["voice_profile"] = b.VoiceProfile
	}
	return out
}

func chaptersJSON(chs []chapters.Chapter) []gin.H {
	out := make([]gin.H, 0, len(chs))
	for _, ch := range chs {
		out = append(out, chapterJSON(ch))
	}
	return out
}

func chapterJSON(ch chapters.Chapter) gin.H {
	return gin.H{
		"id":                ch.ID,
		"book_id":           ch.BookID,
		"order_index":       ch.OrderIndex,
		"title":             ch.Title,
		"summary":           ch.Summary,
		"target_word_count": ch.TargetWordCount,
		"content":           ch.Content,
		"word_count":        ch.WordCount,
		"status":            ch.Status,
	}
}
