package generation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstudio-backend/internal/blueprints"
	"bookstudio-backend/internal/books"
	"bookstudio-backend/internal/chapters"
	"bookstudio-backend/internal/shared/server/middleware"
	"bookstudio-backend/internal/shared/server/respond"
	"bookstudio-backend/internal/usage"
)

// Handler wires HTTP handlers to the chapter generation service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/books/:bookId/chapters/:chapterId/generate", h.generate)
}

type generateRequest struct {
	ChapterTitle           string                      `json:"chapter_title"`
	ChapterSummary         string                      `json:"chapter_summary"`
	TargetWordCount        int                         `json:"target_word_count"`
	VoiceProfile           *books.VoiceProfile         `json:"voice_profile"`
	PreviousChapterSummary string                      `json:"previous_chapter_summary"`
	Sections               []blueprints.SectionOutline `json:"sections"`
}

func (h *Handler) generate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	bookID := c.Param("bookId")
	chapterID := c.Param("chapterId")

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
		return
	}

	c.Set("bookId", bookID)
	c.Set("chapterId", chapterID)

	result, err := h.Svc.GenerateChapter(c.Request.Context(), userID, Request{
		BookID:                 bookID,
		ChapterID:              chapterID,
		ChapterTitle:           req.ChapterTitle,
		ChapterSummary:         req.ChapterSummary,
		TargetWordCount:        req.TargetWordCount,
		VoiceProfile:           req.VoiceProfile,
		PreviousChapterSummary: req.PreviousChapterSummary,
		Sections:               req.Sections,
	})
	if err != nil {
		switch {
		case errors.Is(err, books.ErrNotFound), errors.Is(err, chapters.ErrNotFound):
			respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "chapter not found", nil)
		case errors.Is(err, ErrGenerationInFlight):
			respond.Error(c, http.StatusConflict, ErrorCodeInFlight, "generation already in progress for this chapter", nil)
		case errors.Is(err, usage.ErrLimitReached):
			respond.Error(c, http.StatusTooManyRequests, "limit_reached", "You've reached your credit limit. Upgrade your plan to continue.", []map[string]string{
				{"field": "usage", "issue": "limit_reached"},
			})
		case blueprints.ServiceUnavailable(err):
			respond.Error(c, http.StatusServiceUnavailable, ErrorCodeServiceUnavailable, "The AI service is temporarily unavailable. Please try again.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to generate chapter", nil)
		}
		return
	}

	c.Set("statusTransition", "outline->draft")

	resp := gin.H{
		"content":         result.Content,
		"word_count":      result.WordCount,
		"credits_charged": result.CreditsCharged,
	}
	if result.PersistWarning != nil {
		// Content survived but the save did not; the client keeps the
		// text and may retry the save.
		resp["warning"] = "content generated but not saved"
	}
	respond.OK(c, resp)
}

