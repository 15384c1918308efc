package exports

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bookstudio-backend/internal/books"
	"bookstudio-backend/internal/shared/server/middleware"
	"bookstudio-backend/internal/shared/server/respond"
	"bookstudio-backend/internal/shared/storage/object"
)

// Handler exposes export endpoints.
type Handler struct {
	Svc *Service
	// Store and BaseURL serve artifact downloads. When Store is nil the
	// download endpoint redirects to the job's file URL instead.
	Store   object.ObjectStore
	BaseURL string
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches export routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/books/:bookId/export", h.begin)
	rg.GET("/books/:bookId/exports", h.list)
	rg.GET("/exports/:exportId", h.get)
	rg.GET("/exports/:exportId/download", h.download)
}

type beginRequest struct {
	Format   string         `json:"format"`
	Settings map[string]any `json:"settings"`
}

func (h *Handler) begin(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	bookID := c.Param("bookId")

	var req beginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	job, err := h.Svc.Begin(c.Request.Context(), userID, bookID, req.Format, req.Settings)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedFormat):
			respond.Error(c, http.StatusBadRequest, "validation_error", "format must be epub or pdf", nil)
		case errors.Is(err, books.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "book not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to export book", nil)
		}
		return
	}
	respond.JSON(c, http.StatusAccepted, job)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	job, err := h.Svc.Get(c.Request.Context(), userID, c.Param("exportId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "export not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch export", nil)
		return
	}
	respond.OK(c, job)
}

// download streams the rendered artifact for a completed export.
func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	job, err := h.Svc.Get(c.Request.Context(), userID, c.Param("exportId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "export not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch export", nil)
		return
	}
	if job.Status != StatusComplete || job.FileURL == "" {
		respond.Error(c, http.StatusConflict, "export_not_ready", "export has no artifact", nil)
		return
	}

	if h.Store == nil {
		c.Redirect(http.StatusFound, job.FileURL)
		return
	}

	key := job.FileURL
	if base := strings.TrimRight(h.BaseURL, "/"); base != "" {
		key = strings.TrimPrefix(key, base+"/")
	}

	rc, err := h.Store.Open(c.Request.Context(), key)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "export artifact not found", nil)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", contentTypeFor(job.Format))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", job.ID+"."+job.Format))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	bookID := c.Param("bookId")

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

	jobs, err := h.Svc.ListByBook(c.Request.Context(), userID, bookID, limit, offset)
	if err != nil {
		if errors.Is(err, books.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "book not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list exports", nil)
		return
	}
	if jobs == nil {
		jobs = []ExportJob{}
	}
	respond.OK(c, gin.H{"exports": jobs})
}
