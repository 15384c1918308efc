package blueprints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstudio-backend/internal/llm"
	"bookstudio-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the blueprint service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches blueprint routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ai/blueprint", h.synthesize)
}

type synthesizeRequest struct {
	Responses []llm.InterviewResponse `json:"responses"`
}

func (h *Handler) synthesize(c *gin.Context) {
	var req synthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
		return
	}

	bp, err := h.Svc.Synthesize(c.Request.Context(), req.Responses)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyInput):
			respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "interview responses are required", nil)
		case ServiceUnavailable(err):
			respond.Error(c, http.StatusServiceUnavailable, ErrorCodeServiceUnavailable, "The AI service is temporarily unavailable. Please try again.", nil)
		case errors.Is(err, ErrMalformedBlueprint):
			respond.Error(c, http.StatusInternalServerError, ErrorCodeMalformedOutput, "The AI returned an unusable blueprint. Please try again.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "failed to generate blueprint", nil)
		}
		return
	}

	respond.OK(c, gin.H{"blueprint": bp})
}
