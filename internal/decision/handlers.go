package decision

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mbd888/fraudguard/internal/validation"
)

// Handler exposes the assessment pipeline over HTTP.
type Handler struct {
	orch *Orchestrator
}

// NewHandler creates a new decision handler.
func NewHandler(orch *Orchestrator) *Handler {
	return &Handler{orch: orch}
}

// RegisterRoutes sets up decision routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/assess", h.Assess)
}

// Assess handles POST /v1/assess
//
// Runs the full pipeline. The HTTP status is 200 for every finished
// assessment, including blocks; clients read the state field.
func (h *Handler) Assess(c *gin.Context) {
	var req struct {
		UserID   string  `json:"userId"`
		Amount   float64 `json:"amount"`
		Location string  `json:"location"`
		At       string  `json:"at"` // RFC3339, defaults to now
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	if errs := validation.Validate(
		validation.Required("userId", req.UserID),
		validation.ValidUserID("userId", req.UserID),
		validation.PositiveAmount("amount", req.Amount),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": errs.Error()})
		return
	}

	at := time.Now()
	if req.At != "" {
		parsed, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "at must be RFC3339"})
			return
		}
		at = parsed
	}

	a, err := h.orch.Assess(c.Request.Context(), Transaction{
		UserID:   req.UserID,
		Amount:   req.Amount,
		Location: validation.SanitizeString(req.Location, 200),
		At:       at,
	})
	if errors.Is(err, ErrInvalidTransaction) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "assessment failed"})
		return
	}
	c.JSON(http.StatusOK, a)
}
