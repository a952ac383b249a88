package risk

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AnalysisHandler serves the per-user audit trail of risk analyses.
type AnalysisHandler struct {
	store Store
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(store Store) *AnalysisHandler {
	return &AnalysisHandler{store: store}
}

// RegisterRoutes sets up analysis routes.
func (h *AnalysisHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/users/:id/analyses", h.List)
}

// List handles GET /v1/users/:id/analyses
func (h *AnalysisHandler) List(c *gin.Context) {
	userID := c.Param("id")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "limit must be 1-500"})
			return
		}
		limit = n
	}

	analyses, err := h.store.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to list analyses"})
		return
	}
	if analyses == nil {
		analyses = []*Analysis{}
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "analyses": analyses, "count": len(analyses)})
}
