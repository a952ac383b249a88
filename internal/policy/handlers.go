package policy

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mbd888/fraudguard/internal/validation"
)

// Handler provides HTTP endpoints for policy management and the isolated
// pre-check used by client UIs before a transaction is submitted.
type Handler struct {
	store Store
}

// NewHandler creates a new policy handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes sets up policy routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/users/:id/policy", h.Get)
	r.PUT("/users/:id/policy", h.Put)
	r.DELETE("/users/:id/policy", h.Delete)
	r.POST("/policies/check", h.Check)
}

// Get handles GET /v1/users/:id/policy
func (h *Handler) Get(c *gin.Context) {
	userID := c.Param("id")

	p, err := h.store.Get(c.Request.Context(), userID)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "no policy configured"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load policy"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// Put handles PUT /v1/users/:id/policy
func (h *Handler) Put(c *gin.Context) {
	userID := c.Param("id")

	var req struct {
		MaxAmount             *float64   `json:"maxAmount"`
		AllowedLocations      []string   `json:"allowedLocations"`
		BlockUnknownLocations bool       `json:"blockUnknownLocations"`
		AllowedTimeRange      *TimeRange `json:"allowedTimeRange"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	locations := make([]string, 0, len(req.AllowedLocations))
	for _, loc := range req.AllowedLocations {
		locations = append(locations, validation.SanitizeString(loc, 200))
	}

	p := &Policy{
		UserID:                userID,
		MaxAmount:             req.MaxAmount,
		AllowedLocations:      locations,
		BlockUnknownLocations: req.BlockUnknownLocations,
		AllowedTimeRange:      req.AllowedTimeRange,
	}
	if err := p.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_policy", "message": err.Error()})
		return
	}

	if err := h.store.Put(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to save policy"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /v1/users/:id/policy
func (h *Handler) Delete(c *gin.Context) {
	userID := c.Param("id")

	err := h.store.Delete(c.Request.Context(), userID)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "no policy configured"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to delete policy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Check handles POST /v1/policies/check
//
// Runs the hard-block check in isolation, without risk scoring, for
// pre-submit UI validation.
func (h *Handler) Check(c *gin.Context) {
	var req struct {
		UserID   string  `json:"userId" binding:"required"`
		Amount   float64 `json:"amount" binding:"required"`
		Location string  `json:"location"`
		At       string  `json:"at"` // RFC3339, defaults to now
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "userId and amount required"})
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

	pol, err := h.store.Get(c.Request.Context(), req.UserID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load policy"})
		return
	}

	res := Enforce(pol, CheckInput{
		Amount:   req.Amount,
		Location: req.Location,
		At:       at,
	})
	c.JSON(http.StatusOK, res)
}
