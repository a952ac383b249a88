package profile

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbd888/fraudguard/internal/validation"
)

// Handler provides HTTP endpoints for profile inspection, the learning
// consent toggle, trusted-location management, and the privacy reset.
type Handler struct {
	store Store
}

// NewHandler creates a new profile handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes sets up profile routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/users/:id/profile", h.Get)
	r.DELETE("/users/:id/profile", h.Reset)
	r.PUT("/users/:id/profile/learning", h.SetLearning)
	r.POST("/users/:id/locations", h.AddLocation)
	r.DELETE("/users/:id/locations/:name", h.RemoveLocation)
}

// Get handles GET /v1/users/:id/profile
func (h *Handler) Get(c *gin.Context) {
	userID := c.Param("id")

	p, err := h.store.Get(c.Request.Context(), userID)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "no profile for user"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, p.Summary())
}

// Reset handles DELETE /v1/users/:id/profile
//
// Learned statistics and the hour histogram are wiped but the consent flag
// survives, so a user exercising the privacy reset does not silently opt
// back out of learning.
func (h *Handler) Reset(c *gin.Context) {
	userID := c.Param("id")

	p, err := h.store.Get(c.Request.Context(), userID)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "no profile for user"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load profile"})
		return
	}

	p.Reset()
	if err := h.store.Put(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to reset profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reset": true, "learningEnabled": p.LearningEnabled})
}

// SetLearning handles PUT /v1/users/:id/profile/learning
func (h *Handler) SetLearning(c *gin.Context) {
	userID := c.Param("id")

	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "enabled (bool) required"})
		return
	}

	p, err := h.loadOrCreate(c, userID)
	if err != nil {
		return
	}
	p.LearningEnabled = *req.Enabled
	if err := h.store.Put(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to save profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "learningEnabled": p.LearningEnabled})
}

// AddLocation handles POST /v1/users/:id/locations
func (h *Handler) AddLocation(c *gin.Context) {
	userID := c.Param("id")

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "name required"})
		return
	}

	p, err := h.loadOrCreate(c, userID)
	if err != nil {
		return
	}
	p.AddTrustedLocation(validation.SanitizeString(req.Name, 200))
	if err := h.store.Put(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to save profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "trustedLocations": p.TrustedLocations})
}

// RemoveLocation handles DELETE /v1/users/:id/locations/:name
func (h *Handler) RemoveLocation(c *gin.Context) {
	userID := c.Param("id")
	name := c.Param("name")

	p, err := h.store.Get(c.Request.Context(), userID)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "no profile for user"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load profile"})
		return
	}

	p.RemoveTrustedLocation(name)
	if err := h.store.Put(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to save profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "trustedLocations": p.TrustedLocations})
}

// loadOrCreate fetches the profile or starts a fresh one for unseen users.
// Writes the error response itself and returns a non-nil error on failure.
func (h *Handler) loadOrCreate(c *gin.Context, userID string) (*Profile, error) {
	p, err := h.store.Get(c.Request.Context(), userID)
	if errors.Is(err, ErrNotFound) {
		return New(userID, false), nil
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load profile"})
		return nil, err
	}
	return p, nil
}
