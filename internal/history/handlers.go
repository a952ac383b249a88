package history

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mbd888/fraudguard/internal/idgen"
	"github.com/mbd888/fraudguard/internal/pagination"
	"github.com/mbd888/fraudguard/internal/profile"
	"github.com/mbd888/fraudguard/internal/stats"
	"github.com/mbd888/fraudguard/internal/validation"
)

const maxUploadAmounts = 10000

// Handler provides HTTP endpoints for bulk history uploads and the
// per-user transaction listing.
type Handler struct {
	store    Store
	profiles profile.Store
}

// NewHandler creates a new history handler.
func NewHandler(store Store, profiles profile.Store) *Handler {
	return &Handler{store: store, profiles: profiles}
}

// RegisterRoutes sets up history routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/users/:id/history", h.Upload)
	r.GET("/users/:id/transactions", h.List)
}

// Upload handles POST /v1/users/:id/history
//
// Bulk-ingests past transaction amounts and seeds the user's baseline from
// them. Extreme outliers are dropped before the statistics are computed so a
// single bad data point cannot widen the user's normal range.
func (h *Handler) Upload(c *gin.Context) {
	userID := c.Param("id")

	var req struct {
		Amounts []float64 `json:"amounts" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "amounts (array) required"})
		return
	}
	if len(req.Amounts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "amounts must not be empty"})
		return
	}
	if len(req.Amounts) > maxUploadAmounts {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "too many amounts in one upload"})
		return
	}
	for _, a := range req.Amounts {
		if errs := validation.Validate(validation.PositiveAmount("amounts", a)); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": errs.Error()})
			return
		}
	}

	summary := stats.Rebaseline(req.Amounts)

	p, err := h.profiles.Get(c.Request.Context(), userID)
	if errors.Is(err, profile.ErrNotFound) {
		p = profile.New(userID, false)
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to load profile"})
		return
	}
	p.SetStats(summary)
	if err := h.profiles.Put(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to save profile"})
		return
	}

	now := time.Now()
	for _, a := range req.Amounts {
		rec := &Record{
			ID:        idgen.WithPrefix("txn_"),
			UserID:    userID,
			Amount:    a,
			State:     "IMPORTED",
			CreatedAt: now,
		}
		if err := h.store.Append(c.Request.Context(), rec); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to record history"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":     userID,
		"imported":   len(req.Amounts),
		"usedForFit": summary.Count,
		"mean":       summary.Mean,
		"stdDev":     summary.StdDev,
	})
}

// List handles GET /v1/users/:id/transactions
func (h *Handler) List(c *gin.Context) {
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

	// Fetch limit+1 to know whether another page exists.
	var opts []ListOption
	if cursor := c.Query("cursor"); cursor != "" {
		opts = append(opts, WithCursor(cursor))
	}
	recs, err := h.store.ListByUser(c.Request.Context(), userID, limit+1, opts...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "failed to list transactions"})
		return
	}

	recs, nextCursor, hasMore := pagination.ComputePage(recs, limit, func(r *Record) (time.Time, string) {
		return r.CreatedAt, r.ID
	})
	if recs == nil {
		recs = []*Record{}
	}
	resp := gin.H{"userId": userID, "transactions": recs, "count": len(recs), "hasMore": hasMore}
	if nextCursor != "" {
		resp["nextCursor"] = nextCursor
	}
	c.JSON(http.StatusOK, resp)
}
