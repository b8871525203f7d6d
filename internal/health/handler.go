// Package health provides health check endpoint handler.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/teammatch/internal/database/database"
)

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler handles health check requests.
type Handler struct {
	db     *gorm.DB
	cache  Pinger
	logger *zap.SugaredLogger
}

// New creates a new health handler instance. The cache is optional.
func New(db *gorm.DB, cache Pinger, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// Response represents health check response.
type Response struct {
	Status string `json:"status"`
	Cache  string `json:"cache,omitempty"`
}

// Check handles GET /health request.
// The service is unhealthy only without a database. A cache outage degrades
// suggestions to uncached ranking and is reported as "degraded".
func (h *Handler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := database.HealthCheck(ctx, h.db); err != nil {
		h.logger.Warnw("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, Response{
			Status: "unhealthy",
		})
		return
	}

	resp := Response{Status: "ok"}
	if h.cache != nil {
		resp.Cache = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			h.logger.Warnw("cache health check failed", "error", err)
			resp.Status = "degraded"
			resp.Cache = "unavailable"
		}
	}

	c.JSON(http.StatusOK, resp)
}
