// Package handler provides HTTP handlers for statistics endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/internal/httpresp"
	"github.com/festy23/teammatch/internal/statistics/service"
)

// Handler handles HTTP requests for statistics endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new statistics handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// GetTeamsStatistics handles GET /statistics/events/:eventId/teams request.
// @Summary Get team fill statistics for an event
// @Tags Statistics
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} model.TeamsStatisticsResponse
// @Failure 404 {object} httpresp.ErrorResponse "Event not found"
// @Router /statistics/events/{eventId}/teams [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetTeamsStatistics(c *gin.Context) {
	eventID := c.Param("eventId")

	resp, err := h.service.GetTeamsStatistics(c.Request.Context(), eventID)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "getting team statistics", "event_id", eventID)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetRequestStatistics handles GET /statistics/events/:eventId/requests request.
// @Summary Get request statistics for an event
// @Tags Statistics
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} model.RequestStatisticsResponse
// @Failure 404 {object} httpresp.ErrorResponse "Event not found"
// @Router /statistics/events/{eventId}/requests [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetRequestStatistics(c *gin.Context) {
	eventID := c.Param("eventId")

	resp, err := h.service.GetRequestStatistics(c.Request.Context(), eventID)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "getting request statistics", "event_id", eventID)
		return
	}

	c.JSON(http.StatusOK, resp)
}
