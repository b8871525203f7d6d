// Package handler provides HTTP handlers for event endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	eventModel "github.com/festy23/teammatch/internal/event/model"
	"github.com/festy23/teammatch/internal/event/service"
	"github.com/festy23/teammatch/internal/httpresp"
	"github.com/festy23/teammatch/internal/middleware"
)

// Handler handles HTTP requests for event endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new event handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// CreateEvent handles POST /events request.
// @Summary Register an event
// @Tags Events
// @Accept json
// @Produce json
// @Param request body eventModel.CreateEventRequest true "Request"
// @Success 201 {object} eventModel.Event
// @Failure 400 {object} httpresp.ErrorResponse "Bad request (INVALID_REQUEST, INVALID_SCHEDULE, INVALID_TEAM_SIZE)"
// @Router /events [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) CreateEvent(c *gin.Context) {
	var req eventModel.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpresp.BadRequest(c, "invalid request body")
		return
	}

	event, err := h.service.CreateEvent(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "creating event")
		return
	}

	c.JSON(http.StatusCreated, event)
}

// GetEvent handles GET /events/:id request.
// @Summary Get an event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} eventModel.Event
// @Failure 404 {object} httpresp.ErrorResponse "Event not found"
// @Router /events/{id} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetEvent(c *gin.Context) {
	id := c.Param("id")

	event, err := h.service.GetEvent(c.Request.Context(), id)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "getting event", "event_id", id)
		return
	}

	c.JSON(http.StatusOK, event)
}

// ListEvents handles GET /events request.
// @Summary List events
// @Tags Events
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} httpresp.ListResponse[eventModel.Event]
// @Router /events [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ListEvents(c *gin.Context) {
	page, limit := httpresp.Pagination(c)

	events, total, err := h.service.ListEvents(c.Request.Context(), page, limit)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "listing events")
		return
	}

	c.JSON(http.StatusOK, httpresp.ListResponse[eventModel.Event]{
		Items: events,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
