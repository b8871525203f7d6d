// Package handler provides HTTP handlers for request endpoints.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/internal/httpresp"
	"github.com/festy23/teammatch/internal/middleware"
	requestModel "github.com/festy23/teammatch/internal/request/model"
	"github.com/festy23/teammatch/internal/request/service"
)

// Handler handles HTTP requests for request endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new request handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// CreateRequest handles POST /requests request.
// @Summary Send a peer request or a team invitation
// @Tags Requests
// @Accept json
// @Produce json
// @Param request body requestModel.CreateRequestRequest true "Request"
// @Success 201 {object} requestModel.Request
// @Failure 400 {object} httpresp.ErrorResponse "Bad request (INVALID_REQUEST, INVALID_REQUEST_TYPE, INVALID_TEAM_ID)"
// @Failure 403 {object} httpresp.ErrorResponse "Caller is not the team leader"
// @Failure 404 {object} httpresp.ErrorResponse "Event or team not found"
// @Failure 409 {object} httpresp.ErrorResponse "Conflict (DUPLICATE_REQUEST, TEAM_FULL, SENDER_ALREADY_IN_TEAM)"
// @Failure 412 {object} httpresp.ErrorResponse "Profile required"
// @Router /requests [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) CreateRequest(c *gin.Context) {
	var req requestModel.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpresp.BadRequest(c, "invalid request body")
		return
	}

	userID := middleware.UserID(c)
	created, err := h.service.CreateRequest(c.Request.Context(), userID, &req)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "creating request",
			"from_user_id", userID, "to_user_id", req.ToUserID, "event_id", req.EventID)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListReceived handles GET /requests/received request.
// @Summary List requests addressed to the caller
// @Tags Requests
// @Produce json
// @Param status query string false "Status"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} httpresp.ListResponse[requestModel.Request]
// @Router /requests/received [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ListReceived(c *gin.Context) {
	h.list(c, "listing received requests", h.service.ListReceived)
}

// ListSent handles GET /requests/sent request.
// @Summary List requests sent by the caller
// @Tags Requests
// @Produce json
// @Param status query string false "Status"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} httpresp.ListResponse[requestModel.Request]
// @Router /requests/sent [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ListSent(c *gin.Context) {
	h.list(c, "listing sent requests", h.service.ListSent)
}

type listFunc func(
	ctx context.Context,
	userID string,
	status requestModel.Status,
	page, limit int,
) ([]requestModel.Request, int64, error)

func (h *Handler) list(c *gin.Context, op string, fetch listFunc) {
	page, limit := httpresp.Pagination(c)
	userID := middleware.UserID(c)
	status := requestModel.Status(c.Query("status"))

	requests, total, err := fetch(c.Request.Context(), userID, status, page, limit)
	if err != nil {
		httpresp.FromError(c, h.logger, err, op, "user_id", userID, "status", status)
		return
	}

	c.JSON(http.StatusOK, httpresp.ListResponse[requestModel.Request]{
		Items: requests,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetRequest handles GET /requests/:id request.
// @Summary Get a request the caller sent or received
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} requestModel.Request
// @Failure 403 {object} httpresp.ErrorResponse "Caller is not a participant"
// @Failure 404 {object} httpresp.ErrorResponse "Request not found"
// @Router /requests/{id} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetRequest(c *gin.Context) {
	requestID := c.Param("id")
	userID := middleware.UserID(c)

	req, err := h.service.GetRequest(c.Request.Context(), requestID, userID)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "getting request", "request_id", requestID, "user_id", userID)
		return
	}

	c.JSON(http.StatusOK, req)
}

// AcceptRequest handles POST /requests/:id/accept request.
// @Summary Accept a request addressed to the caller
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param request body requestModel.RespondRequest false "Optional response message"
// @Success 200 {object} requestModel.AcceptResult
// @Failure 403 {object} httpresp.ErrorResponse "Caller is not the recipient"
// @Failure 404 {object} httpresp.ErrorResponse "Request not found"
// @Failure 409 {object} httpresp.ErrorResponse "Conflict (TEAM_FULL, RECIPIENT_ALREADY_IN_TEAM, CONCURRENT_MODIFICATION)"
// @Failure 422 {object} httpresp.ErrorResponse "Request expired or no longer pending"
// @Router /requests/{id}/accept [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) AcceptRequest(c *gin.Context) {
	body, ok := bindRespond(c)
	if !ok {
		return
	}

	requestID := c.Param("id")
	userID := middleware.UserID(c)
	result, err := h.service.AcceptRequest(c.Request.Context(), requestID, userID, body.Message)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "accepting request", "request_id", requestID, "user_id", userID)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RejectRequest handles POST /requests/:id/reject request.
// @Summary Reject a request addressed to the caller
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param request body requestModel.RespondRequest false "Optional response message"
// @Success 200 {object} requestModel.Request
// @Failure 403 {object} httpresp.ErrorResponse "Caller is not the recipient"
// @Failure 422 {object} httpresp.ErrorResponse "Request expired or no longer pending"
// @Router /requests/{id}/reject [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) RejectRequest(c *gin.Context) {
	body, ok := bindRespond(c)
	if !ok {
		return
	}

	requestID := c.Param("id")
	userID := middleware.UserID(c)
	req, err := h.service.RejectRequest(c.Request.Context(), requestID, userID, body.Message)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "rejecting request", "request_id", requestID, "user_id", userID)
		return
	}

	c.JSON(http.StatusOK, req)
}

// CancelRequest handles POST /requests/:id/cancel request.
// @Summary Withdraw a request sent by the caller
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} requestModel.Request
// @Failure 403 {object} httpresp.ErrorResponse "Caller is not the sender"
// @Failure 422 {object} httpresp.ErrorResponse "Request expired or no longer pending"
// @Router /requests/{id}/cancel [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) CancelRequest(c *gin.Context) {
	requestID := c.Param("id")
	userID := middleware.UserID(c)

	req, err := h.service.CancelRequest(c.Request.Context(), requestID, userID)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "cancelling request", "request_id", requestID, "user_id", userID)
		return
	}

	c.JSON(http.StatusOK, req)
}

// MarkViewed handles POST /requests/:id/view request.
// @Summary Record that the recipient opened the request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} requestModel.Request
// @Failure 403 {object} httpresp.ErrorResponse "Caller is not the recipient"
// @Router /requests/{id}/view [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) MarkViewed(c *gin.Context) {
	requestID := c.Param("id")
	userID := middleware.UserID(c)

	req, err := h.service.MarkViewed(c.Request.Context(), requestID, userID)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "marking request viewed", "request_id", requestID, "user_id", userID)
		return
	}

	c.JSON(http.StatusOK, req)
}

// ExtendExpiry handles POST /requests/:id/extend request.
// @Summary Extend the expiry of a pending request sent by the caller
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param request body requestModel.ExtendRequest true "Extension in hours"
// @Success 200 {object} requestModel.Request
// @Failure 400 {object} httpresp.ErrorResponse "Bad request (INVALID_REQUEST, INVALID_EXTENSION)"
// @Failure 403 {object} httpresp.ErrorResponse "Caller is not the sender"
// @Failure 422 {object} httpresp.ErrorResponse "Request expired or no longer pending"
// @Router /requests/{id}/extend [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ExtendExpiry(c *gin.Context) {
	var body requestModel.ExtendRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		httpresp.BadRequest(c, "invalid request body")
		return
	}

	requestID := c.Param("id")
	userID := middleware.UserID(c)
	extension := time.Duration(body.Hours) * time.Hour

	req, err := h.service.ExtendExpiry(c.Request.Context(), requestID, userID, extension)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "extending request", "request_id", requestID, "hours", body.Hours)
		return
	}

	c.JSON(http.StatusOK, req)
}

// bindRespond binds the optional response body of accept and reject.
func bindRespond(c *gin.Context) (requestModel.RespondRequest, bool) {
	var body requestModel.RespondRequest
	if c.Request.ContentLength == 0 {
		return body, true
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		httpresp.BadRequest(c, "invalid request body")
		return body, false
	}
	return body, true
}
