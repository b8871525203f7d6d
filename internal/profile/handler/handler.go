// Package handler provides HTTP handlers for profile endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/internal/httpresp"
	"github.com/festy23/teammatch/internal/middleware"
	profileModel "github.com/festy23/teammatch/internal/profile/model"
	"github.com/festy23/teammatch/internal/profile/service"
)

// Handler handles HTTP requests for profile endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new profile handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// UpsertMyProfile handles PUT /profiles/me request.
// @Summary Create or replace the caller's profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param request body profileModel.UpsertProfileRequest true "Request"
// @Success 200 {object} profileModel.Profile
// @Failure 400 {object} httpresp.ErrorResponse "Bad request (INVALID_REQUEST, INVALID_EXPERIENCE)"
// @Router /profiles/me [put] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) UpsertMyProfile(c *gin.Context) {
	var req profileModel.UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpresp.BadRequest(c, "invalid request body")
		return
	}

	userID := middleware.UserID(c)
	profile, err := h.service.UpsertProfile(c.Request.Context(), userID, &req)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "updating profile", "user_id", userID)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetProfile handles GET /profiles/:userId request.
// @Summary Get a profile
// @Tags Profiles
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} profileModel.Profile
// @Failure 404 {object} httpresp.ErrorResponse "Profile not found"
// @Router /profiles/{userId} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetProfile(c *gin.Context) {
	userID := c.Param("userId")

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "getting profile", "user_id", userID)
		return
	}

	c.JSON(http.StatusOK, profile)
}
