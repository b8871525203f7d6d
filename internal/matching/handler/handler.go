// Package handler provides HTTP handlers for matching endpoints.
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/internal/httpresp"
	matchingModel "github.com/festy23/teammatch/internal/matching/model"
	"github.com/festy23/teammatch/internal/matching/service"
	"github.com/festy23/teammatch/internal/middleware"
)

// Handler handles HTTP requests for matching endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new matching handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Suggest handles GET /matching/suggestions request.
// @Summary Ranked teammate suggestions for the caller
// @Tags Matching
// @Produce json
// @Param event_id query string false "Event ID"
// @Param skills query string false "Comma-separated skills every candidate must have"
// @Param experience query string false "beginner, intermediate or senior"
// @Param city query string false "City"
// @Param min_completion query int false "Minimum profile completion"
// @Param limit query int false "Limit (default 10, max 50)"
// @Success 200 {object} matchingModel.SuggestionsResponse
// @Failure 400 {object} httpresp.ErrorResponse "Bad request (INVALID_REQUEST, INVALID_EXPERIENCE_LEVEL)"
// @Failure 404 {object} httpresp.ErrorResponse "Event not found"
// @Failure 412 {object} httpresp.ErrorResponse "Profile required"
// @Router /matching/suggestions [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Suggest(c *gin.Context) {
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	minCompletion, ok := intQuery(c, "min_completion")
	if !ok {
		return
	}

	filters := matchingModel.SuggestionFilters{
		Skills:        splitList(c.Query("skills")),
		Experience:    matchingModel.ExperienceLevel(strings.ToLower(c.Query("experience"))),
		City:          c.Query("city"),
		MinCompletion: minCompletion,
	}
	userID := middleware.UserID(c)
	eventID := c.Query("event_id")

	suggestions, err := h.service.Suggest(c.Request.Context(), userID, eventID, filters, limit)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "ranking suggestions", "user_id", userID, "event_id", eventID)
		return
	}

	c.JSON(http.StatusOK, matchingModel.SuggestionsResponse{
		Suggestions: suggestions,
		Count:       len(suggestions),
	})
}

// Compatibility handles GET /matching/compatibility/:userId request.
// @Summary Detailed compatibility between the caller and another user
// @Tags Matching
// @Produce json
// @Param userId path string true "Other user ID"
// @Param event_id query string false "Event ID"
// @Success 200 {object} matchingModel.Compatibility
// @Failure 404 {object} httpresp.ErrorResponse "Profile or event not found"
// @Failure 412 {object} httpresp.ErrorResponse "Profile required"
// @Failure 422 {object} httpresp.ErrorResponse "Self match"
// @Router /matching/compatibility/{userId} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) Compatibility(c *gin.Context) {
	otherUserID := c.Param("userId")
	userID := middleware.UserID(c)
	eventID := c.Query("event_id")

	result, err := h.service.Compatibility(c.Request.Context(), userID, otherUserID, eventID)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "analysing compatibility",
			"user_id", userID, "other_user_id", otherUserID, "event_id", eventID)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RecordFeedback handles POST /matching/feedback request.
// @Summary Rate a suggested match
// @Tags Matching
// @Accept json
// @Produce json
// @Param request body matchingModel.FeedbackRequest true "Feedback"
// @Success 201 {object} matchingModel.MatchFeedback
// @Failure 400 {object} httpresp.ErrorResponse "Bad request"
// @Failure 422 {object} httpresp.ErrorResponse "Self match"
// @Router /matching/feedback [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) RecordFeedback(c *gin.Context) {
	var req matchingModel.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpresp.BadRequest(c, "invalid request body")
		return
	}

	userID := middleware.UserID(c)
	feedback, err := h.service.RecordFeedback(c.Request.Context(), userID, &req)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "recording feedback",
			"user_id", userID, "matched_user_id", req.MatchedUserID)
		return
	}

	c.JSON(http.StatusCreated, feedback)
}

// FeedbackStats handles GET /matching/feedback/stats request.
// @Summary Aggregate of the feedback the caller has given
// @Tags Matching
// @Produce json
// @Success 200 {object} matchingModel.FeedbackStats
// @Router /matching/feedback/stats [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) FeedbackStats(c *gin.Context) {
	userID := middleware.UserID(c)

	stats, err := h.service.FeedbackStats(c.Request.Context(), userID)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "getting feedback stats", "user_id", userID)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// intQuery parses an optional integer query parameter. It writes a 400 and
// returns false when the value is malformed.
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		httpresp.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
