// Package handler provides HTTP handlers for team endpoints.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/internal/httpresp"
	"github.com/festy23/teammatch/internal/middleware"
	teamModel "github.com/festy23/teammatch/internal/team/model"
	"github.com/festy23/teammatch/internal/team/service"
)

const defaultActivityLimit = 50

// Handler handles HTTP requests for team endpoints.
type Handler struct {
	service service.Service
	logger  *zap.SugaredLogger
}

// New creates a new team handler instance.
func New(svc service.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// CreateTeam handles POST /teams request.
// @Summary Create a team led by the caller
// @Tags Teams
// @Accept json
// @Produce json
// @Param request body teamModel.CreateTeamRequest true "Request"
// @Success 201 {object} teamModel.Team
// @Failure 400 {object} httpresp.ErrorResponse "Bad request (INVALID_REQUEST, INVALID_CAPACITY)"
// @Failure 404 {object} httpresp.ErrorResponse "Event not found"
// @Failure 409 {object} httpresp.ErrorResponse "Conflict (ALREADY_IN_TEAM, TEAM_NAME_TAKEN)"
// @Router /teams [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) CreateTeam(c *gin.Context) {
	var req teamModel.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpresp.BadRequest(c, "invalid request body")
		return
	}

	userID := middleware.UserID(c)
	team, err := h.service.CreateTeam(c.Request.Context(), userID, &req)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "creating team", "user_id", userID, "event_id", req.EventID)
		return
	}

	c.JSON(http.StatusCreated, team)
}

// ListTeams handles GET /teams request.
// @Summary List teams
// @Tags Teams
// @Produce json
// @Param event_id query string false "Event ID"
// @Param status query string false "Status"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} httpresp.ListResponse[teamModel.Team]
// @Router /teams [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ListTeams(c *gin.Context) {
	page, limit := httpresp.Pagination(c)
	filter := teamModel.ListFilter{
		EventID: c.Query("event_id"),
		Status:  teamModel.Status(c.Query("status")),
	}

	teams, total, err := h.service.ListTeams(c.Request.Context(), filter, page, limit)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "listing teams")
		return
	}

	c.JSON(http.StatusOK, httpresp.ListResponse[teamModel.Team]{
		Items: teams,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// ListMyTeams handles GET /teams/mine request.
// @Summary List the caller's teams, active memberships first
// @Tags Teams
// @Produce json
// @Success 200 {object} map[string][]teamModel.Team "Response wrapped in teams object"
// @Router /teams/mine [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ListMyTeams(c *gin.Context) {
	userID := middleware.UserID(c)

	teams, err := h.service.ListUserTeams(c.Request.Context(), userID)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "listing user teams", "user_id", userID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

// GetTeam handles GET /teams/:id request.
// @Summary Get a team with members
// @Tags Teams
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} teamModel.Team
// @Failure 404 {object} httpresp.ErrorResponse "Team not found"
// @Router /teams/{id} [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) GetTeam(c *gin.Context) {
	teamID := c.Param("id")

	team, err := h.service.GetTeam(c.Request.Context(), teamID)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "getting team", "team_id", teamID)
		return
	}

	c.JSON(http.StatusOK, team)
}

// UpdateTeam handles PATCH /teams/:id request.
// @Summary Update team settings
// @Tags Teams
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param request body teamModel.UpdateTeamRequest true "Request"
// @Success 200 {object} teamModel.Team
// @Failure 403 {object} httpresp.ErrorResponse "Caller is not the leader"
// @Failure 422 {object} httpresp.ErrorResponse "Capacity below member count"
// @Router /teams/{id} [patch] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) UpdateTeam(c *gin.Context) {
	var req teamModel.UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpresp.BadRequest(c, "invalid request body")
		return
	}

	teamID, userID := c.Param("id"), middleware.UserID(c)
	team, err := h.service.UpdateTeam(c.Request.Context(), teamID, userID, &req)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "updating team", "team_id", teamID, "user_id", userID)
		return
	}

	c.JSON(http.StatusOK, team)
}

// DisbandTeam handles DELETE /teams/:id request.
// @Summary Disband a team
// @Tags Teams
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} teamModel.Team
// @Failure 403 {object} httpresp.ErrorResponse "Caller is not the leader"
// @Router /teams/{id} [delete] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) DisbandTeam(c *gin.Context) {
	teamID, userID := c.Param("id"), middleware.UserID(c)

	team, err := h.service.DisbandTeam(c.Request.Context(), teamID, userID)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "disbanding team", "team_id", teamID, "user_id", userID)
		return
	}

	c.JSON(http.StatusOK, team)
}

// AddMember handles POST /teams/:id/members request.
// @Summary Add a member to the caller's team
// @Tags Membership
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param request body teamModel.AddMemberRequest true "Request"
// @Success 200 {object} teamModel.Team
// @Failure 409 {object} httpresp.ErrorResponse "Conflict (TEAM_FULL, ALREADY_IN_TEAM, ALREADY_MEMBER)"
// @Router /teams/{id}/members [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) AddMember(c *gin.Context) {
	var req teamModel.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpresp.BadRequest(c, "invalid request body")
		return
	}

	teamID, userID := c.Param("id"), middleware.UserID(c)
	team, err := h.service.AddMemberAs(c.Request.Context(), teamID, userID, req.UserID, req.Role)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "adding member", "team_id", teamID, "member_id", req.UserID)
		return
	}

	c.JSON(http.StatusOK, team)
}

// RemoveMember handles DELETE /teams/:id/members/:userId request.
// @Summary Remove a member from the caller's team
// @Tags Membership
// @Produce json
// @Param id path string true "Team ID"
// @Param userId path string true "User ID"
// @Success 200 {object} teamModel.Team
// @Failure 403 {object} httpresp.ErrorResponse "Caller is not the leader"
// @Failure 422 {object} httpresp.ErrorResponse "Invalid operation (LEADER_CANNOT_LEAVE, NOT_ACTIVE_MEMBER)"
// @Router /teams/{id}/members/{userId} [delete] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) RemoveMember(c *gin.Context) {
	teamID, userID, memberID := c.Param("id"), middleware.UserID(c), c.Param("userId")

	team, err := h.service.RemoveMember(c.Request.Context(), teamID, userID, memberID, teamModel.ReasonKicked)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "removing member", "team_id", teamID, "member_id", memberID)
		return
	}

	c.JSON(http.StatusOK, team)
}

// JoinTeam handles POST /teams/:id/join request.
// @Summary Join a public team directly
// @Tags Membership
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} teamModel.Team
// @Failure 403 {object} httpresp.ErrorResponse "Team does not accept direct joins"
// @Router /teams/{id}/join [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) JoinTeam(c *gin.Context) {
	teamID, userID := c.Param("id"), middleware.UserID(c)

	team, err := h.service.JoinTeam(c.Request.Context(), teamID, userID)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "joining team", "team_id", teamID, "user_id", userID)
		return
	}

	c.JSON(http.StatusOK, team)
}

// LeaveTeam handles POST /teams/:id/leave request.
// @Summary Leave a team
// @Tags Membership
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} teamModel.Team
// @Failure 422 {object} httpresp.ErrorResponse "Leader must transfer leadership first"
// @Router /teams/{id}/leave [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) LeaveTeam(c *gin.Context) {
	teamID, userID := c.Param("id"), middleware.UserID(c)

	team, err := h.service.LeaveTeam(c.Request.Context(), teamID, userID)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "leaving team", "team_id", teamID, "user_id", userID)
		return
	}

	c.JSON(http.StatusOK, team)
}

// TransferLeadership handles POST /teams/:id/transfer request.
// @Summary Transfer leadership to another member
// @Tags Membership
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param request body teamModel.TransferLeadershipRequest true "Request"
// @Success 200 {object} teamModel.Team
// @Router /teams/{id}/transfer [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) TransferLeadership(c *gin.Context) {
	var req teamModel.TransferLeadershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpresp.BadRequest(c, "invalid request body")
		return
	}

	teamID, userID := c.Param("id"), middleware.UserID(c)
	team, err := h.service.TransferLeadership(c.Request.Context(), teamID, userID, req.NewLeaderID)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "transferring leadership", "team_id", teamID, "new_leader_id", req.NewLeaderID)
		return
	}

	c.JSON(http.StatusOK, team)
}

// RecordActivity handles POST /teams/:id/activity request.
// @Summary Record team activity
// @Tags Membership
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param request body teamModel.RecordActivityRequest true "Request"
// @Success 200 {object} teamModel.Team
// @Router /teams/{id}/activity [post] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) RecordActivity(c *gin.Context) {
	var req teamModel.RecordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpresp.BadRequest(c, "invalid request body")
		return
	}

	teamID, userID := c.Param("id"), middleware.UserID(c)
	team, err := h.service.RecordActivity(c.Request.Context(), teamID, userID, req.Kind)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "recording activity", "team_id", teamID, "user_id", userID)
		return
	}

	c.JSON(http.StatusOK, team)
}

// ListActivity handles GET /teams/:id/activity request.
// @Summary List recent team activity
// @Tags Membership
// @Produce json
// @Param id path string true "Team ID"
// @Param limit query int false "Limit"
// @Success 200 {object} map[string][]teamModel.Activity "Response wrapped in activities object"
// @Router /teams/{id}/activity [get] //nolint:godot // Swagger annotation should not end with period
func (h *Handler) ListActivity(c *gin.Context) {
	teamID := c.Param("id")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultActivityLimit)))
	if err != nil || limit < 1 || limit > 200 {
		limit = defaultActivityLimit
	}

	activities, err := h.service.ListActivity(c.Request.Context(), teamID, limit)
	if err != nil {
		httpresp.FromError(c, h.logger, err, "listing activity", "team_id", teamID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": activities})
}
