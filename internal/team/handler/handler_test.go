package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/teammatch/internal/httpresp"
	"github.com/festy23/teammatch/internal/middleware"
	teamModel "github.com/festy23/teammatch/internal/team/model"
	"github.com/festy23/teammatch/internal/team/service"
)

type mockService struct {
	mock.Mock
}

func teamResult(args mock.Arguments) (*teamModel.Team, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*teamModel.Team), args.Error(1)
}

func (m *mockService) CreateTeam(
	ctx context.Context,
	leaderID string,
	req *teamModel.CreateTeamRequest,
) (*teamModel.Team, error) {
	return teamResult(m.Called(ctx, leaderID, req))
}

func (m *mockService) AddMember(
	ctx context.Context,
	teamID, userID string,
	role teamModel.Role,
) (*teamModel.Team, error) {
	return teamResult(m.Called(ctx, teamID, userID, role))
}

func (m *mockService) AddMemberAs(
	ctx context.Context,
	teamID, actorID, userID string,
	role teamModel.Role,
) (*teamModel.Team, error) {
	return teamResult(m.Called(ctx, teamID, actorID, userID, role))
}

func (m *mockService) RemoveMember(
	ctx context.Context,
	teamID, actorID, userID string,
	reason teamModel.RemoveReason,
) (*teamModel.Team, error) {
	return teamResult(m.Called(ctx, teamID, actorID, userID, reason))
}

func (m *mockService) TransferLeadership(
	ctx context.Context,
	teamID, currentLeaderID, newLeaderID string,
) (*teamModel.Team, error) {
	return teamResult(m.Called(ctx, teamID, currentLeaderID, newLeaderID))
}

func (m *mockService) GetTeam(ctx context.Context, teamID string) (*teamModel.Team, error) {
	return teamResult(m.Called(ctx, teamID))
}

func (m *mockService) ListTeams(
	ctx context.Context,
	filter teamModel.ListFilter,
	page, limit int,
) ([]teamModel.Team, int64, error) {
	args := m.Called(ctx, filter, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]teamModel.Team), args.Get(1).(int64), args.Error(2)
}

func (m *mockService) ListUserTeams(ctx context.Context, userID string) ([]teamModel.Team, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]teamModel.Team), args.Error(1)
}

func (m *mockService) UpdateTeam(
	ctx context.Context,
	teamID, actorID string,
	req *teamModel.UpdateTeamRequest,
) (*teamModel.Team, error) {
	return teamResult(m.Called(ctx, teamID, actorID, req))
}

func (m *mockService) DisbandTeam(ctx context.Context, teamID, actorID string) (*teamModel.Team, error) {
	return teamResult(m.Called(ctx, teamID, actorID))
}

func (m *mockService) JoinTeam(ctx context.Context, teamID, userID string) (*teamModel.Team, error) {
	return teamResult(m.Called(ctx, teamID, userID))
}

func (m *mockService) LeaveTeam(ctx context.Context, teamID, userID string) (*teamModel.Team, error) {
	return teamResult(m.Called(ctx, teamID, userID))
}

func (m *mockService) RecordActivity(ctx context.Context, teamID, actorID, kind string) (*teamModel.Team, error) {
	return teamResult(m.Called(ctx, teamID, actorID, kind))
}

func (m *mockService) ListActivity(ctx context.Context, teamID string, limit int) ([]teamModel.Activity, error) {
	args := m.Called(ctx, teamID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]teamModel.Activity), args.Error(1)
}

func (m *mockService) RefreshHealth(ctx context.Context, teamID string) (*teamModel.Team, error) {
	return teamResult(m.Called(ctx, teamID))
}

func (m *mockService) RefreshAllHealth(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockService) ActiveTeamID(ctx context.Context, userID, eventID string) (string, error) {
	args := m.Called(ctx, userID, eventID)
	return args.String(0), args.Error(1)
}

func (m *mockService) ActiveUserIDs(ctx context.Context, eventID string, userIDs []string) ([]string, error) {
	args := m.Called(ctx, eventID, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockService) WithTx(*gorm.DB) service.Service {
	return m
}

var _ service.Service = (*mockService)(nil)

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetUserID(c, "u1")
		c.Next()
	})
	r.POST("/teams", h.CreateTeam)
	r.GET("/teams", h.ListTeams)
	r.GET("/teams/mine", h.ListMyTeams)
	r.GET("/teams/:id", h.GetTeam)
	r.PATCH("/teams/:id", h.UpdateTeam)
	r.DELETE("/teams/:id", h.DisbandTeam)
	r.POST("/teams/:id/members", h.AddMember)
	r.DELETE("/teams/:id/members/:userId", h.RemoveMember)
	r.POST("/teams/:id/join", h.JoinTeam)
	r.POST("/teams/:id/leave", h.LeaveTeam)
	r.POST("/teams/:id/transfer", h.TransferLeadership)
	r.POST("/teams/:id/activity", h.RecordActivity)
	r.GET("/teams/:id/activity", h.ListActivity)
	return r
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var response httpresp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response.Error.Code
}

func TestHandler_CreateTeam(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(mockService)
		router := setupRouter(New(mockSvc, zap.NewNop().Sugar()))

		mockSvc.On("CreateTeam", mock.Anything, "u1", mock.MatchedBy(func(req *teamModel.CreateTeamRequest) bool {
			return req.Name == "Gophers" && req.EventID == "e1" && req.CapacityMax == 4 && len(req.RequiredSkills) == 1
		})).Return(&teamModel.Team{ID: "t1", Name: "Gophers", Status: teamModel.StatusForming}, nil)

		w := doRequest(router, "POST", "/teams",
			`{"name":"Gophers","event_id":"e1","capacity_max":4,"required_skills":[{"skill":"Go"}]}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		var response teamModel.Team
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "t1", response.ID)
		assert.Equal(t, teamModel.StatusForming, response.Status)
		mockSvc.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		for _, body := range []string{
			`{"name":"ab","event_id":"e1","capacity_max":4}`,
			`{"name":"Gophers","capacity_max":4}`,
			`{"name":"Gophers","event_id":"e1","capacity_max":4,"required_skills":[{"skill":""}]}`,
			`not json`,
		} {
			mockSvc := new(mockService)
			router := setupRouter(New(mockSvc, zap.NewNop().Sugar()))

			w := doRequest(router, "POST", "/teams", body)

			assert.Equal(t, http.StatusBadRequest, w.Code, body)
			mockSvc.AssertNotCalled(t, "CreateTeam")
		}
	})

	t.Run("already in a team", func(t *testing.T) {
		mockSvc := new(mockService)
		router := setupRouter(New(mockSvc, zap.NewNop().Sugar()))
		mockSvc.On("CreateTeam", mock.Anything, "u1", mock.Anything).
			Return(nil, fmt.Errorf("%w: member of team t0", teamModel.ErrAlreadyInTeam))

		w := doRequest(router, "POST", "/teams", `{"name":"Gophers","event_id":"e1","capacity_max":4}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ALREADY_IN_TEAM", errorCode(t, w))
	})
}

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		setup      func(m *mockService)
		wantStatus int
		wantCode   string
	}{
		{
			name:   "add member to full team",
			method: "POST", path: "/teams/t1/members", body: `{"user_id":"u2"}`,
			setup: func(m *mockService) {
				m.On("AddMemberAs", mock.Anything, "t1", "u1", "u2", teamModel.Role("")).
					Return(nil, fmt.Errorf("%w: 4/4 members", teamModel.ErrTeamFull))
			},
			wantStatus: http.StatusConflict,
			wantCode:   "TEAM_FULL",
		},
		{
			name:   "leader kicks self",
			method: "DELETE", path: "/teams/t1/members/u1",
			setup: func(m *mockService) {
				m.On("RemoveMember", mock.Anything, "t1", "u1", "u1", teamModel.ReasonKicked).
					Return(nil, teamModel.ErrLeaderCannotLeave)
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "LEADER_CANNOT_LEAVE",
		},
		{
			name:   "non-leader disbands",
			method: "DELETE", path: "/teams/t1",
			setup: func(m *mockService) {
				m.On("DisbandTeam", mock.Anything, "t1", "u1").Return(nil, teamModel.ErrNotLeader)
			},
			wantStatus: http.StatusForbidden,
			wantCode:   "NOT_TEAM_LEADER",
		},
		{
			name:   "team not found",
			method: "GET", path: "/teams/missing",
			setup: func(m *mockService) {
				m.On("GetTeam", mock.Anything, "missing").Return(nil, teamModel.ErrTeamNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantCode:   teamModel.ErrTeamNotFound.Code,
		},
		{
			name:   "concurrent modification",
			method: "POST", path: "/teams/t1/join",
			setup: func(m *mockService) {
				m.On("JoinTeam", mock.Anything, "t1", "u1").Return(nil, teamModel.ErrConcurrentModification)
			},
			wantStatus: http.StatusConflict,
			wantCode:   teamModel.ErrConcurrentModification.Code,
		},
		{
			name:   "unexpected error",
			method: "POST", path: "/teams/t1/leave",
			setup: func(m *mockService) {
				m.On("LeaveTeam", mock.Anything, "t1", "u1").Return(nil, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(mockService)
			tt.setup(mockSvc)
			router := setupRouter(New(mockSvc, zap.NewNop().Sugar()))

			w := doRequest(router, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w))
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestHandler_Membership(t *testing.T) {
	team := &teamModel.Team{ID: "t1", LeaderID: "u2"}

	t.Run("transfer leadership", func(t *testing.T) {
		mockSvc := new(mockService)
		router := setupRouter(New(mockSvc, zap.NewNop().Sugar()))
		mockSvc.On("TransferLeadership", mock.Anything, "t1", "u1", "u2").Return(team, nil)

		w := doRequest(router, "POST", "/teams/t1/transfer", `{"new_leader_id":"u2"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		var response teamModel.Team
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "u2", response.LeaderID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("transfer requires a new leader", func(t *testing.T) {
		mockSvc := new(mockService)
		router := setupRouter(New(mockSvc, zap.NewNop().Sugar()))

		w := doRequest(router, "POST", "/teams/t1/transfer", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockSvc.AssertNotCalled(t, "TransferLeadership")
	})

	t.Run("update", func(t *testing.T) {
		mockSvc := new(mockService)
		router := setupRouter(New(mockSvc, zap.NewNop().Sugar()))
		mockSvc.On("UpdateTeam", mock.Anything, "t1", "u1", mock.MatchedBy(func(req *teamModel.UpdateTeamRequest) bool {
			return req.CapacityMax != nil && *req.CapacityMax == 5 && req.Description == nil
		})).Return(team, nil)

		w := doRequest(router, "PATCH", "/teams/t1", `{"capacity_max":5}`)

		assert.Equal(t, http.StatusOK, w.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("record activity", func(t *testing.T) {
		mockSvc := new(mockService)
		router := setupRouter(New(mockSvc, zap.NewNop().Sugar()))
		mockSvc.On("RecordActivity", mock.Anything, "t1", "u1", "commit").Return(team, nil)

		w := doRequest(router, "POST", "/teams/t1/activity", `{"kind":"commit"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestHandler_Lists(t *testing.T) {
	t.Run("list teams with filter", func(t *testing.T) {
		mockSvc := new(mockService)
		router := setupRouter(New(mockSvc, zap.NewNop().Sugar()))
		filter := teamModel.ListFilter{EventID: "e1", Status: teamModel.StatusRecruiting}
		mockSvc.On("ListTeams", mock.Anything, filter, 1, 20).
			Return([]teamModel.Team{{ID: "t1"}}, int64(1), nil)

		w := doRequest(router, "GET", "/teams?event_id=e1&status=recruiting", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var response httpresp.ListResponse[teamModel.Team]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, int64(1), response.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("my teams", func(t *testing.T) {
		mockSvc := new(mockService)
		router := setupRouter(New(mockSvc, zap.NewNop().Sugar()))
		mockSvc.On("ListUserTeams", mock.Anything, "u1").Return([]teamModel.Team{{ID: "t1"}, {ID: "t0"}}, nil)

		w := doRequest(router, "GET", "/teams/mine", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string][]teamModel.Team
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response["teams"], 2)
		assert.Equal(t, "t1", response["teams"][0].ID)
	})

	t.Run("activity with bad limit falls back to default", func(t *testing.T) {
		mockSvc := new(mockService)
		router := setupRouter(New(mockSvc, zap.NewNop().Sugar()))
		mockSvc.On("ListActivity", mock.Anything, "t1", defaultActivityLimit).
			Return([]teamModel.Activity{{Kind: "team_created"}}, nil)

		w := doRequest(router, "GET", "/teams/t1/activity?limit=abc", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string][]teamModel.Activity
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response["activities"], 1)
		mockSvc.AssertExpectations(t)
	})
}
