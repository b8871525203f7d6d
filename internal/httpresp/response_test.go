package httpresp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/pkg/apperror"
)

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	errTeamFull := apperror.New(apperror.Conflict, "TEAM_FULL", "team is at capacity")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "domain error",
			err:        errTeamFull,
			wantStatus: http.StatusConflict,
			wantCode:   "TEAM_FULL",
			wantMsg:    "team is at capacity",
		},
		{
			name:       "wrapped domain error keeps detail",
			err:        fmt.Errorf("%w: 4/4 members", errTeamFull),
			wantStatus: http.StatusConflict,
			wantCode:   "TEAM_FULL",
			wantMsg:    "team is at capacity: 4/4 members",
		},
		{
			name:       "unknown error is hidden",
			err:        errors.New("pq: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			FromError(c, zap.NewNop().Sugar(), tt.err, "testing")

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
			assert.True(t, c.IsAborted())
		})
	}
}

func TestPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", 1, 20},
		{"?page=3&limit=5", 3, 5},
		{"?page=0&limit=-1", 1, 20},
		{"?page=abc&limit=500", 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil)

			page, limit := Pagination(c)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}
