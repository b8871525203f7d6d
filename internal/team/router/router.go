// Package router provides team module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/teammatch/internal/cache"
	"github.com/festy23/teammatch/internal/team/handler"
	"github.com/festy23/teammatch/internal/team/repository"
	"github.com/festy23/teammatch/internal/team/service"
)

// NewLedger builds the team ledger shared by the team routes, the request
// broker and the scheduler.
func NewLedger(db *gorm.DB, c cache.Cache, logger *zap.SugaredLogger) service.Service {
	return service.New(repository.New(db, logger), db, c, logger)
}

// RegisterRoutes registers team module routes.
func RegisterRoutes(r gin.IRouter, ledger service.Service, logger *zap.SugaredLogger) {
	h := handler.New(ledger, logger)

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
}
