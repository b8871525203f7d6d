// Package router provides request module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/teammatch/internal/cache"
	"github.com/festy23/teammatch/internal/config"
	"github.com/festy23/teammatch/internal/matching/scorer"
	"github.com/festy23/teammatch/internal/notification"
	"github.com/festy23/teammatch/internal/request/handler"
	"github.com/festy23/teammatch/internal/request/repository"
	"github.com/festy23/teammatch/internal/request/service"
	teamService "github.com/festy23/teammatch/internal/team/service"
)

// NewBroker builds the request broker shared by the request routes and the scheduler.
func NewBroker(
	db *gorm.DB,
	ledger teamService.Service,
	sc *scorer.Scorer,
	c cache.Cache,
	publisher notification.Publisher,
	cfg config.RequestsConfig,
	logger *zap.SugaredLogger,
) service.Service {
	return service.New(repository.New(db, logger), db, ledger, sc, c, publisher, cfg, logger)
}

// RegisterRoutes registers request module routes.
func RegisterRoutes(r gin.IRouter, broker service.Service, logger *zap.SugaredLogger) {
	h := handler.New(broker, logger)

	r.POST("/requests", h.CreateRequest)
	r.GET("/requests/received", h.ListReceived)
	r.GET("/requests/sent", h.ListSent)
	r.GET("/requests/:id", h.GetRequest)
	r.POST("/requests/:id/accept", h.AcceptRequest)
	r.POST("/requests/:id/reject", h.RejectRequest)
	r.POST("/requests/:id/cancel", h.CancelRequest)
	r.POST("/requests/:id/view", h.MarkViewed)
	r.POST("/requests/:id/extend", h.ExtendExpiry)
}
