// Package router provides event module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/teammatch/internal/event/handler"
	"github.com/festy23/teammatch/internal/event/repository"
	"github.com/festy23/teammatch/internal/event/service"
)

// RegisterRoutes registers event module routes.
func RegisterRoutes(r gin.IRouter, db *gorm.DB, logger *zap.SugaredLogger) {
	repo := repository.New(db, logger)
	svc := service.New(repo, logger)
	h := handler.New(svc, logger)

	r.POST("/events", h.CreateEvent)
	r.GET("/events", h.ListEvents)
	r.GET("/events/:id", h.GetEvent)
}
