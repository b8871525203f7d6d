// Package router provides profile module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/teammatch/internal/cache"
	"github.com/festy23/teammatch/internal/embedding"
	"github.com/festy23/teammatch/internal/profile/handler"
	"github.com/festy23/teammatch/internal/profile/repository"
	"github.com/festy23/teammatch/internal/profile/service"
)

// NewService builds the profile service. The server also uses it to reload
// stored embeddings into the oracle at startup.
func NewService(db *gorm.DB, oracle embedding.Oracle, c cache.Cache, logger *zap.SugaredLogger) service.Service {
	return service.New(repository.New(db, logger), oracle, c, logger)
}

// RegisterRoutes registers profile module routes.
func RegisterRoutes(r gin.IRouter, svc service.Service, logger *zap.SugaredLogger) {
	h := handler.New(svc, logger)

	r.PUT("/profiles/me", h.UpsertMyProfile)
	r.GET("/profiles/:userId", h.GetProfile)
}
