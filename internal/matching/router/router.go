// Package router provides matching module routes registration.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/teammatch/internal/cache"
	"github.com/festy23/teammatch/internal/config"
	"github.com/festy23/teammatch/internal/embedding"
	eventRepository "github.com/festy23/teammatch/internal/event/repository"
	"github.com/festy23/teammatch/internal/matching/handler"
	"github.com/festy23/teammatch/internal/matching/repository"
	"github.com/festy23/teammatch/internal/matching/service"
	profileRepository "github.com/festy23/teammatch/internal/profile/repository"
)

// NewRanker builds the candidate ranker. The caller must Close it on shutdown.
func NewRanker(
	db *gorm.DB,
	memberships service.MembershipIndex,
	oracle embedding.Oracle,
	c cache.Cache,
	cfg config.MatchingConfig,
	logger *zap.SugaredLogger,
) (service.Service, error) {
	return service.New(
		repository.New(db, logger),
		profileRepository.New(db, logger),
		eventRepository.New(db, logger),
		memberships,
		oracle,
		c,
		cfg,
		logger,
	)
}

// RegisterRoutes registers matching module routes.
func RegisterRoutes(r gin.IRouter, ranker service.Service, logger *zap.SugaredLogger) {
	h := handler.New(ranker, logger)

	matching := r.Group("/matching")
	matching.GET("/suggestions", h.Suggest)
	matching.GET("/compatibility/:userId", h.Compatibility)
	matching.POST("/feedback", h.RecordFeedback)
	matching.GET("/feedback/stats", h.FeedbackStats)
}
