// Package repository provides data access layer for match feedback.
package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	matchingModel "github.com/festy23/teammatch/internal/matching/model"
)

// Repository defines the interface for match feedback operations.
type Repository interface {
	// CreateFeedback stores one feedback entry.
	CreateFeedback(ctx context.Context, feedback *matchingModel.MatchFeedback) error

	// FeedbackStats aggregates the feedback given by userID.
	FeedbackStats(ctx context.Context, userID string) (*matchingModel.FeedbackStats, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new feedback repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

func (r *repository) CreateFeedback(ctx context.Context, feedback *matchingModel.MatchFeedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *repository) FeedbackStats(ctx context.Context, userID string) (*matchingModel.FeedbackStats, error) {
	var row struct {
		Total           int64
		AverageRating   *float64
		InterestedCount int64
	}
	err := r.db.WithContext(ctx).
		Model(&matchingModel.MatchFeedback{}).
		Select("COUNT(*) AS total, AVG(rating) AS average_rating, "+
			"COALESCE(SUM(CASE WHEN interested THEN 1 ELSE 0 END), 0) AS interested_count").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := &matchingModel.FeedbackStats{Total: row.Total, InterestedCount: row.InterestedCount}
	if row.AverageRating != nil {
		stats.AverageRating = *row.AverageRating
	}
	return stats, nil
}
