// Package repository provides data access layer for statistics module.
package repository

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	requestModel "github.com/festy23/teammatch/internal/request/model"
	"github.com/festy23/teammatch/internal/statistics/model"
	teamModel "github.com/festy23/teammatch/internal/team/model"
)

// Repository defines the interface for statistics data access operations.
type Repository interface {
	// EventExists reports whether the event is registered.
	EventExists(ctx context.Context, eventID string) (bool, error)

	// GetTeamsStatistics returns fill statistics for every team of the event.
	GetTeamsStatistics(ctx context.Context, eventID string) ([]model.TeamStatistics, error)

	// GetRequestStatistics returns request counts of the event by status.
	GetRequestStatistics(ctx context.Context, eventID string) (*model.RequestStatistics, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new statistics repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// EventExists reports whether the event is registered.
func (r *repository) EventExists(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("events").
		Where("id = ?", eventID).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("EventExists database error", "event_id", eventID, "error", err)
		return false, err
	}
	return count > 0, nil
}

// GetTeamsStatistics returns fill statistics for every team of the event.
func (r *repository) GetTeamsStatistics(ctx context.Context, eventID string) ([]model.TeamStatistics, error) {
	r.logger.Debugw("GetTeamsStatistics called", "event_id", eventID)

	var stats []model.TeamStatistics

	err := r.db.WithContext(ctx).
		Table("teams").
		Select(`
			teams.id AS team_id,
			teams.name,
			teams.status,
			teams.capacity_max,
			teams.health_score,
			COUNT(team_members.id) AS active_members
		`).
		Joins("LEFT JOIN team_members ON team_members.team_id = teams.id AND team_members.status = ?", teamModel.MemberActive).
		Where("teams.event_id = ?", eventID).
		Group("teams.id, teams.name, teams.status, teams.capacity_max, teams.health_score").
		Order("active_members DESC, teams.name ASC").
		Scan(&stats).Error

	if err != nil {
		r.logger.Errorw("GetTeamsStatistics database error", "event_id", eventID, "error", err)
		return nil, err
	}

	if stats == nil {
		stats = []model.TeamStatistics{}
	}

	r.logger.Debugw("GetTeamsStatistics completed", "event_id", eventID, "count", len(stats))
	return stats, nil
}

// GetRequestStatistics returns request counts of the event by status.
func (r *repository) GetRequestStatistics(ctx context.Context, eventID string) (*model.RequestStatistics, error) {
	r.logger.Debugw("GetRequestStatistics called", "event_id", eventID)

	var result struct {
		Total     int64   `gorm:"column:total"`
		Pending   int64   `gorm:"column:pending"`
		Accepted  int64   `gorm:"column:accepted"`
		Rejected  int64   `gorm:"column:rejected"`
		Cancelled int64   `gorm:"column:cancelled"`
		Expired   int64   `gorm:"column:expired"`
		AvgScore  float64 `gorm:"column:avg_score"`
	}

	err := r.db.WithContext(ctx).
		Table("requests").
		Select(`
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS accepted,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS rejected,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS cancelled,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS expired,
			COALESCE(AVG(match_score), 0) AS avg_score
		`,
			requestModel.StatusPending,
			requestModel.StatusAccepted,
			requestModel.StatusRejected,
			requestModel.StatusCancelled,
			requestModel.StatusExpired,
		).
		Where("event_id = ?", eventID).
		Scan(&result).Error

	if err != nil {
		r.logger.Errorw("GetRequestStatistics database error", "event_id", eventID, "error", err)
		return nil, err
	}

	stats := &model.RequestStatistics{
		Total:             int(result.Total),
		Pending:           int(result.Pending),
		Accepted:          int(result.Accepted),
		Rejected:          int(result.Rejected),
		Cancelled:         int(result.Cancelled),
		Expired:           int(result.Expired),
		AverageMatchScore: result.AvgScore,
	}
	if answered := stats.Accepted + stats.Rejected; answered > 0 {
		stats.AcceptanceRate = float64(stats.Accepted) / float64(answered)
	}

	r.logger.Debugw("GetRequestStatistics completed", "event_id", eventID, "total", stats.Total)
	return stats, nil
}
