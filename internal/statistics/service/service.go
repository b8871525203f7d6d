// Package service provides business logic layer for statistics module.
package service

import (
	"context"

	"go.uber.org/zap"

	eventModel "github.com/festy23/teammatch/internal/event/model"
	"github.com/festy23/teammatch/internal/statistics/model"
	"github.com/festy23/teammatch/internal/statistics/repository"
)

// Service defines the interface for statistics business logic operations.
type Service interface {
	// GetTeamsStatistics returns fill statistics for the teams of an event.
	GetTeamsStatistics(ctx context.Context, eventID string) (*model.TeamsStatisticsResponse, error)

	// GetRequestStatistics returns request statistics for an event.
	GetRequestStatistics(ctx context.Context, eventID string) (*model.RequestStatisticsResponse, error)
}

type service struct {
	repo   repository.Repository
	logger *zap.SugaredLogger
}

// New creates a new statistics service instance.
func New(repo repository.Repository, logger *zap.SugaredLogger) Service {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

func (s *service) requireEvent(ctx context.Context, eventID string) error {
	ok, err := s.repo.EventExists(ctx, eventID)
	if err != nil {
		return err
	}
	if !ok {
		return eventModel.ErrEventNotFound
	}
	return nil
}

// GetTeamsStatistics returns fill statistics for the teams of an event.
func (s *service) GetTeamsStatistics(ctx context.Context, eventID string) (*model.TeamsStatisticsResponse, error) {
	s.logger.Debugw("GetTeamsStatistics called", "event_id", eventID)

	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}

	teams, err := s.repo.GetTeamsStatistics(ctx, eventID)
	if err != nil {
		s.logger.Errorw("GetTeamsStatistics failed", "event_id", eventID, "error", err)
		return nil, err
	}

	if teams == nil {
		teams = []model.TeamStatistics{}
	}

	s.logger.Infow("GetTeamsStatistics completed", "event_id", eventID, "count", len(teams))
	return &model.TeamsStatisticsResponse{
		EventID: eventID,
		Teams:   teams,
		Total:   len(teams),
	}, nil
}

// GetRequestStatistics returns request statistics for an event.
func (s *service) GetRequestStatistics(ctx context.Context, eventID string) (*model.RequestStatisticsResponse, error) {
	s.logger.Debugw("GetRequestStatistics called", "event_id", eventID)

	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}

	stats, err := s.repo.GetRequestStatistics(ctx, eventID)
	if err != nil {
		s.logger.Errorw("GetRequestStatistics failed", "event_id", eventID, "error", err)
		return nil, err
	}

	s.logger.Infow("GetRequestStatistics completed", "event_id", eventID, "total", stats.Total)
	return &model.RequestStatisticsResponse{
		EventID:    eventID,
		Statistics: *stats,
	}, nil
}
