// Package service provides business logic layer for the event module.
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	eventModel "github.com/festy23/teammatch/internal/event/model"
	"github.com/festy23/teammatch/internal/event/repository"
)

// Service defines the interface for event business logic operations.
type Service interface {
	// CreateEvent registers a new event organised by creatorID.
	CreateEvent(ctx context.Context, creatorID string, req *eventModel.CreateEventRequest) (*eventModel.Event, error)

	// GetEvent returns an event by id.
	GetEvent(ctx context.Context, id string) (*eventModel.Event, error)

	// ListEvents returns a page of events.
	ListEvents(ctx context.Context, page, limit int) ([]eventModel.Event, int64, error)
}

type service struct {
	repo   repository.Repository
	logger *zap.SugaredLogger
}

// New creates a new event service instance.
func New(repo repository.Repository, logger *zap.SugaredLogger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) CreateEvent(
	ctx context.Context,
	creatorID string,
	req *eventModel.CreateEventRequest,
) (*eventModel.Event, error) {
	if !req.EndsAt.After(req.StartsAt) {
		return nil, eventModel.ErrInvalidSchedule
	}
	if req.MaxTeamSize != 0 && (req.MaxTeamSize < 2 || req.MaxTeamSize > 10) {
		return nil, eventModel.ErrInvalidTeamSize
	}

	event := &eventModel.Event{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Technologies: normalize(req.Technologies),
		Categories:   normalize(req.Categories),
		StartsAt:     req.StartsAt.UTC(),
		EndsAt:       req.EndsAt.UTC(),
		MaxTeamSize:  req.MaxTeamSize,
		CreatedBy:    creatorID,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Infow("Event created", "event_id", event.ID, "created_by", creatorID)
	return event, nil
}

func (s *service) GetEvent(ctx context.Context, id string) (*eventModel.Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListEvents(ctx context.Context, page, limit int) ([]eventModel.Event, int64, error) {
	return s.repo.List(ctx, (page-1)*limit, limit)
}

// normalize trims entries and drops blanks and duplicates, keeping order.
func normalize(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
