// Package repository provides data access layer for the event module.
package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	eventModel "github.com/festy23/teammatch/internal/event/model"
)

// Repository defines the interface for event data access operations.
type Repository interface {
	// Create inserts a new event.
	Create(ctx context.Context, event *eventModel.Event) error

	// GetByID finds an event by id.
	GetByID(ctx context.Context, id string) (*eventModel.Event, error)

	// List returns events ordered by start time, most recent first.
	List(ctx context.Context, offset, limit int) ([]eventModel.Event, int64, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new event repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

func (r *repository) Create(ctx context.Context, event *eventModel.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*eventModel.Event, error) {
	var event eventModel.Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, eventModel.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) List(ctx context.Context, offset, limit int) ([]eventModel.Event, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&eventModel.Event{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []eventModel.Event
	err := r.db.WithContext(ctx).
		Order("starts_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
