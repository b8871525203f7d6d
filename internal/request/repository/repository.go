// Package repository provides data access layer for the request module.
package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/teammatch/internal/database/dberr"
	requestModel "github.com/festy23/teammatch/internal/request/model"
)

var updateColumns = []string{
	"team_id", "status", "response_message", "active_key", "expires_at",
	"responded_at", "viewed_at", "version", "updated_at",
}

// Repository defines the interface for request data access operations.
type Repository interface {
	// Create inserts a request. A live request for the same tuple yields ErrDuplicateRequest.
	Create(ctx context.Context, req *requestModel.Request) error

	// GetByID finds a request by id.
	GetByID(ctx context.Context, id string) (*requestModel.Request, error)

	// GetByActiveKey finds the request currently holding activeKey.
	GetByActiveKey(ctx context.Context, activeKey string) (*requestModel.Request, error)

	// Update writes the mutable columns if the stored version equals
	// expectedVersion and advances req.Version. Otherwise it returns ErrVersionConflict.
	Update(ctx context.Context, req *requestModel.Request, expectedVersion int64) error

	// ExpireOverdueByKey persists the expiry of an overdue pending request holding activeKey.
	ExpireOverdueByKey(ctx context.Context, activeKey string, now time.Time) (int64, error)

	// ListReceived returns a page of requests addressed to userID.
	ListReceived(
		ctx context.Context,
		userID string,
		status requestModel.Status,
		now time.Time,
		offset, limit int,
	) ([]requestModel.Request, int64, error)

	// ListSent returns a page of requests sent by userID.
	ListSent(
		ctx context.Context,
		userID string,
		status requestModel.Status,
		now time.Time,
		offset, limit int,
	) ([]requestModel.Request, int64, error)

	// ListPendingInvolving returns pending requests of eventID sent or received
	// by any of userIDs, except excludeID.
	ListPendingInvolving(ctx context.Context, eventID string, userIDs []string, excludeID string) ([]requestModel.Request, error)

	// ExpireStale persists the expiry of every pending request overdue at now.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new request repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

func (r *repository) Create(ctx context.Context, req *requestModel.Request) error {
	err := r.db.WithContext(ctx).Create(req).Error
	if err != nil && dberr.IsDuplicate(err) {
		return requestModel.ErrDuplicateRequest
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id string) (*requestModel.Request, error) {
	var req requestModel.Request
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, requestModel.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *repository) GetByActiveKey(ctx context.Context, activeKey string) (*requestModel.Request, error) {
	var req requestModel.Request
	err := r.db.WithContext(ctx).Where("active_key = ?", activeKey).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, requestModel.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *repository) Update(ctx context.Context, req *requestModel.Request, expectedVersion int64) error {
	updated := *req
	updated.Version = expectedVersion + 1

	result := r.db.WithContext(ctx).
		Model(&requestModel.Request{}).
		Where("id = ? AND version = ?", req.ID, expectedVersion).
		Select(updateColumns).
		Updates(&updated)
	if result.Error != nil {
		if dberr.IsDuplicate(result.Error) {
			return requestModel.ErrDuplicateRequest
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return requestModel.ErrVersionConflict
	}
	req.Version = updated.Version
	req.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *repository) ExpireOverdueByKey(ctx context.Context, activeKey string, now time.Time) (int64, error) {
	result := r.expireQuery(ctx, now).Where("active_key = ?", activeKey).Updates(expireColumns(now))
	return result.RowsAffected, result.Error
}

func (r *repository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	result := r.expireQuery(ctx, now).Updates(expireColumns(now))
	return result.RowsAffected, result.Error
}

func (r *repository) expireQuery(ctx context.Context, now time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&requestModel.Request{}).
		Where("status = ? AND expires_at < ?", requestModel.StatusPending, now)
}

func expireColumns(now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"status":     requestModel.StatusExpired,
		"active_key": nil,
		"version":    gorm.Expr("version + 1"),
		"updated_at": now,
	}
}

func (r *repository) ListReceived(
	ctx context.Context,
	userID string,
	status requestModel.Status,
	now time.Time,
	offset, limit int,
) ([]requestModel.Request, int64, error) {
	return r.list(ctx, "to_user_id = ?", userID, status, now, offset, limit)
}

func (r *repository) ListSent(
	ctx context.Context,
	userID string,
	status requestModel.Status,
	now time.Time,
	offset, limit int,
) ([]requestModel.Request, int64, error) {
	return r.list(ctx, "from_user_id = ?", userID, status, now, offset, limit)
}

// list filters on the status a reader would observe at now, so overdue
// pending rows count as expired.
func (r *repository) list(
	ctx context.Context,
	owner, userID string,
	status requestModel.Status,
	now time.Time,
	offset, limit int,
) ([]requestModel.Request, int64, error) {
	query := r.db.WithContext(ctx).Model(&requestModel.Request{}).Where(owner, userID)
	switch status {
	case "":
	case requestModel.StatusPending:
		query = query.Where("status = ? AND expires_at >= ?", requestModel.StatusPending, now)
	case requestModel.StatusExpired:
		query = query.Where("(status = ? OR (status = ? AND expires_at < ?))",
			requestModel.StatusExpired, requestModel.StatusPending, now)
	default:
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []requestModel.Request
	err := query.Order("created_at DESC, id ASC").Offset(offset).Limit(limit).Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *repository) ListPendingInvolving(
	ctx context.Context,
	eventID string,
	userIDs []string,
	excludeID string,
) ([]requestModel.Request, error) {
	var requests []requestModel.Request
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND status = ? AND id <> ?", eventID, requestModel.StatusPending, excludeID).
		Where(r.db.Where("from_user_id IN ?", userIDs).Or("to_user_id IN ?", userIDs)).
		Order("created_at ASC, id ASC").
		Find(&requests).Error
	return requests, err
}
