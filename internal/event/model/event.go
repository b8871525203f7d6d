// Package model provides domain models and DTOs for the event module.
package model

import (
	"time"

	"github.com/festy23/teammatch/pkg/apperror"
)

// Event is a time-boxed activity that scopes teams and requests.
type Event struct {
	ID           string    `gorm:"primaryKey;column:id;size:64"                  json:"id"`
	Name         string    `gorm:"column:name;size:255;not null"                 json:"name"`
	Description  string    `gorm:"column:description;type:text"                  json:"description,omitempty"`
	Technologies []string  `gorm:"column:technologies;type:text;serializer:json"           json:"technologies"`
	Categories   []string  `gorm:"column:categories;type:text;serializer:json"             json:"categories"`
	StartsAt     time.Time `gorm:"column:starts_at;not null"                     json:"starts_at"`
	EndsAt       time.Time `gorm:"column:ends_at;not null"                       json:"ends_at"`
	MaxTeamSize  int       `gorm:"column:max_team_size;not null;default:0"       json:"max_team_size"`
	CreatedBy    string    `gorm:"column:created_by;size:64;not null"            json:"created_by"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;autoCreateTime"     json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Event) TableName() string {
	return "events"
}

// CreateEventRequest is the body of POST /events.
type CreateEventRequest struct {
	Name         string    `json:"name"          binding:"required,max=255"`
	Description  string    `json:"description"`
	Technologies []string  `json:"technologies"`
	Categories   []string  `json:"categories"`
	StartsAt     time.Time `json:"starts_at"     binding:"required"`
	EndsAt       time.Time `json:"ends_at"       binding:"required"`
	MaxTeamSize  int       `json:"max_team_size" binding:"min=0,max=10"`
}

var (
	// ErrEventNotFound indicates that the referenced event does not exist.
	ErrEventNotFound = apperror.New(apperror.NotFound, "EVENT_NOT_FOUND", "event not found")
	// ErrInvalidSchedule indicates that an event ends before it starts.
	ErrInvalidSchedule = apperror.New(apperror.Validation, "INVALID_SCHEDULE", "event must end after it starts")
	// ErrInvalidTeamSize indicates a max team size outside 2..10.
	ErrInvalidTeamSize = apperror.New(apperror.Validation, "INVALID_TEAM_SIZE", "max_team_size must be 0 or between 2 and 10")
)
