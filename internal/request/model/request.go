// Package model provides domain models and DTOs for the request module.
package model

import (
	"strings"
	"time"

	"github.com/festy23/teammatch/internal/matching/scorer"
)

// Type distinguishes a peer request from a team invitation.
type Type string

const (
	TypePeerRequest Type = "peer_request"
	TypeTeamInvite  Type = "team_invite"
)

// Valid reports whether t is a known request type.
func (t Type) Valid() bool {
	return t == TypePeerRequest || t == TypeTeamInvite
}

// Status is the lifecycle state of a request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// Request is a peer request or team invitation from one participant to another.
type Request struct {
	ID              string           `gorm:"primaryKey;column:id;size:64"                  json:"id"`
	FromUserID      string           `gorm:"column:from_user_id;size:64;not null;index"    json:"from_user_id"`
	ToUserID        string           `gorm:"column:to_user_id;size:64;not null;index"      json:"to_user_id"`
	EventID         string           `gorm:"column:event_id;size:64;not null;index"        json:"event_id"`
	TeamID          string           `gorm:"column:team_id;size:64"                        json:"team_id,omitempty"`
	Type            Type             `gorm:"column:type;size:32;not null"                  json:"type"`
	Status          Status           `gorm:"column:status;size:32;not null;index"          json:"status"`
	Subject         string           `gorm:"column:subject;size:200"                       json:"subject,omitempty"`
	Message         string           `gorm:"column:message;type:text"                      json:"message,omitempty"`
	ResponseMessage string           `gorm:"column:response_message;type:text"             json:"response_message,omitempty"`
	MatchScore      int              `gorm:"column:match_score;not null;default:0"         json:"match_score"`
	Breakdown       scorer.Breakdown `gorm:"embedded;embeddedPrefix:score_"                json:"compatibility_breakdown"`
	ActiveKey       *string          `gorm:"column:active_key;size:300;uniqueIndex"        json:"-"`
	ExpiresAt       time.Time        `gorm:"column:expires_at;not null;index"              json:"expires_at"`
	RespondedAt     *time.Time       `gorm:"column:responded_at"                           json:"responded_at,omitempty"`
	ViewedAt        *time.Time       `gorm:"column:viewed_at"                              json:"viewed_at,omitempty"`
	Version         int64            `gorm:"column:version;not null;default:1"             json:"version"`
	CreatedAt       time.Time        `gorm:"column:created_at;not null;autoCreateTime"     json:"created_at"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;not null;autoUpdateTime"     json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Request) TableName() string {
	return "requests"
}

// Overdue reports whether a pending request has passed its expiry at now.
func (r *Request) Overdue(now time.Time) bool {
	return r.Status == StatusPending && now.After(r.ExpiresAt)
}

// EffectiveStatus is the status a reader observes at now.
func (r *Request) EffectiveStatus(now time.Time) Status {
	if r.Overdue(now) {
		return StatusExpired
	}
	return r.Status
}

// Involves reports whether userID sent or received the request.
func (r *Request) Involves(userID string) bool {
	return r.FromUserID == userID || r.ToUserID == userID
}

// ActiveKeyFor builds the uniqueness key held by a live request of a tuple.
func ActiveKeyFor(fromUserID, toUserID, eventID, teamID string) string {
	return strings.Join([]string{fromUserID, toUserID, eventID, teamID}, "|")
}

// CreateRequestRequest is the body of POST /requests.
type CreateRequestRequest struct {
	ToUserID string `json:"to_user_id" binding:"required"`
	EventID  string `json:"event_id"   binding:"required"`
	TeamID   string `json:"team_id"`
	Type     Type   `json:"type"       binding:"required"`
	Subject  string `json:"subject"    binding:"max=200"`
	Message  string `json:"message"    binding:"max=2000"`
}

// RespondRequest is the optional body of accept and reject.
type RespondRequest struct {
	Message string `json:"message" binding:"max=2000"`
}

// ExtendRequest is the body of POST /requests/:id/extend.
type ExtendRequest struct {
	Hours int `json:"hours" binding:"required"`
}

// CascadeFailure reports a competing request the cascade could not reject.
type CascadeFailure struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

// AcceptResult is the outcome of an accept.
type AcceptResult struct {
	Request *Request `json:"request"`
	TeamID  string   `json:"team_id"`
	// AlreadyAccepted is set when the request had been accepted before this call.
	AlreadyAccepted bool             `json:"already_accepted"`
	Cascaded        []string         `json:"cascaded"`
	CascadeFailures []CascadeFailure `json:"cascade_failures,omitempty"`
}
