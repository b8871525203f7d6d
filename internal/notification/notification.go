// Package notification publishes request lifecycle events to outside consumers.
// Delivery is fire-and-forget: a failed publish never affects the caller.
package notification

import (
	"context"
	"time"
)

// Kind names a request lifecycle event.
type Kind string

const (
	KindRequestCreated   Kind = "created"
	KindRequestAccepted  Kind = "accepted"
	KindRequestRejected  Kind = "rejected"
	KindRequestCancelled Kind = "cancelled"
)

// Event is the payload published for a request transition.
type Event struct {
	Kind       Kind      `json:"kind"`
	RequestID  string    `json:"request_id"`
	Type       string    `json:"type"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	EventID    string    `json:"event_id"`
	TeamID     string    `json:"team_id,omitempty"`
	Cascade    bool      `json:"cascade,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// Noop discards every event.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, Event) {}
