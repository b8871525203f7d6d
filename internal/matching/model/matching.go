// Package model provides domain models and DTOs for the matching module.
package model

import (
	"time"

	"github.com/festy23/teammatch/internal/matching/scorer"
)

// ExperienceLevel buckets total experience for suggestion filtering.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceSenior       ExperienceLevel = "senior"
)

// Valid reports whether l is a known level.
func (l ExperienceLevel) Valid() bool {
	switch l {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceSenior:
		return true
	}
	return false
}

// Matches reports whether years of experience fall in the level.
func (l ExperienceLevel) Matches(years float64) bool {
	switch l {
	case ExperienceBeginner:
		return years <= 2
	case ExperienceIntermediate:
		return years > 2 && years <= 5
	case ExperienceSenior:
		return years > 5
	}
	return true
}

// SuggestionFilters narrows a suggestion list. Zero values do not filter.
type SuggestionFilters struct {
	Skills        []string        `json:"skills,omitempty"`
	Experience    ExperienceLevel `json:"experience,omitempty"`
	City          string          `json:"city,omitempty"`
	MinCompletion int             `json:"min_completion,omitempty"`
}

// Suggestion is one ranked candidate.
type Suggestion struct {
	UserID              string           `json:"user_id"`
	DisplayName         string           `json:"display_name"`
	City                string           `json:"city,omitempty"`
	Country             string           `json:"country,omitempty"`
	Skills              []string         `json:"skills"`
	Technologies        []string         `json:"technologies"`
	CompletionScore     int              `json:"completion_score"`
	LastActiveAt        time.Time        `json:"last_active_at"`
	Score               int              `json:"score"`
	Breakdown           scorer.Breakdown `json:"breakdown"`
	CommonSkills        []string         `json:"common_skills"`
	ComplementarySkills []string         `json:"complementary_skills"`
	Reasons             []string         `json:"reasons"`
}

// SuggestionsResponse is the body of GET /matching/suggestions.
type SuggestionsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
	Count       int          `json:"count"`
}

// Recommendation is advice derived from one breakdown component.
type Recommendation struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Compatibility is the detailed analysis of one pair.
type Compatibility struct {
	UserID              string           `json:"user_id"`
	OtherUserID         string           `json:"other_user_id"`
	EventID             string           `json:"event_id,omitempty"`
	Score               int              `json:"score"`
	Breakdown           scorer.Breakdown `json:"breakdown"`
	CommonSkills        []string         `json:"common_skills"`
	ComplementarySkills []string         `json:"complementary_skills"`
	Recommendations     []Recommendation `json:"recommendations"`
}

// MatchFeedback is a user's rating of a suggested match.
type MatchFeedback struct {
	ID            string    `gorm:"primaryKey;column:id;size:64"               json:"id"`
	UserID        string    `gorm:"column:user_id;size:64;not null;index"      json:"user_id"`
	MatchedUserID string    `gorm:"column:matched_user_id;size:64;not null"    json:"matched_user_id"`
	EventID       string    `gorm:"column:event_id;size:64"                    json:"event_id,omitempty"`
	Rating        int       `gorm:"column:rating;not null"                     json:"rating"`
	Interested    bool      `gorm:"column:interested;not null;default:false"   json:"interested"`
	Reason        string    `gorm:"column:reason;type:text"                    json:"reason,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;autoCreateTime"  json:"created_at"`
}

// TableName specifies the table name for GORM.
func (MatchFeedback) TableName() string {
	return "match_feedback"
}

// FeedbackRequest is the body of POST /matching/feedback.
type FeedbackRequest struct {
	MatchedUserID string `json:"matched_user_id" binding:"required"`
	EventID       string `json:"event_id"`
	Rating        int    `json:"rating"          binding:"required,min=1,max=5"`
	Interested    bool   `json:"interested"`
	Reason        string `json:"reason"          binding:"max=1000"`
}

// FeedbackStats aggregates the feedback a user has given.
type FeedbackStats struct {
	Total           int64   `json:"total"`
	AverageRating   float64 `json:"average_rating"`
	InterestedCount int64   `json:"interested_count"`
}
