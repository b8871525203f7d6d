// Package model provides data transfer objects for statistics module.
package model

import teamModel "github.com/festy23/teammatch/internal/team/model"

// TeamStatistics describes how far one team of an event has filled up.
type TeamStatistics struct {
	TeamID        string           `json:"team_id"`
	Name          string           `json:"name"`
	Status        teamModel.Status `json:"status"`
	ActiveMembers int              `json:"active_members"`
	CapacityMax   int              `json:"capacity_max"`
	HealthScore   int              `json:"health_score"`
}

// TeamsStatisticsResponse represents response for team statistics of an event.
type TeamsStatisticsResponse struct {
	EventID string           `json:"event_id"`
	Teams   []TeamStatistics `json:"teams"`
	Total   int              `json:"total"`
}

// RequestStatistics aggregates the requests sent within an event.
type RequestStatistics struct {
	Total             int     `json:"total"`
	Pending           int     `json:"pending"`
	Accepted          int     `json:"accepted"`
	Rejected          int     `json:"rejected"`
	Cancelled         int     `json:"cancelled"`
	Expired           int     `json:"expired"`
	AverageMatchScore float64 `json:"average_match_score"`
	// AcceptanceRate is accepted / (accepted + rejected), 0 when nothing was answered.
	AcceptanceRate float64 `json:"acceptance_rate"`
}

// RequestStatisticsResponse represents response for request statistics of an event.
type RequestStatisticsResponse struct {
	EventID    string            `json:"event_id"`
	Statistics RequestStatistics `json:"statistics"`
}
