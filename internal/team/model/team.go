// Package model provides domain models and DTOs for the team module.
package model

import (
	"slices"
	"strings"
	"time"
)

// Status is the derived lifecycle state of a team.
type Status string

const (
	StatusForming    Status = "forming"
	StatusRecruiting Status = "recruiting"
	StatusComplete   Status = "complete"
	StatusDisbanded  Status = "disbanded"
)

// Role is a member's role within a team.
type Role string

const (
	RoleLeader Role = "leader"
	RoleMember Role = "member"
)

// MemberStatus is the state of one membership row.
type MemberStatus string

const (
	MemberActive  MemberStatus = "active"
	MemberLeft    MemberStatus = "left"
	MemberRemoved MemberStatus = "removed"
)

// RemoveReason explains why a membership ended.
type RemoveReason string

const (
	ReasonLeft   RemoveReason = "left"
	ReasonKicked RemoveReason = "kicked"
)

// Priority ranks a required skill.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// RoadmapItem is one milestone of the team's project plan.
type RoadmapItem struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// Team is the membership aggregate. Members and RequiredSkills are loaded
// explicitly by the repository.
type Team struct {
	ID                   string        `gorm:"primaryKey;column:id;size:64"                json:"id"`
	Name                 string        `gorm:"column:name;size:100;not null;uniqueIndex"   json:"name"`
	Description          string        `gorm:"column:description;type:text"               json:"description,omitempty"`
	EventID              string        `gorm:"column:event_id;size:64;not null;index"      json:"event_id"`
	LeaderID             string        `gorm:"column:leader_id;size:64;not null"           json:"leader_id"`
	CapacityMin          int           `gorm:"column:capacity_min;not null"                json:"capacity_min"`
	CapacityMax          int           `gorm:"column:capacity_max;not null"                json:"capacity_max"`
	Status               Status        `gorm:"column:status;size:20;not null;index"        json:"status"`
	HealthScore          int           `gorm:"column:health_score;not null;default:0"      json:"health_score"`
	IsPublic             bool          `gorm:"column:is_public;not null"                   json:"is_public"`
	AllowDirectJoin      bool          `gorm:"column:allow_direct_join;not null"           json:"allow_direct_join"`
	CommunicationChannel string        `gorm:"column:communication_channel;size:255"       json:"communication_channel,omitempty"`
	Roadmap              []RoadmapItem `gorm:"column:roadmap;type:text;serializer:json"              json:"roadmap"`
	LastActivityAt       time.Time     `gorm:"column:last_activity_at;not null"            json:"last_activity_at"`
	Version              int64         `gorm:"column:version;not null;default:1"           json:"version"`
	CreatedAt            time.Time     `gorm:"column:created_at;autoCreateTime"            json:"created_at"`
	UpdatedAt            time.Time     `gorm:"column:updated_at;autoUpdateTime"            json:"updated_at"`

	Members        []Member        `gorm:"-" json:"members"`
	RequiredSkills []RequiredSkill `gorm:"-" json:"required_skills"`
}

// TableName specifies the table name for GORM.
func (Team) TableName() string {
	return "teams"
}

// ActiveMember returns the active membership of userID, or nil.
func (t *Team) ActiveMember(userID string) *Member {
	for i := range t.Members {
		if t.Members[i].UserID == userID && t.Members[i].Status == MemberActive {
			return &t.Members[i]
		}
	}
	return nil
}

// ActiveUserIDs lists the users holding an active membership, in join order.
func (t *Team) ActiveUserIDs() []string {
	ids := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		if m.Status == MemberActive {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

// ActiveCount returns the number of active members.
func (t *Team) ActiveCount() int {
	n := 0
	for _, m := range t.Members {
		if m.Status == MemberActive {
			n++
		}
	}
	return n
}

// Member is one membership row. A user re-joining gets a new row.
type Member struct {
	ID       string       `gorm:"primaryKey;column:id;size:64"        json:"id"`
	TeamID   string       `gorm:"column:team_id;size:64;not null;index" json:"team_id"`
	UserID   string       `gorm:"column:user_id;size:64;not null;index" json:"user_id"`
	Role     Role         `gorm:"column:role;size:20;not null"        json:"role"`
	Status   MemberStatus `gorm:"column:status;size:20;not null"      json:"status"`
	JoinedAt time.Time    `gorm:"column:joined_at;not null"           json:"joined_at"`
	LeftAt   *time.Time   `gorm:"column:left_at"                      json:"left_at,omitempty"`
}

// TableName specifies the table name for GORM.
func (Member) TableName() string {
	return "team_members"
}

// RequiredSkill is a skill the team is recruiting for.
type RequiredSkill struct {
	TeamID    string   `gorm:"primaryKey;column:team_id;size:64" json:"-"`
	Skill     string   `gorm:"primaryKey;column:skill;size:128"  json:"skill"`
	Priority  Priority `gorm:"column:priority;size:20;not null"  json:"priority"`
	Count     int      `gorm:"column:count;not null;default:1"   json:"count"`
	Fulfilled int      `gorm:"column:fulfilled;not null"         json:"fulfilled"`
}

// TableName specifies the table name for GORM.
func (RequiredSkill) TableName() string {
	return "team_required_skills"
}

// Activity is one entry of the team's activity log.
type Activity struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;column:id"  json:"id"`
	TeamID    string    `gorm:"column:team_id;size:64;not null;index:idx_team_activities_team_created,priority:1" json:"team_id"`
	ActorID   string    `gorm:"column:actor_id;size:64;not null"     json:"actor_id"`
	Kind      string    `gorm:"column:kind;size:64;not null"         json:"kind"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_team_activities_team_created,priority:2" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Activity) TableName() string {
	return "team_activities"
}

// ActiveMembership is the registry row that holds a user's single active
// membership for an event.
type ActiveMembership struct {
	EventID   string    `gorm:"primaryKey;column:event_id;size:64"`
	UserID    string    `gorm:"primaryKey;column:user_id;size:64"`
	TeamID    string    `gorm:"column:team_id;size:64;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM.
func (ActiveMembership) TableName() string {
	return "team_active_memberships"
}

// NormalizeSkill returns the comparison form of a skill.
func NormalizeSkill(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// SortMembers orders members by join time, then id.
func SortMembers(members []Member) {
	slices.SortStableFunc(members, func(a, b Member) int {
		if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
