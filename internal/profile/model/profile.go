// Package model provides domain models and DTOs for the profile module.
package model

import (
	"strings"
	"time"
)

// Experience is one entry of a participant's work history.
type Experience struct {
	Title         string  `json:"title"`
	DurationYears float64 `json:"duration_years"`
}

// Profile is a participant's matching profile.
type Profile struct {
	UserID          string       `gorm:"primaryKey;column:user_id;size:64"          json:"user_id"`
	DisplayName     string       `gorm:"column:display_name;size:255"              json:"display_name"`
	Bio             string       `gorm:"column:bio;type:text"                      json:"bio,omitempty"`
	Skills          []string     `gorm:"column:skills;type:text;serializer:json"             json:"skills"`
	Experience      []Experience `gorm:"column:experience;type:text;serializer:json"         json:"experience"`
	City            string       `gorm:"column:city;size:128"                      json:"city,omitempty"`
	Country         string       `gorm:"column:country;size:128"                   json:"country,omitempty"`
	Technologies    []string     `gorm:"column:technologies;type:text;serializer:json"       json:"technologies"`
	Embedding       []float32    `gorm:"column:embedding;type:text;serializer:json"          json:"embedding,omitempty"`
	CompletionScore int          `gorm:"column:completion_score;not null;default:0" json:"completion_score"`
	LastActiveAt    time.Time    `gorm:"column:last_active_at;not null"            json:"last_active_at"`
	UpdatedAt       time.Time    `gorm:"column:updated_at;autoUpdateTime"          json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Profile) TableName() string {
	return "profiles"
}

// ProfileSkill indexes one lower-cased skill of a profile.
type ProfileSkill struct {
	UserID string `gorm:"primaryKey;column:user_id;size:64"`
	Skill  string `gorm:"primaryKey;column:skill;size:128;index"`
}

// TableName specifies the table name for GORM.
func (ProfileSkill) TableName() string {
	return "profile_skills"
}

// TotalExperienceYears sums the duration of every experience entry.
func (p *Profile) TotalExperienceYears() float64 {
	var total float64
	for _, e := range p.Experience {
		total += e.DurationYears
	}
	return total
}

// HasSkill reports whether the profile lists skill, ignoring case.
func (p *Profile) HasSkill(skill string) bool {
	skill = NormalizeSkill(skill)
	for _, s := range p.Skills {
		if NormalizeSkill(s) == skill {
			return true
		}
	}
	return false
}

// NormalizeSkill returns the comparison form of a skill.
func NormalizeSkill(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// CompletionScore rates how complete a profile is, from 0 to 100.
func CompletionScore(p *Profile) int {
	score := 0
	if strings.TrimSpace(p.Bio) != "" {
		score += 15
	}
	if p.City != "" || p.Country != "" {
		score += 15
	}
	if len(p.Experience) > 0 {
		score += 20
	}
	score += min(30, 6*len(p.Skills))
	if len(p.Embedding) > 0 {
		score += 10
	}
	if len(p.Technologies) > 0 {
		score += 10
	}
	return score
}

// UpsertProfileRequest is the body of PUT /profiles/me.
type UpsertProfileRequest struct {
	DisplayName  string       `json:"display_name" binding:"required,max=255"`
	Bio          string       `json:"bio"`
	Skills       []string     `json:"skills"`
	Experience   []Experience `json:"experience"`
	City         string       `json:"city"`
	Country      string       `json:"country"`
	Technologies []string     `json:"technologies"`
	Embedding    []float32    `json:"embedding"`
}
