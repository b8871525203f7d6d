package model

import (
	"math"
	"time"
)

// CollaborationWindow is how far back activity counts toward collaboration health.
const CollaborationWindow = 7 * 24 * time.Hour

const healthComponentMax = 25.0

// DeriveStatus computes a team status from its previous status and active count.
func DeriveStatus(current Status, active, capacityMax int) Status {
	switch {
	case current == StatusDisbanded:
		return StatusDisbanded
	case active == 0:
		return StatusDisbanded
	case active >= capacityMax:
		return StatusComplete
	case current == StatusComplete:
		return StatusRecruiting
	case current == "":
		return StatusForming
	default:
		return current
	}
}

// HealthInputs are the facts the health score is computed from.
type HealthInputs struct {
	LastActivityAt time.Time
	RecentActivity int
	RoadmapDone    int
	RoadmapTotal   int
	HasChannel     bool
	Now            time.Time
}

// HealthScore sums four components of at most 25 points each.
func HealthScore(in HealthInputs) int {
	days := in.Now.Sub(in.LastActivityAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	activity := math.Max(0, healthComponentMax-2*days)
	collaboration := math.Min(healthComponentMax, 2*float64(in.RecentActivity))
	progress := healthComponentMax * float64(in.RoadmapDone) / float64(max(1, in.RoadmapTotal))
	communication := 10.0
	if in.HasChannel {
		communication = healthComponentMax
	}

	score := math.Round(activity + collaboration + progress + communication)
	return int(math.Max(0, math.Min(100, score)))
}

// Recompute refreshes every derived field of t: required skill fulfillment,
// status and health. memberSkills maps user ids to normalized skills.
func Recompute(t *Team, memberSkills map[string][]string, recentActivity int, now time.Time) {
	active := t.ActiveUserIDs()

	for i := range t.RequiredSkills {
		rs := &t.RequiredSkills[i]
		want := NormalizeSkill(rs.Skill)
		have := 0
		for _, userID := range active {
			for _, s := range memberSkills[userID] {
				if s == want {
					have++
					break
				}
			}
		}
		rs.Fulfilled = min(rs.Count, have)
	}

	t.Status = DeriveStatus(t.Status, len(active), t.CapacityMax)

	done := 0
	for _, item := range t.Roadmap {
		if item.Done {
			done++
		}
	}
	t.HealthScore = HealthScore(HealthInputs{
		LastActivityAt: t.LastActivityAt,
		RecentActivity: recentActivity,
		RoadmapDone:    done,
		RoadmapTotal:   len(t.Roadmap),
		HasChannel:     t.CommunicationChannel != "",
		Now:            now,
	})
}
