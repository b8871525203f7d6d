// Package repository provides data access layer for the team module.
package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/teammatch/internal/database/dberr"
	teamModel "github.com/festy23/teammatch/internal/team/model"
)

// saveColumns are the team columns a mutation may change. Zero values are written too.
var saveColumns = []string{
	"description", "leader_id", "capacity_min", "capacity_max", "status", "health_score",
	"is_public", "allow_direct_join", "communication_channel", "roadmap", "last_activity_at",
	"version", "updated_at",
}

// Repository defines the interface for team data access operations.
type Repository interface {
	// Create inserts a team and its required skills.
	Create(ctx context.Context, team *teamModel.Team) error

	// GetByID finds a team and loads its members and required skills.
	GetByID(ctx context.Context, id string) (*teamModel.Team, error)

	// List returns a page of teams matching filter, newest first.
	List(ctx context.Context, filter teamModel.ListFilter, offset, limit int) ([]teamModel.Team, int64, error)

	// ListByUser returns every team userID has ever been a member of.
	ListByUser(ctx context.Context, userID string) ([]teamModel.Team, error)

	// ListActiveIDs returns the ids of all teams that are not disbanded.
	ListActiveIDs(ctx context.Context) ([]string, error)

	// Save writes the team row if its stored version equals expectedVersion,
	// then replaces its required skills. On success team.Version is advanced;
	// otherwise ErrVersionConflict is returned.
	Save(ctx context.Context, team *teamModel.Team, expectedVersion int64) error

	// InsertMember adds a membership row.
	InsertMember(ctx context.Context, member *teamModel.Member) error

	// UpdateMember persists a membership row's role, status and leave time.
	UpdateMember(ctx context.Context, member *teamModel.Member) error

	// ClaimMembership registers userID's active membership for eventID.
	// It fails with ErrAlreadyInTeam when one is already registered.
	ClaimMembership(ctx context.Context, eventID, userID, teamID string) error

	// ReleaseMembership removes userID's registry row for eventID.
	ReleaseMembership(ctx context.Context, eventID, userID string) error

	// ActiveTeamID returns the team holding userID's active membership for eventID, or "".
	ActiveTeamID(ctx context.Context, userID, eventID string) (string, error)

	// ActiveUserIDs returns those of userIDs that hold an active membership for eventID.
	ActiveUserIDs(ctx context.Context, eventID string, userIDs []string) ([]string, error)

	// AddActivity appends an activity log entry.
	AddActivity(ctx context.Context, activity *teamModel.Activity) error

	// CountActivitySince counts activity entries of teamID created at or after since.
	CountActivitySince(ctx context.Context, teamID string, since time.Time) (int, error)

	// ListActivity returns the most recent activity entries of teamID.
	ListActivity(ctx context.Context, teamID string, limit int) ([]teamModel.Activity, error)
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new team repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

func (r *repository) Create(ctx context.Context, team *teamModel.Team) error {
	err := r.db.WithContext(ctx).Create(team).Error
	if err != nil {
		if dberr.IsDuplicate(err) {
			return teamModel.ErrTeamNameTaken
		}
		return err
	}
	return r.replaceRequiredSkills(ctx, team)
}

func (r *repository) GetByID(ctx context.Context, id string) (*teamModel.Team, error) {
	var team teamModel.Team
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, teamModel.ErrTeamNotFound
		}
		return nil, err
	}

	teams := []teamModel.Team{team}
	if err := r.loadDetails(ctx, teams); err != nil {
		return nil, err
	}
	return &teams[0], nil
}

func (r *repository) List(
	ctx context.Context,
	filter teamModel.ListFilter,
	offset, limit int,
) ([]teamModel.Team, int64, error) {
	query := r.db.WithContext(ctx).Model(&teamModel.Team{})
	if filter.EventID != "" {
		query = query.Where("event_id = ?", filter.EventID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var teams []teamModel.Team
	if err := query.Order("created_at DESC, id ASC").Offset(offset).Limit(limit).Find(&teams).Error; err != nil {
		return nil, 0, err
	}
	if err := r.loadDetails(ctx, teams); err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]teamModel.Team, error) {
	var teams []teamModel.Team
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&teamModel.Member{}).Select("team_id").Where("user_id = ?", userID)).
		Order("created_at DESC, id ASC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	if err := r.loadDetails(ctx, teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *repository) ListActiveIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&teamModel.Team{}).
		Where("status <> ?", teamModel.StatusDisbanded).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) Save(ctx context.Context, team *teamModel.Team, expectedVersion int64) error {
	updated := *team
	updated.Version = expectedVersion + 1

	result := r.db.WithContext(ctx).
		Model(&teamModel.Team{}).
		Where("id = ? AND version = ?", team.ID, expectedVersion).
		Select(saveColumns).
		Updates(&updated)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return teamModel.ErrVersionConflict
	}
	team.Version = updated.Version
	team.UpdatedAt = updated.UpdatedAt
	return r.replaceRequiredSkills(ctx, team)
}

func (r *repository) replaceRequiredSkills(ctx context.Context, team *teamModel.Team) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("team_id = ?", team.ID).Delete(&teamModel.RequiredSkill{}).Error; err != nil {
		return err
	}
	if len(team.RequiredSkills) == 0 {
		return nil
	}
	for i := range team.RequiredSkills {
		team.RequiredSkills[i].TeamID = team.ID
	}
	return db.Create(&team.RequiredSkills).Error
}

func (r *repository) InsertMember(ctx context.Context, member *teamModel.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repository) UpdateMember(ctx context.Context, member *teamModel.Member) error {
	return r.db.WithContext(ctx).
		Model(&teamModel.Member{}).
		Where("id = ?", member.ID).
		Updates(map[string]interface{}{
			"role":    member.Role,
			"status":  member.Status,
			"left_at": member.LeftAt,
		}).Error
}

func (r *repository) ClaimMembership(ctx context.Context, eventID, userID, teamID string) error {
	err := r.db.WithContext(ctx).Create(&teamModel.ActiveMembership{
		EventID: eventID,
		UserID:  userID,
		TeamID:  teamID,
	}).Error
	if err != nil && dberr.IsDuplicate(err) {
		return teamModel.ErrAlreadyInTeam
	}
	return err
}

func (r *repository) ReleaseMembership(ctx context.Context, eventID, userID string) error {
	return r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&teamModel.ActiveMembership{}).Error
}

func (r *repository) ActiveTeamID(ctx context.Context, userID, eventID string) (string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&teamModel.ActiveMembership{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Limit(1).
		Pluck("team_id", &ids).Error
	if err != nil || len(ids) == 0 {
		return "", err
	}
	return ids[0], nil
}

func (r *repository) ActiveUserIDs(ctx context.Context, eventID string, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&teamModel.ActiveMembership{}).
		Where("event_id = ? AND user_id IN ?", eventID, userIDs).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *repository) AddActivity(ctx context.Context, activity *teamModel.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *repository) CountActivitySince(ctx context.Context, teamID string, since time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&teamModel.Activity{}).
		Where("team_id = ? AND created_at >= ?", teamID, since).
		Count(&count).Error
	return int(count), err
}

func (r *repository) ListActivity(ctx context.Context, teamID string, limit int) ([]teamModel.Activity, error) {
	var activities []teamModel.Activity
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

// loadDetails attaches members and required skills to teams in two queries.
func (r *repository) loadDetails(ctx context.Context, teams []teamModel.Team) error {
	if len(teams) == 0 {
		return nil
	}
	ids := make([]string, len(teams))
	index := make(map[string]int, len(teams))
	for i := range teams {
		ids[i] = teams[i].ID
		index[teams[i].ID] = i
		teams[i].Members = []teamModel.Member{}
		teams[i].RequiredSkills = []teamModel.RequiredSkill{}
	}

	var members []teamModel.Member
	if err := r.db.WithContext(ctx).Where("team_id IN ?", ids).Find(&members).Error; err != nil {
		return err
	}
	for _, m := range members {
		t := &teams[index[m.TeamID]]
		t.Members = append(t.Members, m)
	}

	var skills []teamModel.RequiredSkill
	if err := r.db.WithContext(ctx).Where("team_id IN ?", ids).Order("skill").Find(&skills).Error; err != nil {
		return err
	}
	for _, s := range skills {
		t := &teams[index[s.TeamID]]
		t.RequiredSkills = append(t.RequiredSkills, s)
	}

	for i := range teams {
		teamModel.SortMembers(teams[i].Members)
	}
	return nil
}
