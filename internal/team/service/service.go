// Package service implements the team membership ledger, the only writer of
// team composition.
//
// Every mutation loads the team inside a transaction, checks permissions with
// model.CanPerform, applies the change, recomputes derived fields with
// model.Recompute and persists with a version-checked update. A version
// conflict retries the whole unit.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/teammatch/internal/cache"
	eventRepository "github.com/festy23/teammatch/internal/event/repository"
	"github.com/festy23/teammatch/internal/metrics"
	profileRepository "github.com/festy23/teammatch/internal/profile/repository"
	teamModel "github.com/festy23/teammatch/internal/team/model"
	"github.com/festy23/teammatch/internal/team/repository"
	"github.com/festy23/teammatch/pkg/apperror"
	"github.com/festy23/teammatch/pkg/retry"
)

const (
	defaultCapacityMin = 1
	minCapacityMax     = 2
	maxCapacityMax     = 10

	activityCreated       = "team_created"
	activityMemberAdded   = "member_added"
	activityMemberLeft    = "member_left"
	activityMemberRemoved = "member_removed"
	activityLeaderChanged = "leader_changed"
	activityUpdated       = "team_updated"
	activityDisbanded     = "team_disbanded"
)

// errUnchanged aborts a mutation that has nothing to write.
var errUnchanged = errors.New("team unchanged")

// Service defines the ledger operations.
type Service interface {
	// CreateTeam creates a team in an event with leaderID as its sole active member.
	CreateTeam(ctx context.Context, leaderID string, req *teamModel.CreateTeamRequest) (*teamModel.Team, error)

	// AddMember adds userID to the team. Callers are responsible for authorization.
	AddMember(ctx context.Context, teamID, userID string, role teamModel.Role) (*teamModel.Team, error)

	// AddMemberAs adds userID to the team on behalf of actorID, who must be the leader.
	AddMemberAs(ctx context.Context, teamID, actorID, userID string, role teamModel.Role) (*teamModel.Team, error)

	// RemoveMember ends userID's active membership.
	RemoveMember(
		ctx context.Context,
		teamID, actorID, userID string,
		reason teamModel.RemoveReason,
	) (*teamModel.Team, error)

	// TransferLeadership hands leadership from currentLeaderID to newLeaderID.
	TransferLeadership(ctx context.Context, teamID, currentLeaderID, newLeaderID string) (*teamModel.Team, error)

	// GetTeam returns a team with its members and required skills.
	GetTeam(ctx context.Context, teamID string) (*teamModel.Team, error)

	// ListTeams returns a page of teams.
	ListTeams(ctx context.Context, filter teamModel.ListFilter, page, limit int) ([]teamModel.Team, int64, error)

	// ListUserTeams returns every team of userID, active memberships first.
	ListUserTeams(ctx context.Context, userID string) ([]teamModel.Team, error)

	// UpdateTeam applies a leader's patch to the team's settings.
	UpdateTeam(ctx context.Context, teamID, actorID string, req *teamModel.UpdateTeamRequest) (*teamModel.Team, error)

	// DisbandTeam ends every active membership and marks the team disbanded.
	DisbandTeam(ctx context.Context, teamID, actorID string) (*teamModel.Team, error)

	// JoinTeam adds userID to a public team that accepts direct joins.
	JoinTeam(ctx context.Context, teamID, userID string) (*teamModel.Team, error)

	// LeaveTeam ends userID's own membership.
	LeaveTeam(ctx context.Context, teamID, userID string) (*teamModel.Team, error)

	// RecordActivity logs activity by an active member and refreshes health.
	RecordActivity(ctx context.Context, teamID, actorID, kind string) (*teamModel.Team, error)

	// ListActivity returns the most recent activity entries of a team.
	ListActivity(ctx context.Context, teamID string, limit int) ([]teamModel.Activity, error)

	// RefreshHealth recomputes derived fields to account for time decay.
	RefreshHealth(ctx context.Context, teamID string) (*teamModel.Team, error)

	// RefreshAllHealth refreshes every team that is not disbanded and returns
	// how many were refreshed.
	RefreshAllHealth(ctx context.Context) (int, error)

	// ActiveTeamID returns the team holding userID's active membership for eventID, or "".
	ActiveTeamID(ctx context.Context, userID, eventID string) (string, error)

	// ActiveUserIDs returns those of userIDs holding an active membership for eventID.
	ActiveUserIDs(ctx context.Context, eventID string, userIDs []string) ([]string, error)

	// WithTx returns a ledger that runs inside tx. It does not retry and
	// leaves cache invalidation to the caller.
	WithTx(tx *gorm.DB) Service
}

type service struct {
	repo     repository.Repository
	db       *gorm.DB
	cache    cache.Cache
	logger   *zap.SugaredLogger
	retryCfg retry.Config
	now      func() time.Time
	bound    bool
}

// New creates a new ledger instance.
func New(repo repository.Repository, db *gorm.DB, c cache.Cache, logger *zap.SugaredLogger) Service {
	s := &service{
		repo:   repo,
		db:     db,
		cache:  c,
		logger: logger,
		now:    time.Now,
	}
	s.retryCfg = retry.OptimisticConfig(isVersionConflict)
	s.retryCfg.OnRetry = func(attempt int, err error) {
		metrics.LedgerRetries.Inc()
		s.logger.Debugw("Retrying team mutation", "attempt", attempt, "error", err)
	}
	return s
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{
		repo:     repository.New(tx, s.logger),
		db:       tx,
		cache:    s.cache,
		logger:   s.logger,
		retryCfg: s.retryCfg,
		now:      s.now,
		bound:    true,
	}
}

func isVersionConflict(err error) bool {
	return errors.Is(err, teamModel.ErrVersionConflict)
}

// mutation is the state of one ledger write inside its transaction.
type mutation struct {
	tx      *gorm.DB
	repo    repository.Repository
	team    *teamModel.Team
	actorID string
	kind    string
	touched []string
	// refreshOnly skips the write when no derived field changed.
	refreshOnly bool
}

func (s *service) CreateTeam(
	ctx context.Context,
	leaderID string,
	req *teamModel.CreateTeamRequest,
) (*teamModel.Team, error) {
	var team *teamModel.Team
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		team, err = s.createTeam(ctx, tx, leaderID, req)
		return err
	})
	if err != nil {
		return nil, s.fail(err)
	}

	s.invalidate(ctx, leaderID)
	s.logger.Infow("Team created", "team_id", team.ID, "event_id", team.EventID, "leader_id", leaderID)
	return team, nil
}

func (s *service) createTeam(
	ctx context.Context,
	tx *gorm.DB,
	leaderID string,
	req *teamModel.CreateTeamRequest,
) (*teamModel.Team, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, teamModel.ErrInvalidTeamName
	}
	skills, err := buildRequiredSkills(req.RequiredSkills)
	if err != nil {
		return nil, err
	}

	event, err := eventRepository.New(tx, s.logger).GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	capMin := req.CapacityMin
	if capMin == 0 {
		capMin = defaultCapacityMin
	}
	if err := validateCapacity(capMin, req.CapacityMax, event.MaxTeamSize); err != nil {
		return nil, err
	}

	repo := repository.New(tx, s.logger)
	if teamID, err := repo.ActiveTeamID(ctx, leaderID, event.ID); err != nil {
		return nil, err
	} else if teamID != "" {
		return nil, fmt.Errorf("%w: member of team %s", teamModel.ErrAlreadyInTeam, teamID)
	}

	now := s.now().UTC()
	team := &teamModel.Team{
		ID:                   uuid.NewString(),
		Name:                 name,
		Description:          req.Description,
		EventID:              event.ID,
		LeaderID:             leaderID,
		CapacityMin:          capMin,
		CapacityMax:          req.CapacityMax,
		IsPublic:             req.IsPublic,
		AllowDirectJoin:      req.AllowDirectJoin,
		CommunicationChannel: strings.TrimSpace(req.CommunicationChannel),
		Roadmap:              []teamModel.RoadmapItem{},
		LastActivityAt:       now,
		Version:              1,
		RequiredSkills:       skills,
	}
	leader := teamModel.Member{
		ID:       uuid.NewString(),
		TeamID:   team.ID,
		UserID:   leaderID,
		Role:     teamModel.RoleLeader,
		Status:   teamModel.MemberActive,
		JoinedAt: now,
	}
	team.Members = []teamModel.Member{leader}

	memberSkills, err := profileRepository.New(tx, s.logger).SkillsByUser(ctx, []string{leaderID})
	if err != nil {
		return nil, err
	}
	teamModel.Recompute(team, memberSkills, 1, now)

	if err := repo.Create(ctx, team); err != nil {
		return nil, err
	}
	if err := repo.InsertMember(ctx, &leader); err != nil {
		return nil, err
	}
	if err := repo.ClaimMembership(ctx, team.EventID, leaderID, team.ID); err != nil {
		return nil, err
	}
	err = repo.AddActivity(ctx, &teamModel.Activity{
		TeamID:    team.ID,
		ActorID:   leaderID,
		Kind:      activityCreated,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (s *service) AddMember(
	ctx context.Context,
	teamID, userID string,
	role teamModel.Role,
) (*teamModel.Team, error) {
	return s.mutate(ctx, teamID, userID, activityMemberAdded, func(ctx context.Context, m *mutation) error {
		return s.addMember(ctx, m, userID, role)
	})
}

func (s *service) AddMemberAs(
	ctx context.Context,
	teamID, actorID, userID string,
	role teamModel.Role,
) (*teamModel.Team, error) {
	return s.mutate(ctx, teamID, actorID, activityMemberAdded, func(ctx context.Context, m *mutation) error {
		if !teamModel.CanPerform(m.team, actorID, teamModel.ActionAddMember) {
			return teamModel.ErrNotLeader
		}
		return s.addMember(ctx, m, userID, role)
	})
}

func (s *service) addMember(ctx context.Context, m *mutation, userID string, role teamModel.Role) error {
	t := m.team
	if t.Status == teamModel.StatusDisbanded {
		return teamModel.ErrTeamDisbanded
	}
	switch role {
	case "":
		role = teamModel.RoleMember
	case teamModel.RoleMember:
	case teamModel.RoleLeader:
		return teamModel.ErrLeaderRoleNotAssignable
	default:
		return teamModel.ErrInvalidRole
	}
	if t.ActiveMember(userID) != nil {
		return teamModel.ErrAlreadyMember
	}
	if active := t.ActiveCount(); active >= t.CapacityMax {
		return fmt.Errorf("%w: %d/%d members", teamModel.ErrTeamFull, active, t.CapacityMax)
	}
	if other, err := m.repo.ActiveTeamID(ctx, userID, t.EventID); err != nil {
		return err
	} else if other != "" {
		return fmt.Errorf("%w: member of team %s", teamModel.ErrAlreadyInTeam, other)
	}

	member := teamModel.Member{
		ID:       uuid.NewString(),
		TeamID:   t.ID,
		UserID:   userID,
		Role:     role,
		Status:   teamModel.MemberActive,
		JoinedAt: s.now().UTC(),
	}
	if err := m.repo.InsertMember(ctx, &member); err != nil {
		return err
	}
	if err := m.repo.ClaimMembership(ctx, t.EventID, userID, t.ID); err != nil {
		return err
	}
	t.Members = append(t.Members, member)
	m.touched = append(m.touched, userID)
	return nil
}

func (s *service) RemoveMember(
	ctx context.Context,
	teamID, actorID, userID string,
	reason teamModel.RemoveReason,
) (*teamModel.Team, error) {
	kind := activityMemberLeft
	switch reason {
	case teamModel.ReasonLeft:
	case teamModel.ReasonKicked:
		kind = activityMemberRemoved
	default:
		return nil, teamModel.ErrInvalidReason
	}

	return s.mutate(ctx, teamID, actorID, kind, func(ctx context.Context, m *mutation) error {
		t := m.team
		if reason == teamModel.ReasonLeft && actorID != userID {
			return teamModel.ErrNotPermitted
		}
		if reason == teamModel.ReasonKicked && !teamModel.CanPerform(t, actorID, teamModel.ActionKick) {
			return teamModel.ErrNotLeader
		}
		if t.LeaderID == userID {
			return teamModel.ErrLeaderCannotLeave
		}
		member := t.ActiveMember(userID)
		if member == nil {
			return teamModel.ErrNotActiveMember
		}

		leftAt := s.now().UTC()
		member.Status = teamModel.MemberLeft
		if reason == teamModel.ReasonKicked {
			member.Status = teamModel.MemberRemoved
		}
		member.LeftAt = &leftAt
		if err := m.repo.UpdateMember(ctx, member); err != nil {
			return err
		}
		if err := m.repo.ReleaseMembership(ctx, t.EventID, userID); err != nil {
			return err
		}
		m.touched = append(m.touched, userID)
		return nil
	})
}

func (s *service) LeaveTeam(ctx context.Context, teamID, userID string) (*teamModel.Team, error) {
	return s.RemoveMember(ctx, teamID, userID, userID, teamModel.ReasonLeft)
}

func (s *service) TransferLeadership(
	ctx context.Context,
	teamID, currentLeaderID, newLeaderID string,
) (*teamModel.Team, error) {
	return s.mutate(ctx, teamID, currentLeaderID, activityLeaderChanged, func(ctx context.Context, m *mutation) error {
		t := m.team
		if !teamModel.CanPerform(t, currentLeaderID, teamModel.ActionTransfer) {
			return teamModel.ErrNotLeader
		}
		next := t.ActiveMember(newLeaderID)
		if next == nil || newLeaderID == currentLeaderID {
			return teamModel.ErrInvalidNewLeader
		}
		prev := t.ActiveMember(currentLeaderID)

		prev.Role = teamModel.RoleMember
		next.Role = teamModel.RoleLeader
		t.LeaderID = newLeaderID
		if err := m.repo.UpdateMember(ctx, prev); err != nil {
			return err
		}
		return m.repo.UpdateMember(ctx, next)
	})
}

func (s *service) UpdateTeam(
	ctx context.Context,
	teamID, actorID string,
	req *teamModel.UpdateTeamRequest,
) (*teamModel.Team, error) {
	return s.mutate(ctx, teamID, actorID, activityUpdated, func(ctx context.Context, m *mutation) error {
		t := m.team
		if t.Status == teamModel.StatusDisbanded {
			return teamModel.ErrTeamDisbanded
		}
		if !teamModel.CanPerform(t, actorID, teamModel.ActionUpdate) {
			return teamModel.ErrNotLeader
		}

		if req.CapacityMin != nil || req.CapacityMax != nil {
			capMin, capMax := t.CapacityMin, t.CapacityMax
			if req.CapacityMin != nil {
				capMin = *req.CapacityMin
			}
			if req.CapacityMax != nil {
				capMax = *req.CapacityMax
			}
			event, err := eventRepository.New(m.tx, s.logger).GetByID(ctx, t.EventID)
			if err != nil {
				return err
			}
			if err := validateCapacity(capMin, capMax, event.MaxTeamSize); err != nil {
				return err
			}
			if active := t.ActiveCount(); capMax < active {
				return fmt.Errorf("%w: %d active members", teamModel.ErrCapacityBelowMembers, active)
			}
			t.CapacityMin, t.CapacityMax = capMin, capMax
		}
		if req.RequiredSkills != nil {
			skills, err := buildRequiredSkills(*req.RequiredSkills)
			if err != nil {
				return err
			}
			t.RequiredSkills = skills
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.CommunicationChannel != nil {
			t.CommunicationChannel = strings.TrimSpace(*req.CommunicationChannel)
		}
		if req.Roadmap != nil {
			t.Roadmap = *req.Roadmap
		}
		if req.IsPublic != nil {
			t.IsPublic = *req.IsPublic
		}
		if req.AllowDirectJoin != nil {
			t.AllowDirectJoin = *req.AllowDirectJoin
		}
		return nil
	})
}

func (s *service) DisbandTeam(ctx context.Context, teamID, actorID string) (*teamModel.Team, error) {
	return s.mutate(ctx, teamID, actorID, activityDisbanded, func(ctx context.Context, m *mutation) error {
		t := m.team
		if t.Status == teamModel.StatusDisbanded && t.LeaderID == actorID {
			return errUnchanged
		}
		if !teamModel.CanPerform(t, actorID, teamModel.ActionDisband) {
			return teamModel.ErrNotLeader
		}

		leftAt := s.now().UTC()
		for i := range t.Members {
			member := &t.Members[i]
			if member.Status != teamModel.MemberActive {
				continue
			}
			member.Status = teamModel.MemberLeft
			member.LeftAt = &leftAt
			if err := m.repo.UpdateMember(ctx, member); err != nil {
				return err
			}
			if err := m.repo.ReleaseMembership(ctx, t.EventID, member.UserID); err != nil {
				return err
			}
			m.touched = append(m.touched, member.UserID)
		}
		t.Status = teamModel.StatusDisbanded
		return nil
	})
}

func (s *service) JoinTeam(ctx context.Context, teamID, userID string) (*teamModel.Team, error) {
	return s.mutate(ctx, teamID, userID, activityMemberAdded, func(ctx context.Context, m *mutation) error {
		t := m.team
		if t.Status == teamModel.StatusDisbanded {
			return teamModel.ErrTeamDisbanded
		}
		if t.ActiveMember(userID) != nil {
			return teamModel.ErrAlreadyMember
		}
		if !teamModel.CanPerform(t, userID, teamModel.ActionJoin) {
			return teamModel.ErrDirectJoinClosed
		}
		return s.addMember(ctx, m, userID, teamModel.RoleMember)
	})
}

func (s *service) RecordActivity(ctx context.Context, teamID, actorID, kind string) (*teamModel.Team, error) {
	return s.mutate(ctx, teamID, actorID, kind, func(_ context.Context, m *mutation) error {
		if m.team.Status == teamModel.StatusDisbanded {
			return teamModel.ErrTeamDisbanded
		}
		if !teamModel.CanPerform(m.team, actorID, teamModel.ActionRecordActivity) {
			return teamModel.ErrNotPermitted
		}
		return nil
	})
}

func (s *service) RefreshHealth(ctx context.Context, teamID string) (*teamModel.Team, error) {
	return s.mutate(ctx, teamID, "", "", func(_ context.Context, m *mutation) error {
		if m.team.Status == teamModel.StatusDisbanded {
			return errUnchanged
		}
		m.refreshOnly = true
		return nil
	})
}

func (s *service) RefreshAllHealth(ctx context.Context) (int, error) {
	ids, err := s.repo.ListActiveIDs(ctx)
	if err != nil {
		return 0, err
	}

	var errs []error
	refreshed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := s.RefreshHealth(ctx, id); err != nil {
			s.logger.Warnw("Failed to refresh team health", "team_id", id, "error", err)
			errs = append(errs, fmt.Errorf("team %s: %w", id, err))
			continue
		}
		refreshed++
	}
	return refreshed, errors.Join(errs...)
}

func (s *service) GetTeam(ctx context.Context, teamID string) (*teamModel.Team, error) {
	return s.repo.GetByID(ctx, teamID)
}

func (s *service) ListTeams(
	ctx context.Context,
	filter teamModel.ListFilter,
	page, limit int,
) ([]teamModel.Team, int64, error) {
	return s.repo.List(ctx, filter, (page-1)*limit, limit)
}

func (s *service) ListUserTeams(ctx context.Context, userID string) ([]teamModel.Team, error) {
	teams, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(teams, func(a, b teamModel.Team) int {
		aActive, bActive := a.ActiveMember(userID) != nil, b.ActiveMember(userID) != nil
		switch {
		case aActive && !bActive:
			return -1
		case !aActive && bActive:
			return 1
		}
		return 0
	})
	return teams, nil
}

func (s *service) ListActivity(ctx context.Context, teamID string, limit int) ([]teamModel.Activity, error) {
	if _, err := s.repo.GetByID(ctx, teamID); err != nil {
		return nil, err
	}
	return s.repo.ListActivity(ctx, teamID, limit)
}

func (s *service) ActiveTeamID(ctx context.Context, userID, eventID string) (string, error) {
	return s.repo.ActiveTeamID(ctx, userID, eventID)
}

func (s *service) ActiveUserIDs(ctx context.Context, eventID string, userIDs []string) ([]string, error) {
	return s.repo.ActiveUserIDs(ctx, eventID, userIDs)
}

// mutate runs apply against a freshly loaded team and persists the result.
func (s *service) mutate(
	ctx context.Context,
	teamID, actorID, kind string,
	apply func(ctx context.Context, m *mutation) error,
) (*teamModel.Team, error) {
	var (
		result  *teamModel.Team
		touched []string
	)
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		m := &mutation{tx: tx, repo: repository.New(tx, s.logger), actorID: actorID, kind: kind}
		team, err := m.repo.GetByID(ctx, teamID)
		if err != nil {
			return err
		}
		m.team = team
		expected := team.Version

		if err := apply(ctx, m); err != nil {
			if errors.Is(err, errUnchanged) {
				result = team
				return nil
			}
			return err
		}
		if err := s.persist(ctx, m, expected); err != nil {
			return err
		}
		result, touched = m.team, m.touched
		return nil
	})
	if err != nil {
		return nil, s.fail(err)
	}

	s.invalidate(ctx, touched...)
	return result, nil
}

// persist logs the activity, recomputes derived fields and writes the team.
func (s *service) persist(ctx context.Context, m *mutation, expected int64) error {
	now := s.now().UTC()
	t := m.team

	if m.kind != "" {
		t.LastActivityAt = now
		err := m.repo.AddActivity(ctx, &teamModel.Activity{
			TeamID:    t.ID,
			ActorID:   m.actorID,
			Kind:      m.kind,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
	}

	recent, err := m.repo.CountActivitySince(ctx, t.ID, now.Add(-teamModel.CollaborationWindow))
	if err != nil {
		return err
	}
	memberSkills, err := profileRepository.New(m.tx, s.logger).SkillsByUser(ctx, t.ActiveUserIDs())
	if err != nil {
		return err
	}

	prevStatus, prevHealth := t.Status, t.HealthScore
	teamModel.Recompute(t, memberSkills, recent, now)
	if m.refreshOnly && t.Status == prevStatus && t.HealthScore == prevHealth {
		return nil
	}
	return m.repo.Save(ctx, t, expected)
}

// inTx runs fn in a transaction, retrying on version conflicts unless the
// ledger is bound to an outer transaction.
func (s *service) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	run := func() error {
		return s.db.WithContext(ctx).Transaction(fn)
	}
	if s.bound {
		return run()
	}
	return retry.Do(ctx, s.retryCfg, run)
}

// fail counts conflicts and maps exhausted version retries to a domain error.
func (s *service) fail(err error) error {
	if isVersionConflict(err) && !s.bound {
		err = teamModel.ErrConcurrentModification
	}
	if apperror.IsKind(err, apperror.Conflict) {
		metrics.LedgerConflicts.WithLabelValues(apperror.CodeOf(err)).Inc()
	}
	return err
}

func (s *service) invalidate(ctx context.Context, userIDs ...string) {
	if s.bound {
		return
	}
	cache.InvalidateUsers(ctx, s.cache, userIDs...)
}

func validateCapacity(capMin, capMax, eventMax int) error {
	if capMax < minCapacityMax || capMax > maxCapacityMax || capMin < 1 || capMin > capMax {
		return fmt.Errorf("%w: got min %d, max %d", teamModel.ErrInvalidCapacity, capMin, capMax)
	}
	if eventMax > 0 && capMax > eventMax {
		return fmt.Errorf("%w: max %d exceeds the event limit of %d", teamModel.ErrInvalidCapacity, capMax, eventMax)
	}
	return nil
}

func buildRequiredSkills(inputs []teamModel.RequiredSkillInput) ([]teamModel.RequiredSkill, error) {
	skills := make([]teamModel.RequiredSkill, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.Skill)
		if name == "" {
			return nil, teamModel.ErrInvalidRequiredSkill
		}
		key := teamModel.NormalizeSkill(name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %s listed twice", teamModel.ErrInvalidRequiredSkill, name)
		}
		seen[key] = struct{}{}

		priority := in.Priority
		if priority == "" {
			priority = teamModel.PriorityMedium
		}
		if !priority.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", teamModel.ErrInvalidRequiredSkill, priority)
		}
		count := in.Count
		if count == 0 {
			count = 1
		}
		if count < 1 {
			return nil, fmt.Errorf("%w: count must be at least 1", teamModel.ErrInvalidRequiredSkill)
		}
		skills = append(skills, teamModel.RequiredSkill{Skill: name, Priority: priority, Count: count})
	}
	return skills, nil
}
