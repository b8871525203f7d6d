package model

import (
	"errors"

	"github.com/festy23/teammatch/pkg/apperror"
)

// ErrVersionConflict is returned when a team row changed since it was read.
// Ledger mutations retry on it.
var ErrVersionConflict = errors.New("team version conflict")

var (
	// ErrTeamNotFound indicates that the requested team does not exist.
	ErrTeamNotFound = apperror.New(apperror.NotFound, "TEAM_NOT_FOUND", "team not found")
	// ErrTeamNameTaken indicates that a team with the given name already exists.
	ErrTeamNameTaken = apperror.New(apperror.Conflict, "TEAM_NAME_TAKEN", "team name already taken")
	// ErrAlreadyInTeam indicates that the user already has an active team for the event.
	ErrAlreadyInTeam = apperror.New(apperror.Conflict, "ALREADY_IN_TEAM", "user already has an active team for this event")
	// ErrAlreadyMember indicates that the user is already an active member of the team.
	ErrAlreadyMember = apperror.New(apperror.Conflict, "ALREADY_MEMBER", "user is already an active member of the team")
	// ErrTeamFull indicates that the team is at capacity.
	ErrTeamFull = apperror.New(apperror.Conflict, "TEAM_FULL", "team is at capacity")
	// ErrConcurrentModification is reported when version retries are exhausted.
	ErrConcurrentModification = apperror.New(apperror.Conflict, "CONCURRENT_MODIFICATION", "team was modified concurrently")

	// ErrTeamDisbanded indicates an operation on a disbanded team.
	ErrTeamDisbanded = apperror.New(apperror.InvalidOperation, "TEAM_DISBANDED", "team is disbanded")
	// ErrLeaderRoleNotAssignable indicates an attempt to add a member as leader.
	ErrLeaderRoleNotAssignable = apperror.New(apperror.InvalidOperation, "LEADER_ROLE_NOT_ASSIGNABLE", "leadership can only be gained by transfer")
	// ErrLeaderCannotLeave indicates an attempt to remove the current leader.
	ErrLeaderCannotLeave = apperror.New(apperror.InvalidOperation, "LEADER_CANNOT_LEAVE", "leader must transfer leadership first")
	// ErrNotActiveMember indicates that the user is not an active member.
	ErrNotActiveMember = apperror.New(apperror.InvalidOperation, "NOT_ACTIVE_MEMBER", "user is not an active member of the team")
	// ErrInvalidNewLeader indicates that the transfer target is not an eligible member.
	ErrInvalidNewLeader = apperror.New(apperror.InvalidOperation, "INVALID_NEW_LEADER", "new leader must be another active member")
	// ErrCapacityBelowMembers indicates a capacity below the current member count.
	ErrCapacityBelowMembers = apperror.New(apperror.InvalidOperation, "CAPACITY_BELOW_MEMBERS", "capacity is below the current member count")

	// ErrNotLeader indicates that the caller is not the team leader.
	ErrNotLeader = apperror.New(apperror.Forbidden, "NOT_TEAM_LEADER", "only the team leader can do this")
	// ErrNotPermitted indicates that the caller may not act on this membership.
	ErrNotPermitted = apperror.New(apperror.Forbidden, "NOT_PERMITTED", "not permitted")
	// ErrDirectJoinClosed indicates that the team does not accept direct joins.
	ErrDirectJoinClosed = apperror.New(apperror.Forbidden, "DIRECT_JOIN_CLOSED", "team does not accept direct joins")

	// ErrInvalidTeamName indicates an empty team name.
	ErrInvalidTeamName = apperror.New(apperror.Validation, "INVALID_TEAM_NAME", "team name is required")
	// ErrInvalidCapacity indicates capacity bounds outside the allowed range.
	ErrInvalidCapacity = apperror.New(apperror.Validation, "INVALID_CAPACITY", "capacity must satisfy 1 <= min <= max and 2 <= max <= 10")
	// ErrInvalidRequiredSkill indicates a malformed required skill.
	ErrInvalidRequiredSkill = apperror.New(apperror.Validation, "INVALID_REQUIRED_SKILL", "required skill is invalid")
	// ErrInvalidReason indicates an unknown removal reason.
	ErrInvalidReason = apperror.New(apperror.Validation, "INVALID_REASON", "reason must be left or kicked")
	// ErrInvalidRole indicates an unknown member role.
	ErrInvalidRole = apperror.New(apperror.Validation, "INVALID_ROLE", "role must be leader or member")
)
