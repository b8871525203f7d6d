package model

import (
	"errors"

	"github.com/festy23/teammatch/pkg/apperror"
)

// ErrVersionConflict is returned when a request row changed since it was read.
var ErrVersionConflict = errors.New("request version conflict")

var (
	// ErrRequestNotFound indicates that the requested request does not exist.
	ErrRequestNotFound = apperror.New(apperror.NotFound, "REQUEST_NOT_FOUND", "request not found")

	// ErrInvalidType indicates an unknown request type.
	ErrInvalidType = apperror.New(apperror.Validation, "INVALID_REQUEST_TYPE", "type must be peer_request or team_invite")
	// ErrInvalidTeamField indicates a team id missing from an invite or present on a peer request.
	ErrInvalidTeamField = apperror.New(apperror.Validation, "INVALID_TEAM_ID", "team_id is required for team_invite and forbidden for peer_request")
	// ErrInvalidExtension indicates an expiry extension outside the allowed range.
	ErrInvalidExtension = apperror.New(apperror.Validation, "INVALID_EXTENSION", "extension must be between 1 and 168 hours")
	// ErrInvalidStatus indicates an unknown status filter.
	ErrInvalidStatus = apperror.New(apperror.Validation, "INVALID_STATUS", "unknown request status")

	// ErrSelfRequest indicates a request addressed to its sender.
	ErrSelfRequest = apperror.New(apperror.InvalidOperation, "SELF_REQUEST", "cannot send a request to yourself")
	// ErrTeamEventMismatch indicates an invitation to a team of another event.
	ErrTeamEventMismatch = apperror.New(apperror.InvalidOperation, "TEAM_EVENT_MISMATCH", "team belongs to a different event")
	// ErrRequestExpired indicates a transition on a request past its expiry.
	ErrRequestExpired = apperror.New(apperror.InvalidOperation, "REQUEST_EXPIRED", "request has expired")
	// ErrRequestClosed indicates a transition on a request that is no longer pending.
	ErrRequestClosed = apperror.New(apperror.InvalidOperation, "REQUEST_NOT_PENDING", "request is no longer pending")

	// ErrNotRecipient indicates that only the recipient may perform the operation.
	ErrNotRecipient = apperror.New(apperror.Forbidden, "NOT_RECIPIENT", "only the recipient can respond to this request")
	// ErrNotSender indicates that only the sender may perform the operation.
	ErrNotSender = apperror.New(apperror.Forbidden, "NOT_SENDER", "only the sender can modify this request")
	// ErrNotParticipant indicates that the caller neither sent nor received the request.
	ErrNotParticipant = apperror.New(apperror.Forbidden, "NOT_PARTICIPANT", "request does not involve the caller")

	// ErrDuplicateRequest indicates a live request for the same tuple.
	ErrDuplicateRequest = apperror.New(apperror.Conflict, "DUPLICATE_REQUEST", "a request for this recipient and event is already open")
	// ErrSenderInTeam indicates a peer request from a user who already has a team.
	ErrSenderInTeam = apperror.New(apperror.Conflict, "SENDER_ALREADY_IN_TEAM", "sender already has an active team for this event")
	// ErrRecipientInTeam indicates an accept by a user who already has a team.
	ErrRecipientInTeam = apperror.New(apperror.Conflict, "RECIPIENT_ALREADY_IN_TEAM", "recipient already has an active team for this event")
	// ErrConcurrentModification is reported when version retries are exhausted.
	ErrConcurrentModification = apperror.New(apperror.Conflict, "CONCURRENT_MODIFICATION", "request was modified concurrently")

	// ErrProfileRequired indicates that the sender or recipient has no profile.
	ErrProfileRequired = apperror.New(apperror.PreconditionFailed, "PROFILE_REQUIRED", "both participants need a profile")
)
