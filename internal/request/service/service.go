// Package service implements the request broker: the peer request and team
// invitation state machine that drives the team ledger on acceptance.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/teammatch/internal/cache"
	"github.com/festy23/teammatch/internal/config"
	eventRepository "github.com/festy23/teammatch/internal/event/repository"
	"github.com/festy23/teammatch/internal/matching/scorer"
	"github.com/festy23/teammatch/internal/metrics"
	"github.com/festy23/teammatch/internal/notification"
	profileModel "github.com/festy23/teammatch/internal/profile/model"
	profileRepository "github.com/festy23/teammatch/internal/profile/repository"
	requestModel "github.com/festy23/teammatch/internal/request/model"
	"github.com/festy23/teammatch/internal/request/repository"
	teamModel "github.com/festy23/teammatch/internal/team/model"
	teamService "github.com/festy23/teammatch/internal/team/service"
	"github.com/festy23/teammatch/pkg/retry"
)

const (
	minExtension = time.Hour
	maxExtension = 7 * 24 * time.Hour

	peerTeamCapacityMin = 2
	cascadeMessage      = "another request was accepted"
)

// errUnchanged ends a transition that has nothing to write.
var errUnchanged = errors.New("request unchanged")

// Service defines the broker operations.
type Service interface {
	// CreateRequest validates and stores a pending request from fromUserID.
	CreateRequest(ctx context.Context, fromUserID string, req *requestModel.CreateRequestRequest) (*requestModel.Request, error)

	// AcceptRequest accepts a pending request on behalf of its recipient,
	// applies the membership change and rejects competing requests.
	AcceptRequest(ctx context.Context, requestID, actorID, message string) (*requestModel.AcceptResult, error)

	// RejectRequest rejects a pending request on behalf of its recipient.
	RejectRequest(ctx context.Context, requestID, actorID, message string) (*requestModel.Request, error)

	// CancelRequest withdraws a pending request on behalf of its sender.
	CancelRequest(ctx context.Context, requestID, actorID string) (*requestModel.Request, error)

	// GetRequest returns a request to one of its participants.
	GetRequest(ctx context.Context, requestID, viewerID string) (*requestModel.Request, error)

	// ListReceived returns a page of requests addressed to userID.
	ListReceived(
		ctx context.Context,
		userID string,
		status requestModel.Status,
		page, limit int,
	) ([]requestModel.Request, int64, error)

	// ListSent returns a page of requests sent by userID.
	ListSent(
		ctx context.Context,
		userID string,
		status requestModel.Status,
		page, limit int,
	) ([]requestModel.Request, int64, error)

	// MarkViewed records the first time the recipient opened the request.
	MarkViewed(ctx context.Context, requestID, actorID string) (*requestModel.Request, error)

	// ExtendExpiry moves the expiry of a live pending request to now + extension.
	ExtendExpiry(ctx context.Context, requestID, actorID string, extension time.Duration) (*requestModel.Request, error)

	// ExpireStale persists the expiry of every overdue pending request.
	ExpireStale(ctx context.Context) (int64, error)
}

type service struct {
	repo      repository.Repository
	db        *gorm.DB
	ledger    teamService.Service
	scorer    *scorer.Scorer
	cache     cache.Cache
	publisher notification.Publisher
	cfg       config.RequestsConfig
	logger    *zap.SugaredLogger
	retryCfg  retry.Config
	now       func() time.Time
}

// New creates a new broker instance.
func New(
	repo repository.Repository,
	db *gorm.DB,
	ledger teamService.Service,
	sc *scorer.Scorer,
	c cache.Cache,
	publisher notification.Publisher,
	cfg config.RequestsConfig,
	logger *zap.SugaredLogger,
) Service {
	s := &service{
		repo:      repo,
		db:        db,
		ledger:    ledger,
		scorer:    sc,
		cache:     c,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
	s.retryCfg = retry.OptimisticConfig(isVersionConflict)
	s.retryCfg.OnRetry = func(attempt int, err error) {
		s.logger.Debugw("Retrying request transition", "attempt", attempt, "error", err)
	}
	return s
}

func isVersionConflict(err error) bool {
	return errors.Is(err, requestModel.ErrVersionConflict) || errors.Is(err, teamModel.ErrVersionConflict)
}

func (s *service) CreateRequest(
	ctx context.Context,
	fromUserID string,
	in *requestModel.CreateRequestRequest,
) (*requestModel.Request, error) {
	if fromUserID == in.ToUserID {
		return nil, requestModel.ErrSelfRequest
	}
	switch in.Type {
	case requestModel.TypeTeamInvite:
		if in.TeamID == "" {
			return nil, requestModel.ErrInvalidTeamField
		}
	case requestModel.TypePeerRequest:
		if in.TeamID != "" {
			return nil, requestModel.ErrInvalidTeamField
		}
	default:
		return nil, fmt.Errorf("%w: got %q", requestModel.ErrInvalidType, in.Type)
	}

	event, err := eventRepository.New(s.db, s.logger).GetByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}

	if in.Type == requestModel.TypeTeamInvite {
		if err := s.checkInvite(ctx, fromUserID, in); err != nil {
			return nil, err
		}
	} else {
		teamID, err := s.ledger.ActiveTeamID(ctx, fromUserID, event.ID)
		if err != nil {
			return nil, err
		}
		if teamID != "" {
			return nil, fmt.Errorf("%w: member of team %s", requestModel.ErrSenderInTeam, teamID)
		}
	}

	from, to, err := s.loadProfiles(ctx, fromUserID, in.ToUserID)
	if err != nil {
		return nil, err
	}
	score := s.scorer.Score(ctx, from, to, event.Technologies)

	now := s.now().UTC()
	key := requestModel.ActiveKeyFor(fromUserID, in.ToUserID, event.ID, in.TeamID)
	req := &requestModel.Request{
		ID:         uuid.NewString(),
		FromUserID: fromUserID,
		ToUserID:   in.ToUserID,
		EventID:    event.ID,
		TeamID:     in.TeamID,
		Type:       in.Type,
		Status:     requestModel.StatusPending,
		Subject:    in.Subject,
		Message:    in.Message,
		MatchScore: score.Score,
		Breakdown:  score.Breakdown,
		ActiveKey:  &key,
		ExpiresAt:  now.Add(s.cfg.TTL),
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	released, err := s.endedAcceptance(ctx, key, in.ToUserID, event.ID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.New(tx, s.logger)
		if released != nil {
			released.ActiveKey = nil
			released.UpdatedAt = now
			if err := repo.Update(ctx, released, released.Version); err != nil {
				return err
			}
		}
		expired, err := repo.ExpireOverdueByKey(ctx, key, now)
		if err != nil {
			return err
		}
		if expired > 0 {
			metrics.RequestTransitions.WithLabelValues(string(requestModel.StatusExpired)).Add(float64(expired))
		}
		return repo.Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	metrics.RequestTransitions.WithLabelValues(string(requestModel.StatusPending)).Inc()
	s.logger.Infow("Request created",
		"request_id", req.ID,
		"type", req.Type,
		"from_user_id", req.FromUserID,
		"to_user_id", req.ToUserID,
		"event_id", req.EventID,
		"match_score", req.MatchScore,
	)
	s.publish(ctx, notification.KindRequestCreated, req, false)
	return req, nil
}

// endedAcceptance returns the accepted request holding key when the membership
// it produced has since ended, so the tuple can be reused.
func (s *service) endedAcceptance(ctx context.Context, key, toUserID, eventID string) (*requestModel.Request, error) {
	held, err := s.repo.GetByActiveKey(ctx, key)
	if errors.Is(err, requestModel.ErrRequestNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if held.Status != requestModel.StatusAccepted {
		return nil, nil
	}
	teamID, err := s.ledger.ActiveTeamID(ctx, toUserID, eventID)
	if err != nil {
		return nil, err
	}
	if teamID != "" && teamID == held.TeamID {
		return nil, nil
	}
	return held, nil
}

func (s *service) checkInvite(ctx context.Context, fromUserID string, in *requestModel.CreateRequestRequest) error {
	team, err := s.ledger.GetTeam(ctx, in.TeamID)
	if err != nil {
		return err
	}
	if team.EventID != in.EventID {
		return requestModel.ErrTeamEventMismatch
	}
	if team.Status == teamModel.StatusDisbanded {
		return teamModel.ErrTeamDisbanded
	}
	if !teamModel.CanPerform(team, fromUserID, teamModel.ActionInvite) {
		return teamModel.ErrNotLeader
	}
	if active := team.ActiveCount(); active >= team.CapacityMax {
		return fmt.Errorf("%w: %d/%d members", teamModel.ErrTeamFull, active, team.CapacityMax)
	}
	return nil
}

func (s *service) loadProfiles(ctx context.Context, fromUserID, toUserID string) (from, to *profileModel.Profile, err error) {
	profiles, err := profileRepository.New(s.db, s.logger).GetMany(ctx, []string{fromUserID, toUserID})
	if err != nil {
		return nil, nil, err
	}
	for i := range profiles {
		switch profiles[i].UserID {
		case fromUserID:
			from = &profiles[i]
		case toUserID:
			to = &profiles[i]
		}
	}
	if from == nil {
		return nil, nil, fmt.Errorf("%w: sender %s has no profile", requestModel.ErrProfileRequired, fromUserID)
	}
	if to == nil {
		return nil, nil, fmt.Errorf("%w: recipient %s has no profile", requestModel.ErrProfileRequired, toUserID)
	}
	return from, to, nil
}

func (s *service) AcceptRequest(
	ctx context.Context,
	requestID, actorID, message string,
) (*requestModel.AcceptResult, error) {
	var result *requestModel.AcceptResult
	err := retry.Do(ctx, s.retryCfg, func() error {
		var err error
		result, err = s.accept(ctx, requestID, actorID, message)
		return err
	})
	if err != nil {
		if isVersionConflict(err) {
			return nil, requestModel.ErrConcurrentModification
		}
		return nil, err
	}
	if result.AlreadyAccepted {
		return result, nil
	}

	req := result.Request
	metrics.RequestTransitions.WithLabelValues(string(requestModel.StatusAccepted)).Inc()
	s.logger.Infow("Request accepted",
		"request_id", req.ID,
		"type", req.Type,
		"team_id", result.TeamID,
		"from_user_id", req.FromUserID,
		"to_user_id", req.ToUserID,
	)

	s.cascade(ctx, req, result)
	cache.InvalidateUsers(ctx, s.cache, req.FromUserID, req.ToUserID)
	s.publish(ctx, notification.KindRequestAccepted, req, false)
	return result, nil
}

// accept runs one attempt of an acceptance: the membership change and the
// request transition commit together.
func (s *service) accept(
	ctx context.Context,
	requestID, actorID, message string,
) (*requestModel.AcceptResult, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ToUserID != actorID {
		return nil, requestModel.ErrNotRecipient
	}
	now := s.now().UTC()
	switch {
	case req.Status == requestModel.StatusAccepted:
		return &requestModel.AcceptResult{Request: req, TeamID: req.TeamID, AlreadyAccepted: true, Cascaded: []string{}}, nil
	case req.Status.Terminal():
		return nil, fmt.Errorf("%w: request is %s", requestModel.ErrRequestClosed, req.Status)
	case req.Overdue(now):
		return nil, s.expire(ctx, req, now)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := s.ledger.WithTx(tx)

		if teamID, err := ledger.ActiveTeamID(ctx, req.ToUserID, req.EventID); err != nil {
			return err
		} else if teamID != "" {
			return fmt.Errorf("%w: member of team %s", requestModel.ErrRecipientInTeam, teamID)
		}

		switch req.Type {
		case requestModel.TypeTeamInvite:
			if _, err := ledger.AddMember(ctx, req.TeamID, req.ToUserID, teamModel.RoleMember); err != nil {
				return err
			}
		case requestModel.TypePeerRequest:
			team, err := s.formPeerTeam(ctx, tx, ledger, req)
			if err != nil {
				return err
			}
			req.TeamID = team.ID
		}

		req.Status = requestModel.StatusAccepted
		req.ResponseMessage = message
		req.RespondedAt = &now
		return repository.New(tx, s.logger).Update(ctx, req, req.Version)
	})
	if err != nil {
		return nil, err
	}
	return &requestModel.AcceptResult{Request: req, TeamID: req.TeamID, Cascaded: []string{}}, nil
}

// formPeerTeam creates a private team led by the sender and adds the recipient.
func (s *service) formPeerTeam(
	ctx context.Context,
	tx *gorm.DB,
	ledger teamService.Service,
	req *requestModel.Request,
) (*teamModel.Team, error) {
	if teamID, err := ledger.ActiveTeamID(ctx, req.FromUserID, req.EventID); err != nil {
		return nil, err
	} else if teamID != "" {
		return nil, fmt.Errorf("%w: member of team %s", requestModel.ErrSenderInTeam, teamID)
	}

	event, err := eventRepository.New(tx, s.logger).GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	capMax := s.cfg.PeerTeamMaxSize
	if event.MaxTeamSize > 0 {
		capMax = min(capMax, event.MaxTeamSize)
	}

	team, err := ledger.CreateTeam(ctx, req.FromUserID, &teamModel.CreateTeamRequest{
		Name:        "team-" + req.ID[:8],
		EventID:     req.EventID,
		CapacityMin: peerTeamCapacityMin,
		CapacityMax: capMax,
	})
	if err != nil {
		return nil, err
	}
	return ledger.AddMember(ctx, team.ID, req.ToUserID, teamModel.RoleMember)
}

// cascade rejects every other pending request of the event involving either
// participant. Failures are collected, not propagated.
func (s *service) cascade(ctx context.Context, accepted *requestModel.Request, result *requestModel.AcceptResult) {
	competing, err := s.repo.ListPendingInvolving(ctx, accepted.EventID,
		[]string{accepted.FromUserID, accepted.ToUserID}, accepted.ID)
	if err != nil {
		s.logger.Errorw("Failed to list competing requests", "request_id", accepted.ID, "error", err)
		result.CascadeFailures = append(result.CascadeFailures, requestModel.CascadeFailure{
			RequestID: accepted.ID,
			Error:     err.Error(),
		})
		return
	}

	for _, other := range competing {
		rejected, changed, err := s.transition(ctx, other.ID, true, func(r *requestModel.Request, now time.Time) error {
			if r.Status.Terminal() {
				return errUnchanged
			}
			r.Status = requestModel.StatusRejected
			r.ResponseMessage = cascadeMessage
			r.RespondedAt = &now
			r.ActiveKey = nil
			return nil
		})
		switch {
		case errors.Is(err, requestModel.ErrRequestExpired):
			continue
		case err != nil:
			s.logger.Warnw("Failed to reject competing request",
				"request_id", other.ID,
				"accepted_request_id", accepted.ID,
				"error", err,
			)
			result.CascadeFailures = append(result.CascadeFailures, requestModel.CascadeFailure{
				RequestID: other.ID,
				Error:     err.Error(),
			})
			continue
		case !changed:
			continue
		}

		result.Cascaded = append(result.Cascaded, rejected.ID)
		metrics.RequestTransitions.WithLabelValues(string(requestModel.StatusRejected)).Inc()
		cache.InvalidateUsers(ctx, s.cache, rejected.FromUserID, rejected.ToUserID)
		s.publish(ctx, notification.KindRequestRejected, rejected, true)
	}
	if len(result.Cascaded) > 0 {
		s.logger.Infow("Rejected competing requests", "request_id", accepted.ID, "count", len(result.Cascaded))
	}
}

func (s *service) RejectRequest(
	ctx context.Context,
	requestID, actorID, message string,
) (*requestModel.Request, error) {
	req, changed, err := s.transition(ctx, requestID, true, func(r *requestModel.Request, now time.Time) error {
		if r.ToUserID != actorID {
			return requestModel.ErrNotRecipient
		}
		switch r.Status {
		case requestModel.StatusRejected:
			return errUnchanged
		case requestModel.StatusPending:
		default:
			return fmt.Errorf("%w: request is %s", requestModel.ErrRequestClosed, r.Status)
		}
		r.Status = requestModel.StatusRejected
		r.ResponseMessage = message
		r.RespondedAt = &now
		r.ActiveKey = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		metrics.RequestTransitions.WithLabelValues(string(requestModel.StatusRejected)).Inc()
		s.logger.Infow("Request rejected", "request_id", req.ID, "to_user_id", actorID)
		s.publish(ctx, notification.KindRequestRejected, req, false)
	}
	return req, nil
}

func (s *service) CancelRequest(ctx context.Context, requestID, actorID string) (*requestModel.Request, error) {
	req, changed, err := s.transition(ctx, requestID, true, func(r *requestModel.Request, now time.Time) error {
		if r.FromUserID != actorID {
			return requestModel.ErrNotSender
		}
		switch r.Status {
		case requestModel.StatusCancelled:
			return errUnchanged
		case requestModel.StatusPending:
		default:
			return fmt.Errorf("%w: request is %s", requestModel.ErrRequestClosed, r.Status)
		}
		r.Status = requestModel.StatusCancelled
		r.RespondedAt = &now
		r.ActiveKey = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		metrics.RequestTransitions.WithLabelValues(string(requestModel.StatusCancelled)).Inc()
		s.logger.Infow("Request cancelled", "request_id", req.ID, "from_user_id", actorID)
		s.publish(ctx, notification.KindRequestCancelled, req, false)
	}
	return req, nil
}

func (s *service) MarkViewed(ctx context.Context, requestID, actorID string) (*requestModel.Request, error) {
	req, _, err := s.transition(ctx, requestID, false, func(r *requestModel.Request, now time.Time) error {
		if r.ToUserID != actorID {
			return requestModel.ErrNotRecipient
		}
		if r.ViewedAt != nil {
			return errUnchanged
		}
		r.ViewedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	req.Status = req.EffectiveStatus(s.now())
	return req, nil
}

func (s *service) ExtendExpiry(
	ctx context.Context,
	requestID, actorID string,
	extension time.Duration,
) (*requestModel.Request, error) {
	if extension < minExtension || extension > maxExtension {
		return nil, fmt.Errorf("%w: got %s", requestModel.ErrInvalidExtension, extension)
	}
	req, _, err := s.transition(ctx, requestID, false, func(r *requestModel.Request, now time.Time) error {
		if r.FromUserID != actorID {
			return requestModel.ErrNotSender
		}
		if r.Status.Terminal() {
			return fmt.Errorf("%w: request is %s", requestModel.ErrRequestClosed, r.Status)
		}
		if r.Overdue(now) {
			return requestModel.ErrRequestExpired
		}
		r.ExpiresAt = now.Add(extension)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Request expiry extended", "request_id", req.ID, "expires_at", req.ExpiresAt)
	return req, nil
}

func (s *service) GetRequest(ctx context.Context, requestID, viewerID string) (*requestModel.Request, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Involves(viewerID) {
		return nil, requestModel.ErrNotParticipant
	}
	req.Status = req.EffectiveStatus(s.now())
	return req, nil
}

func (s *service) ListReceived(
	ctx context.Context,
	userID string,
	status requestModel.Status,
	page, limit int,
) ([]requestModel.Request, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, requestModel.ErrInvalidStatus
	}
	now := s.now().UTC()
	requests, total, err := s.repo.ListReceived(ctx, userID, status, now, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}
	return withEffectiveStatus(requests, now), total, nil
}

func (s *service) ListSent(
	ctx context.Context,
	userID string,
	status requestModel.Status,
	page, limit int,
) ([]requestModel.Request, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, requestModel.ErrInvalidStatus
	}
	now := s.now().UTC()
	requests, total, err := s.repo.ListSent(ctx, userID, status, now, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}
	return withEffectiveStatus(requests, now), total, nil
}

func (s *service) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireStale(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.ExpiredBySweep.Add(float64(n))
		metrics.RequestTransitions.WithLabelValues(string(requestModel.StatusExpired)).Add(float64(n))
		s.logger.Infow("Expired stale requests", "count", n)
	}
	return n, nil
}

// transition loads a request, applies change and writes it with a
// version check, retrying on conflicts. With persistExpiry an overdue
// pending request is written as expired instead and ErrRequestExpired is
// returned. changed reports whether anything was written by change.
func (s *service) transition(
	ctx context.Context,
	requestID string,
	persistExpiry bool,
	change func(r *requestModel.Request, now time.Time) error,
) (req *requestModel.Request, changed bool, err error) {
	err = retry.Do(ctx, s.retryCfg, func() error {
		changed = false
		r, err := s.repo.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		now := s.now().UTC()

		if persistExpiry && r.Overdue(now) {
			// Authorization still applies before the expiry is recorded.
			attempt := *r
			if err := change(&attempt, now); err != nil && !errors.Is(err, errUnchanged) && !isClosed(err) {
				return err
			}
			return s.expire(ctx, r, now)
		}

		expected := r.Version
		if err := change(r, now); err != nil {
			if errors.Is(err, errUnchanged) {
				req = r
				return nil
			}
			return err
		}
		if err := s.repo.Update(ctx, r, expected); err != nil {
			return err
		}
		req, changed = r, true
		return nil
	})
	if err != nil {
		if isVersionConflict(err) {
			return nil, false, requestModel.ErrConcurrentModification
		}
		return nil, false, err
	}
	return req, changed, nil
}

func isClosed(err error) bool {
	return errors.Is(err, requestModel.ErrRequestClosed) || errors.Is(err, requestModel.ErrRequestExpired)
}

// expire persists the expiry of an overdue pending request and returns
// ErrRequestExpired, or the version conflict if it raced another writer.
func (s *service) expire(ctx context.Context, r *requestModel.Request, now time.Time) error {
	expected := r.Version
	r.Status = requestModel.StatusExpired
	r.ActiveKey = nil
	if err := s.repo.Update(ctx, r, expected); err != nil {
		return err
	}
	metrics.RequestTransitions.WithLabelValues(string(requestModel.StatusExpired)).Inc()
	s.logger.Infow("Request expired on access", "request_id", r.ID, "expires_at", r.ExpiresAt, "now", now)
	return fmt.Errorf("%w: expired at %s", requestModel.ErrRequestExpired, r.ExpiresAt.Format(time.RFC3339))
}

func (s *service) publish(ctx context.Context, kind notification.Kind, r *requestModel.Request, cascade bool) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, notification.Event{
		Kind:       kind,
		RequestID:  r.ID,
		Type:       string(r.Type),
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
		EventID:    r.EventID,
		TeamID:     r.TeamID,
		Cascade:    cascade,
		OccurredAt: s.now().UTC(),
	})
}

func withEffectiveStatus(requests []requestModel.Request, now time.Time) []requestModel.Request {
	for i := range requests {
		requests[i].Status = requests[i].EffectiveStatus(now)
	}
	return requests
}
