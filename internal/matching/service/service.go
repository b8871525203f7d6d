// Package service implements the candidate ranker and the pairwise
// compatibility analysis.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/internal/cache"
	"github.com/festy23/teammatch/internal/config"
	"github.com/festy23/teammatch/internal/embedding"
	eventRepository "github.com/festy23/teammatch/internal/event/repository"
	matchingModel "github.com/festy23/teammatch/internal/matching/model"
	"github.com/festy23/teammatch/internal/matching/repository"
	"github.com/festy23/teammatch/internal/matching/scorer"
	"github.com/festy23/teammatch/internal/metrics"
	profileModel "github.com/festy23/teammatch/internal/profile/model"
	profileRepository "github.com/festy23/teammatch/internal/profile/repository"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50

	minFallbackPool = 50
	maxOraclePool   = 400
	maxReasonItems  = 3

	sourceCache  = "cache"
	sourceOracle = "oracle"
	sourceSkills = "skills"
)

var tracer = otel.Tracer("teammatch.matching")

// MembershipIndex reports which users hold an active team membership for an event.
type MembershipIndex interface {
	ActiveUserIDs(ctx context.Context, eventID string, userIDs []string) ([]string, error)
}

// Service defines the ranker operations.
type Service interface {
	// Suggest returns up to limit candidates for userID, best first.
	Suggest(
		ctx context.Context,
		userID, eventID string,
		filters matchingModel.SuggestionFilters,
		limit int,
	) ([]matchingModel.Suggestion, error)

	// Compatibility analyses how well otherUserID fits userID.
	Compatibility(ctx context.Context, userID, otherUserID, eventID string) (*matchingModel.Compatibility, error)

	// RecordFeedback stores userID's rating of a match.
	RecordFeedback(
		ctx context.Context,
		userID string,
		req *matchingModel.FeedbackRequest,
	) (*matchingModel.MatchFeedback, error)

	// FeedbackStats aggregates the feedback userID has given.
	FeedbackStats(ctx context.Context, userID string) (*matchingModel.FeedbackStats, error)

	// InvalidateUsers drops cached suggestions requested by or containing userIDs.
	InvalidateUsers(ctx context.Context, userIDs ...string)

	// Close releases the scoring workers.
	Close()
}

type service struct {
	feedback    repository.Repository
	profiles    profileRepository.Repository
	events      eventRepository.Repository
	memberships MembershipIndex
	oracle      embedding.Oracle
	scorer      *scorer.Scorer
	cache       cache.Cache
	cfg         config.MatchingConfig
	pool        *ants.Pool
	logger      *zap.SugaredLogger
	now         func() time.Time
}

// New creates a new ranker instance with cfg.ScoringWorkers scoring workers.
func New(
	feedback repository.Repository,
	profiles profileRepository.Repository,
	events eventRepository.Repository,
	memberships MembershipIndex,
	oracle embedding.Oracle,
	c cache.Cache,
	cfg config.MatchingConfig,
	logger *zap.SugaredLogger,
) (Service, error) {
	pool, err := ants.NewPool(cfg.ScoringWorkers)
	if err != nil {
		return nil, fmt.Errorf("creating scoring pool: %w", err)
	}
	if oracle == nil || !cfg.EmbeddingEnabled {
		oracle = embedding.Disabled{}
	}

	sc := scorer.New(oracle)
	if !cfg.EmbeddingEnabled {
		sc = sc.WithoutEmbedding()
	}
	return &service{
		feedback:    feedback,
		profiles:    profiles,
		events:      events,
		memberships: memberships,
		oracle:      oracle,
		scorer:      sc,
		cache:       c,
		cfg:         cfg,
		pool:        pool,
		logger:      logger,
		now:         time.Now,
	}, nil
}

func (s *service) Close() {
	s.pool.Release()
}

func (s *service) Suggest(
	ctx context.Context,
	userID, eventID string,
	filters matchingModel.SuggestionFilters,
	limit int,
) ([]matchingModel.Suggestion, error) {
	ctx, span := tracer.Start(ctx, "Ranker.Suggest",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("user_id", userID), attribute.String("event_id", eventID)),
	)
	defer span.End()

	start := s.now()
	defer func() { metrics.SuggestDuration.Observe(time.Since(start).Seconds()) }()

	limit = clampLimit(limit)
	if filters.Experience != "" && !filters.Experience.Valid() {
		return nil, matchingModel.ErrInvalidExperienceLevel
	}

	me, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, profileModel.ErrProfileNotFound) {
			return nil, matchingModel.ErrProfileRequired
		}
		return nil, err
	}

	var eventTechs []string
	if eventID != "" {
		event, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			return nil, err
		}
		eventTechs = event.Technologies
	}

	key := cache.SuggestionKey(userID, eventID, filtersHash(filters, limit))
	if cached, ok := s.cachedSuggestions(ctx, key); ok {
		metrics.SuggestionSource.WithLabelValues(sourceCache).Inc()
		span.SetAttributes(attribute.String("source", sourceCache))
		return cached, nil
	}

	// Read before membership so a concurrent invalidation keeps this result out of the cache.
	gen, cacheable := s.cache.Generation(ctx)

	candidates, source, oracleFailed, err := s.candidatePool(ctx, me, eventID, filters, limit)
	if err != nil {
		return nil, err
	}

	sc := s.scorer
	if oracleFailed {
		sc = sc.WithoutEmbedding()
	}
	results := s.scoreAll(ctx, sc, me, candidates, eventTechs)

	suggestions := make([]matchingModel.Suggestion, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if !matchesFilters(c, filters) {
			continue
		}
		suggestions = append(suggestions, toSuggestion(c, results[i]))
	}
	sortSuggestions(suggestions)
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	for i := range suggestions {
		suggestions[i].Reasons = reasons(&suggestions[i], me, eventTechs)
	}

	if cacheable {
		s.storeSuggestions(ctx, gen, key, suggestions)
	}
	metrics.SuggestionSource.WithLabelValues(source).Inc()
	span.SetAttributes(attribute.String("source", source), attribute.Int("count", len(suggestions)))
	s.logger.Debugw("Suggestions ranked",
		"user_id", userID,
		"event_id", eventID,
		"source", source,
		"pool", len(candidates),
		"returned", len(suggestions),
	)
	return suggestions, nil
}

// candidatePool draws available candidates from the oracle and tops the pool
// up from skill overlap when fewer than limit of them pass filters. The oracle
// is over-fetched until enough candidates survive exclusion or it runs dry.
func (s *service) candidatePool(
	ctx context.Context,
	me *profileModel.Profile,
	eventID string,
	filters matchingModel.SuggestionFilters,
	limit int,
) (candidates []profileModel.Profile, source string, oracleFailed bool, err error) {
	poolSize := 2 * limit

	if len(me.Embedding) > 0 && s.cfg.EmbeddingEnabled {
		// One extra slot for the requester, who is their own nearest neighbour.
		for count := poolSize + 1; ; count *= 2 {
			ids, err := s.oracle.FindSimilar(ctx, me.Embedding, s.cfg.PoolScope, count)
			if err != nil {
				oracleFailed = true
				candidates = nil
				metrics.OracleFailures.WithLabelValues("find_similar").Inc()
				s.logger.Warnw("Embedding oracle failed, falling back to skill overlap", "user_id", me.UserID, "error", err)
				break
			}
			if len(ids) == 0 {
				break
			}
			profiles, err := s.profiles.GetMany(ctx, ids)
			if err != nil {
				return nil, "", false, err
			}
			candidates, err = s.available(ctx, me.UserID, eventID, profiles, nil)
			if err != nil {
				return nil, "", false, err
			}
			if countMatching(candidates, filters) >= limit || len(ids) < count || count >= maxOraclePool {
				break
			}
		}
		if len(candidates) > 0 {
			source = sourceOracle
		}
	}

	if source == sourceOracle && countMatching(candidates, filters) >= limit {
		return candidates, source, false, nil
	}

	profiles, err := s.profiles.FindBySkills(ctx, me.Skills, me.UserID, max(poolSize, minFallbackPool))
	if err != nil {
		return nil, "", oracleFailed, err
	}
	seen := make(map[string]struct{}, len(candidates))
	for i := range candidates {
		seen[candidates[i].UserID] = struct{}{}
	}
	more, err := s.available(ctx, me.UserID, eventID, profiles, seen)
	if err != nil {
		return nil, "", oracleFailed, err
	}
	if source == "" {
		source = sourceSkills
	}
	return append(candidates, more...), source, oracleFailed, nil
}

// available drops the requester, ids in skip, and anyone already in a team
// for the event.
func (s *service) available(
	ctx context.Context,
	userID, eventID string,
	candidates []profileModel.Profile,
	skip map[string]struct{},
) ([]profileModel.Profile, error) {
	candidates = slices.DeleteFunc(candidates, func(p profileModel.Profile) bool {
		_, skipped := skip[p.UserID]
		return skipped || p.UserID == userID
	})
	if eventID == "" || len(candidates) == 0 {
		return candidates, nil
	}

	ids := make([]string, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].UserID
	}
	taken, err := s.memberships.ActiveUserIDs(ctx, eventID, ids)
	if err != nil {
		return nil, err
	}
	if len(taken) == 0 {
		return candidates, nil
	}
	return slices.DeleteFunc(candidates, func(p profileModel.Profile) bool {
		return slices.Contains(taken, p.UserID)
	}), nil
}

func countMatching(candidates []profileModel.Profile, f matchingModel.SuggestionFilters) int {
	n := 0
	for i := range candidates {
		if matchesFilters(&candidates[i], f) {
			n++
		}
	}
	return n
}

// scoreAll scores every candidate on the worker pool. results[i] belongs to candidates[i].
func (s *service) scoreAll(
	ctx context.Context,
	sc *scorer.Scorer,
	me *profileModel.Profile,
	candidates []profileModel.Profile,
	eventTechs []string,
) []scorer.Result {
	results := make([]scorer.Result, len(candidates))
	var wg sync.WaitGroup
	for i := range candidates {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i] = sc.Score(ctx, me, &candidates[i], eventTechs)
		}
		if err := s.pool.Submit(task); err != nil {
			s.logger.Warnw("Scoring pool rejected task, scoring inline", "error", err)
			task()
		}
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.EmbeddingFailed {
			failed++
		}
	}
	if failed > 0 {
		metrics.OracleFailures.WithLabelValues("similarity").Add(float64(failed))
	}
	return results
}

func (s *service) cachedSuggestions(ctx context.Context, key string) ([]matchingModel.Suggestion, bool) {
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var suggestions []matchingModel.Suggestion
	if err := json.Unmarshal(raw, &suggestions); err != nil {
		s.logger.Warnw("Dropping unreadable cached suggestions", "key", key, "error", err)
		s.cache.Invalidate(ctx, key)
		return nil, false
	}
	return suggestions, true
}

func (s *service) storeSuggestions(ctx context.Context, gen uint64, key string, suggestions []matchingModel.Suggestion) {
	raw, err := json.Marshal(suggestions)
	if err != nil {
		s.logger.Warnw("Failed to encode suggestions", "key", key, "error", err)
		return
	}
	tags := make([]string, len(suggestions))
	for i := range suggestions {
		tags[i] = cache.CandidateTag(suggestions[i].UserID)
	}
	if !s.cache.SetIfGeneration(ctx, gen, key, raw, s.cfg.CacheTTL, tags...) {
		s.logger.Debugw("Suggestions not cached", "key", key, "generation", gen)
	}
}

func (s *service) Compatibility(
	ctx context.Context,
	userID, otherUserID, eventID string,
) (*matchingModel.Compatibility, error) {
	if userID == otherUserID {
		return nil, matchingModel.ErrSelfMatch
	}
	me, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, profileModel.ErrProfileNotFound) {
			return nil, matchingModel.ErrProfileRequired
		}
		return nil, err
	}
	other, err := s.profiles.GetByUserID(ctx, otherUserID)
	if err != nil {
		return nil, err
	}

	var eventTechs []string
	if eventID != "" {
		event, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			return nil, err
		}
		eventTechs = event.Technologies
	}

	result := s.scorer.Score(ctx, me, other, eventTechs)
	if result.EmbeddingFailed {
		metrics.OracleFailures.WithLabelValues("similarity").Inc()
	}
	return &matchingModel.Compatibility{
		UserID:              userID,
		OtherUserID:         otherUserID,
		EventID:             eventID,
		Score:               result.Score,
		Breakdown:           result.Breakdown,
		CommonSkills:        result.CommonSkills,
		ComplementarySkills: result.ComplementarySkills,
		Recommendations:     recommendations(result.Breakdown),
	}, nil
}

func (s *service) RecordFeedback(
	ctx context.Context,
	userID string,
	req *matchingModel.FeedbackRequest,
) (*matchingModel.MatchFeedback, error) {
	if userID == req.MatchedUserID {
		return nil, matchingModel.ErrSelfMatch
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: got %d", matchingModel.ErrInvalidRating, req.Rating)
	}

	feedback := &matchingModel.MatchFeedback{
		ID:            uuid.NewString(),
		UserID:        userID,
		MatchedUserID: req.MatchedUserID,
		EventID:       req.EventID,
		Rating:        req.Rating,
		Interested:    req.Interested,
		Reason:        strings.TrimSpace(req.Reason),
		CreatedAt:     s.now().UTC(),
	}
	if err := s.feedback.CreateFeedback(ctx, feedback); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.SuggestionPattern(userID))
	s.logger.Infow("Match feedback recorded",
		"user_id", userID,
		"matched_user_id", req.MatchedUserID,
		"rating", req.Rating,
		"interested", req.Interested,
	)
	return feedback, nil
}

func (s *service) FeedbackStats(ctx context.Context, userID string) (*matchingModel.FeedbackStats, error) {
	return s.feedback.FeedbackStats(ctx, userID)
}

func (s *service) InvalidateUsers(ctx context.Context, userIDs ...string) {
	cache.InvalidateUsers(ctx, s.cache, userIDs...)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// filtersHash identifies a filter set independent of skill order and case.
func filtersHash(f matchingModel.SuggestionFilters, limit int) uint64 {
	skills := make([]string, 0, len(f.Skills))
	for _, sk := range f.Skills {
		if sk = profileModel.NormalizeSkill(sk); sk != "" {
			skills = append(skills, sk)
		}
	}
	slices.Sort(skills)
	skills = slices.Compact(skills)

	h := xxhash.New()
	fmt.Fprintf(h, "skills=%s;experience=%s;city=%s;min_completion=%d;limit=%d",
		strings.Join(skills, ","),
		f.Experience,
		strings.ToLower(strings.TrimSpace(f.City)),
		f.MinCompletion,
		limit,
	)
	return h.Sum64()
}

func matchesFilters(p *profileModel.Profile, f matchingModel.SuggestionFilters) bool {
	for _, sk := range f.Skills {
		if strings.TrimSpace(sk) != "" && !p.HasSkill(sk) {
			return false
		}
	}
	if f.Experience != "" && !f.Experience.Matches(p.TotalExperienceYears()) {
		return false
	}
	if city := strings.TrimSpace(f.City); city != "" && !strings.EqualFold(city, strings.TrimSpace(p.City)) {
		return false
	}
	return p.CompletionScore >= f.MinCompletion
}

func toSuggestion(p *profileModel.Profile, r scorer.Result) matchingModel.Suggestion {
	return matchingModel.Suggestion{
		UserID:              p.UserID,
		DisplayName:         p.DisplayName,
		City:                p.City,
		Country:             p.Country,
		Skills:              p.Skills,
		Technologies:        p.Technologies,
		CompletionScore:     p.CompletionScore,
		LastActiveAt:        p.LastActiveAt,
		Score:               r.Score,
		Breakdown:           r.Breakdown,
		CommonSkills:        r.CommonSkills,
		ComplementarySkills: r.ComplementarySkills,
	}
}

// sortSuggestions orders by score, then recent activity, then user id.
func sortSuggestions(suggestions []matchingModel.Suggestion) {
	slices.SortFunc(suggestions, func(a, b matchingModel.Suggestion) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		if c := b.LastActiveAt.Compare(a.LastActiveAt); c != 0 {
			return c
		}
		return strings.Compare(a.UserID, b.UserID)
	})
}

func reasons(sg *matchingModel.Suggestion, me *profileModel.Profile, eventTechs []string) []string {
	var out []string
	b := sg.Breakdown
	if b.Skill >= 60 && len(sg.CommonSkills) > 0 {
		out = append(out, "shared skills: "+joinFirst(sg.CommonSkills))
	}
	switch b.Location {
	case 100:
		out = append(out, "same city: "+sg.City)
	case 70:
		out = append(out, "same country: "+sg.Country)
	}
	if b.Experience >= 90 {
		out = append(out, "similar experience level")
	}
	if b.Project >= 60 {
		reference := eventTechs
		if len(reference) == 0 {
			reference = me.Technologies
		}
		if overlap := sharedTechnologies(sg, reference); len(overlap) > 0 {
			out = append(out, "relevant technologies: "+joinFirst(overlap))
		}
	}
	if b.Embedding >= 75 {
		out = append(out, "similar profile")
	}
	if len(out) == 0 {
		out = append(out, "complementary skill set")
	}
	return out
}

// sharedTechnologies returns the candidate's technologies that appear in reference.
func sharedTechnologies(sg *matchingModel.Suggestion, reference []string) []string {
	ref := make(map[string]struct{}, len(reference))
	for _, t := range reference {
		ref[profileModel.NormalizeSkill(t)] = struct{}{}
	}
	var out []string
	for _, t := range sg.Technologies {
		if _, ok := ref[profileModel.NormalizeSkill(t)]; ok && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func joinFirst(items []string) string {
	if len(items) > maxReasonItems {
		items = items[:maxReasonItems]
	}
	return strings.Join(items, ", ")
}

func recommendations(b scorer.Breakdown) []matchingModel.Recommendation {
	out := []matchingModel.Recommendation{}
	if b.Skill < 30 {
		out = append(out, matchingModel.Recommendation{
			Type:    "skills",
			Message: "Consider learning complementary skills to improve collaboration potential",
		})
	}
	if b.Experience < 40 {
		out = append(out, matchingModel.Recommendation{
			Type:    "experience",
			Message: "Different experience levels can be beneficial, with mentor and mentee opportunities",
		})
	}
	if b.Location < 50 {
		out = append(out, matchingModel.Recommendation{
			Type:    "location",
			Message: "Remote collaboration tools will be important for this partnership",
		})
	}
	if b.Project > 70 {
		out = append(out, matchingModel.Recommendation{
			Type:    "projects",
			Message: "Strong project similarity and potential for shared interests",
		})
	}
	return out
}
