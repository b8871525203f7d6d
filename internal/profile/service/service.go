// Package service provides business logic layer for the profile module.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/festy23/teammatch/internal/cache"
	"github.com/festy23/teammatch/internal/embedding"
	"github.com/festy23/teammatch/internal/metrics"
	profileModel "github.com/festy23/teammatch/internal/profile/model"
	"github.com/festy23/teammatch/internal/profile/repository"
)

// Service defines the interface for profile business logic operations.
type Service interface {
	// UpsertProfile creates or replaces the caller's profile.
	UpsertProfile(ctx context.Context, userID string, req *profileModel.UpsertProfileRequest) (*profileModel.Profile, error)

	// GetProfile returns the profile of userID.
	GetProfile(ctx context.Context, userID string) (*profileModel.Profile, error)

	// ReindexEmbeddings loads every stored profile vector into the oracle
	// and returns how many were indexed.
	ReindexEmbeddings(ctx context.Context) (int, error)
}

const reindexBatchSize = 500

type service struct {
	repo   repository.Repository
	oracle embedding.Oracle
	cache  cache.Cache
	logger *zap.SugaredLogger
	now    func() time.Time
}

// New creates a new profile service instance.
func New(
	repo repository.Repository,
	oracle embedding.Oracle,
	c cache.Cache,
	logger *zap.SugaredLogger,
) Service {
	return &service{
		repo:   repo,
		oracle: oracle,
		cache:  c,
		logger: logger,
		now:    time.Now,
	}
}

func (s *service) UpsertProfile(
	ctx context.Context,
	userID string,
	req *profileModel.UpsertProfileRequest,
) (*profileModel.Profile, error) {
	for _, e := range req.Experience {
		if e.DurationYears < 0 {
			return nil, profileModel.ErrInvalidExperience
		}
	}

	profile := &profileModel.Profile{
		UserID:       userID,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Bio:          req.Bio,
		Skills:       dedupe(req.Skills),
		Experience:   req.Experience,
		City:         strings.TrimSpace(req.City),
		Country:      strings.TrimSpace(req.Country),
		Technologies: dedupe(req.Technologies),
		Embedding:    req.Embedding,
		LastActiveAt: s.now().UTC(),
	}
	profile.CompletionScore = profileModel.CompletionScore(profile)

	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	s.syncEmbedding(ctx, profile)
	cache.InvalidateUsers(ctx, s.cache, userID)

	s.logger.Infow("Profile updated",
		"user_id", userID,
		"skills", len(profile.Skills),
		"completion", profile.CompletionScore,
	)
	return profile, nil
}

func (s *service) GetProfile(ctx context.Context, userID string) (*profileModel.Profile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) ReindexEmbeddings(ctx context.Context) (int, error) {
	if s.oracle == nil {
		return 0, nil
	}
	indexed, failed := 0, 0
	err := s.repo.EachWithEmbedding(ctx, reindexBatchSize, func(batch []profileModel.Profile) error {
		for i := range batch {
			if err := s.oracle.Index(ctx, batch[i].UserID, batch[i].Embedding); err != nil {
				if errors.Is(err, embedding.ErrUnavailable) {
					return err
				}
				failed++
				metrics.OracleFailures.WithLabelValues("index").Inc()
				continue
			}
			indexed++
		}
		return nil
	})
	if err != nil {
		return indexed, fmt.Errorf("reindexing embeddings: %w", err)
	}

	s.logger.Infow("Profile embeddings reindexed", "indexed", indexed, "failed", failed)
	return indexed, nil
}

// syncEmbedding mirrors the profile vector into the oracle. Failures only degrade ranking.
func (s *service) syncEmbedding(ctx context.Context, profile *profileModel.Profile) {
	if s.oracle == nil {
		return
	}
	op := "index"
	var err error
	if len(profile.Embedding) == 0 {
		op = "remove"
		err = s.oracle.Remove(ctx, profile.UserID)
	} else {
		err = s.oracle.Index(ctx, profile.UserID, profile.Embedding)
	}
	if err != nil {
		metrics.OracleFailures.WithLabelValues(op).Inc()
		s.logger.Warnw("Failed to sync profile embedding", "user_id", profile.UserID, "op", op, "error", err)
	}
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
