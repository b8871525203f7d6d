// Package repository provides data access layer for the profile module.
package repository

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	profileModel "github.com/festy23/teammatch/internal/profile/model"
)

// Repository defines the interface for profile data access operations.
type Repository interface {
	// GetByUserID finds the profile of userID.
	GetByUserID(ctx context.Context, userID string) (*profileModel.Profile, error)

	// GetMany returns the profiles of userIDs that exist, in no particular order.
	GetMany(ctx context.Context, userIDs []string) ([]profileModel.Profile, error)

	// FindBySkills returns up to limit profiles sharing at least one of skills,
	// ordered by Jaccard overlap with skills, then by user id.
	FindBySkills(ctx context.Context, skills []string, excludeUserID string, limit int) ([]profileModel.Profile, error)

	// SkillsByUser returns the normalized skills of each of userIDs.
	SkillsByUser(ctx context.Context, userIDs []string) (map[string][]string, error)

	// Upsert creates or replaces a profile together with its skill index.
	Upsert(ctx context.Context, profile *profileModel.Profile) error

	// EachWithEmbedding calls fn with batches of profiles that carry an embedding.
	EachWithEmbedding(ctx context.Context, batchSize int, fn func([]profileModel.Profile) error) error
}

type repository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// New creates a new profile repository instance.
func New(db *gorm.DB, logger *zap.SugaredLogger) Repository {
	return &repository{db: db, logger: logger}
}

func (r *repository) GetByUserID(ctx context.Context, userID string) (*profileModel.Profile, error) {
	var profile profileModel.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, profileModel.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) GetMany(ctx context.Context, userIDs []string) ([]profileModel.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var profiles []profileModel.Profile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

type overlapRow struct {
	UserID  string
	Overlap int
	Total   int
}

func (r *repository) FindBySkills(
	ctx context.Context,
	skills []string,
	excludeUserID string,
	limit int,
) ([]profileModel.Profile, error) {
	wanted := normalizeSkills(skills)
	if len(wanted) == 0 || limit <= 0 {
		return nil, nil
	}

	var rows []overlapRow
	err := r.db.WithContext(ctx).
		Table("profile_skills AS ps").
		Select(`ps.user_id AS user_id, COUNT(*) AS overlap,
			(SELECT COUNT(*) FROM profile_skills t WHERE t.user_id = ps.user_id) AS total`).
		Where("ps.skill IN ? AND ps.user_id <> ?", wanted, excludeUserID).
		Group("ps.user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	jaccard := func(row overlapRow) float64 {
		return float64(row.Overlap) / float64(len(wanted)+row.Total-row.Overlap)
	}
	slices.SortFunc(rows, func(a, b overlapRow) int {
		ja, jb := jaccard(a), jaccard(b)
		switch {
		case ja > jb:
			return -1
		case ja < jb:
			return 1
		}
		return strings.Compare(a.UserID, b.UserID)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.UserID
	}
	profiles, err := r.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Restore the overlap order lost by the IN query.
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}
	slices.SortFunc(profiles, func(a, b profileModel.Profile) int {
		return rank[a.UserID] - rank[b.UserID]
	})
	return profiles, nil
}

func (r *repository) SkillsByUser(ctx context.Context, userIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}
	var rows []profileModel.ProfileSkill
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.UserID] = append(result[row.UserID], row.Skill)
	}
	return result, nil
}

func (r *repository) Upsert(ctx context.Context, profile *profileModel.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).Create(profile).Error
		if err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", profile.UserID).Delete(&profileModel.ProfileSkill{}).Error; err != nil {
			return err
		}

		skills := normalizeSkills(profile.Skills)
		if len(skills) == 0 {
			return nil
		}
		rows := make([]profileModel.ProfileSkill, len(skills))
		for i, s := range skills {
			rows[i] = profileModel.ProfileSkill{UserID: profile.UserID, Skill: s}
		}
		return tx.Create(&rows).Error
	})
}

func (r *repository) EachWithEmbedding(
	ctx context.Context,
	batchSize int,
	fn func([]profileModel.Profile) error,
) error {
	var batch []profileModel.Profile
	return r.db.WithContext(ctx).
		Select("user_id", "embedding").
		FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
			embedded := slices.DeleteFunc(slices.Clone(batch), func(p profileModel.Profile) bool {
				return len(p.Embedding) == 0
			})
			if len(embedded) == 0 {
				return nil
			}
			return fn(embedded)
		}).Error
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = profileModel.NormalizeSkill(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
