package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/internal/cache"
	"github.com/festy23/teammatch/internal/embedding"
	profileModel "github.com/festy23/teammatch/internal/profile/model"
	"github.com/festy23/teammatch/internal/profile/repository"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) GetByUserID(ctx context.Context, userID string) (*profileModel.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profileModel.Profile), args.Error(1)
}

func (m *mockRepository) GetMany(ctx context.Context, userIDs []string) ([]profileModel.Profile, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]profileModel.Profile), args.Error(1)
}

func (m *mockRepository) FindBySkills(
	ctx context.Context,
	skills []string,
	excludeUserID string,
	limit int,
) ([]profileModel.Profile, error) {
	args := m.Called(ctx, skills, excludeUserID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]profileModel.Profile), args.Error(1)
}

func (m *mockRepository) SkillsByUser(ctx context.Context, userIDs []string) (map[string][]string, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}

func (m *mockRepository) Upsert(ctx context.Context, profile *profileModel.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockRepository) EachWithEmbedding(
	ctx context.Context,
	batchSize int,
	fn func([]profileModel.Profile) error,
) error {
	args := m.Called(ctx, batchSize, fn)
	if batches, ok := args.Get(0).([][]profileModel.Profile); ok {
		for _, b := range batches {
			if err := fn(b); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

var _ repository.Repository = (*mockRepository)(nil)

type recordingOracle struct {
	embedding.Disabled
	indexed map[string][]float32
	removed []string
}

func (o *recordingOracle) Index(_ context.Context, userID string, vector []float32) error {
	o.indexed[userID] = vector
	return nil
}

func (o *recordingOracle) Remove(_ context.Context, userID string) error {
	o.removed = append(o.removed, userID)
	return nil
}

type recordingCache struct {
	cache.Noop
	patterns []string
	tags     []string
}

func (c *recordingCache) Invalidate(_ context.Context, pattern string) {
	c.patterns = append(c.patterns, pattern)
}

func (c *recordingCache) InvalidateTag(_ context.Context, tag string) {
	c.tags = append(c.tags, tag)
}

func newService(repo repository.Repository, oracle embedding.Oracle, c cache.Cache) *service {
	svc := New(repo, oracle, c, zap.NewNop().Sugar()).(*service)
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_UpsertProfile(t *testing.T) {
	t.Run("indexes embedding and invalidates cache", func(t *testing.T) {
		repo := new(mockRepository)
		oracle := &recordingOracle{indexed: map[string][]float32{}}
		c := &recordingCache{}
		svc := newService(repo, oracle, c)

		repo.On("Upsert", mock.Anything, mock.AnythingOfType("*model.Profile")).Return(nil)

		profile, err := svc.UpsertProfile(context.Background(), "u1", &profileModel.UpsertProfileRequest{
			DisplayName: " Alice ",
			Skills:      []string{"Go", "go", " SQL"},
			City:        "Berlin",
			Embedding:   []float32{0.1, 0.2},
		})
		require.NoError(t, err)

		assert.Equal(t, "Alice", profile.DisplayName)
		assert.Equal(t, []string{"Go", "SQL"}, profile.Skills)
		assert.Equal(t, 15+12+10, profile.CompletionScore)
		assert.Equal(t, time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC), profile.LastActiveAt)
		assert.Equal(t, []float32{0.1, 0.2}, oracle.indexed["u1"])
		assert.Equal(t, []string{"suggestions:u1:*"}, c.patterns)
		assert.Equal(t, []string{"candidate:u1"}, c.tags)
		repo.AssertExpectations(t)
	})

	t.Run("removes vector when embedding cleared", func(t *testing.T) {
		repo := new(mockRepository)
		oracle := &recordingOracle{indexed: map[string][]float32{}}
		svc := newService(repo, oracle, cache.NewNoop())

		repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.UpsertProfile(context.Background(), "u1", &profileModel.UpsertProfileRequest{DisplayName: "A"})
		require.NoError(t, err)
		assert.Equal(t, []string{"u1"}, oracle.removed)
	})

	t.Run("oracle outage does not fail the update", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newService(repo, embedding.Disabled{}, cache.NewNoop())

		repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.UpsertProfile(context.Background(), "u1", &profileModel.UpsertProfileRequest{
			DisplayName: "A",
			Embedding:   []float32{1},
		})
		require.NoError(t, err)
	})

	t.Run("negative experience", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newService(repo, embedding.Disabled{}, cache.NewNoop())

		_, err := svc.UpsertProfile(context.Background(), "u1", &profileModel.UpsertProfileRequest{
			DisplayName: "A",
			Experience:  []profileModel.Experience{{Title: "dev", DurationYears: -1}},
		})
		assert.ErrorIs(t, err, profileModel.ErrInvalidExperience)
		repo.AssertNotCalled(t, "Upsert")
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(mockRepository)
		c := &recordingCache{}
		svc := newService(repo, embedding.Disabled{}, c)

		repo.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("db down"))

		_, err := svc.UpsertProfile(context.Background(), "u1", &profileModel.UpsertProfileRequest{DisplayName: "A"})
		assert.EqualError(t, err, "db down")
		assert.Empty(t, c.patterns)
	})
}

func TestService_ReindexEmbeddings(t *testing.T) {
	batches := [][]profileModel.Profile{
		{{UserID: "u1", Embedding: []float32{1, 0}}, {UserID: "u2", Embedding: []float32{0, 1}}},
		{{UserID: "u3", Embedding: []float32{1, 1}}},
	}

	t.Run("indexes every stored vector", func(t *testing.T) {
		repo := new(mockRepository)
		oracle := &recordingOracle{indexed: map[string][]float32{}}
		svc := newService(repo, oracle, cache.NewNoop())

		repo.On("EachWithEmbedding", mock.Anything, reindexBatchSize, mock.Anything).Return(batches, nil)

		n, err := svc.ReindexEmbeddings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, []float32{1, 1}, oracle.indexed["u3"])
	})

	t.Run("stops when the oracle is unavailable", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newService(repo, embedding.Disabled{}, cache.NewNoop())

		repo.On("EachWithEmbedding", mock.Anything, reindexBatchSize, mock.Anything).Return(batches, nil)

		n, err := svc.ReindexEmbeddings(context.Background())
		assert.ErrorIs(t, err, embedding.ErrUnavailable)
		assert.Zero(t, n)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(mockRepository)
		svc := newService(repo, &recordingOracle{indexed: map[string][]float32{}}, cache.NewNoop())

		repo.On("EachWithEmbedding", mock.Anything, reindexBatchSize, mock.Anything).Return(nil, errors.New("db down"))

		_, err := svc.ReindexEmbeddings(context.Background())
		assert.ErrorContains(t, err, "db down")
	})
}
