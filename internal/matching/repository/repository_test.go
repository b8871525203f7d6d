package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/internal/database/testdb"
	matchingModel "github.com/festy23/teammatch/internal/matching/model"
)

func TestRepository_FeedbackStats(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t, &matchingModel.MatchFeedback{})
	repo := New(db, zap.NewNop().Sugar())
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	entries := []matchingModel.MatchFeedback{
		{ID: "f1", UserID: "u1", MatchedUserID: "u2", Rating: 4, Interested: true, CreatedAt: now},
		{ID: "f2", UserID: "u1", MatchedUserID: "u3", Rating: 1, CreatedAt: now},
		{ID: "f3", UserID: "u1", MatchedUserID: "u2", Rating: 5, Interested: true, CreatedAt: now},
		{ID: "f4", UserID: "u2", MatchedUserID: "u1", Rating: 3, CreatedAt: now},
	}
	for i := range entries {
		require.NoError(t, repo.CreateFeedback(ctx, &entries[i]))
	}

	stats, err := repo.FeedbackStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.InDelta(t, 10.0/3.0, stats.AverageRating, 0.001)
	assert.Equal(t, int64(2), stats.InterestedCount)

	none, err := repo.FeedbackStats(ctx, "u9")
	require.NoError(t, err)
	assert.Equal(t, &matchingModel.FeedbackStats{}, none)
}
