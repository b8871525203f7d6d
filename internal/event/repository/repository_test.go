package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/internal/database/testdb"
	eventModel "github.com/festy23/teammatch/internal/event/model"
)

func TestRepository_CreateAndGet(t *testing.T) {
	db := testdb.New(t, &eventModel.Event{})
	repo := New(db, zap.NewNop().Sugar())
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	event := &eventModel.Event{
		ID:           "e1",
		Name:         "Spring Hack",
		Technologies: []string{"Go", "React"},
		Categories:   []string{"fintech"},
		StartsAt:     start,
		EndsAt:       start.Add(48 * time.Hour),
		MaxTeamSize:  4,
		CreatedBy:    "org",
	}
	require.NoError(t, repo.Create(ctx, event))

	got, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Spring Hack", got.Name)
	assert.Equal(t, []string{"Go", "React"}, got.Technologies)
	assert.Equal(t, []string{"fintech"}, got.Categories)
	assert.Equal(t, 4, got.MaxTeamSize)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, eventModel.ErrEventNotFound)
}

func TestRepository_List(t *testing.T) {
	db := testdb.New(t, &eventModel.Event{})
	repo := New(db, zap.NewNop().Sugar())
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, repo.Create(ctx, &eventModel.Event{
			ID:        id,
			Name:      id,
			StartsAt:  base.AddDate(0, i, 0),
			EndsAt:    base.AddDate(0, i, 1),
			CreatedBy: "org",
		}))
	}

	events, total, err := repo.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, events, 2)
	assert.Equal(t, "e3", events[0].ID)
	assert.Equal(t, "e2", events[1].ID)

	events, _, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "e1", events[0].ID)
}
