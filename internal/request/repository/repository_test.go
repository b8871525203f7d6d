package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/festy23/teammatch/internal/database/testdb"
	"github.com/festy23/teammatch/internal/matching/scorer"
	requestModel "github.com/festy23/teammatch/internal/request/model"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func setupRepo(t *testing.T) Repository {
	t.Helper()
	db := testdb.New(t, &requestModel.Request{})
	return New(db, zap.NewNop().Sugar())
}

func newRequest(id, from, to, event string, created time.Time) *requestModel.Request {
	key := requestModel.ActiveKeyFor(from, to, event, "")
	return &requestModel.Request{
		ID:         id,
		FromUserID: from,
		ToUserID:   to,
		EventID:    event,
		Type:       requestModel.TypePeerRequest,
		Status:     requestModel.StatusPending,
		MatchScore: 70,
		Breakdown:  scorer.Breakdown{Skill: 80, Experience: 90, Location: 100, Embedding: 50, Project: 20},
		ActiveKey:  &key,
		ExpiresAt:  created.Add(7 * 24 * time.Hour),
		Version:    1,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	require.NoError(t, repo.Create(ctx, newRequest("r1", "x", "y", "e1", testNow)))

	got, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "x", got.FromUserID)
	assert.Equal(t, 80, got.Breakdown.Skill)
	assert.Equal(t, 100, got.Breakdown.Location)
	require.NotNil(t, got.ActiveKey)
	assert.Equal(t, "x|y|e1|", *got.ActiveKey)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, requestModel.ErrRequestNotFound)

	err = repo.Create(ctx, newRequest("r2", "x", "y", "e1", testNow))
	assert.ErrorIs(t, err, requestModel.ErrDuplicateRequest)
}

func TestRepository_UpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	require.NoError(t, repo.Create(ctx, newRequest("r1", "x", "y", "e1", testNow)))

	req, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	stale := *req

	req.Status = requestModel.StatusRejected
	req.ActiveKey = nil
	require.NoError(t, repo.Update(ctx, req, 1))
	assert.Equal(t, int64(2), req.Version)

	stale.Status = requestModel.StatusAccepted
	assert.ErrorIs(t, repo.Update(ctx, &stale, 1), requestModel.ErrVersionConflict)

	got, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, requestModel.StatusRejected, got.Status)
	assert.Nil(t, got.ActiveKey)

	// The freed key admits a new request for the same tuple.
	assert.NoError(t, repo.Create(ctx, newRequest("r2", "x", "y", "e1", testNow)))
}

func TestRepository_GetByActiveKey(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	require.NoError(t, repo.Create(ctx, newRequest("r1", "x", "y", "e1", testNow)))

	got, err := repo.GetByActiveKey(ctx, requestModel.ActiveKeyFor("x", "y", "e1", ""))
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)

	_, err = repo.GetByActiveKey(ctx, requestModel.ActiveKeyFor("y", "x", "e1", ""))
	assert.ErrorIs(t, err, requestModel.ErrRequestNotFound)
}

func TestRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	require.NoError(t, repo.Create(ctx, newRequest("old", "x", "y", "e1", testNow)))
	require.NoError(t, repo.Create(ctx, newRequest("new", "z", "y", "e1", testNow.Add(3*24*time.Hour))))

	at := testNow.Add(8 * 24 * time.Hour)

	n, err := repo.ExpireOverdueByKey(ctx, requestModel.ActiveKeyFor("z", "y", "e1", ""), at)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.ExpireOverdueByKey(ctx, requestModel.ActiveKeyFor("x", "y", "e1", ""), at)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	old, err := repo.GetByID(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, requestModel.StatusExpired, old.Status)
	assert.Nil(t, old.ActiveKey)
	assert.Equal(t, int64(2), old.Version)

	n, err = repo.ExpireStale(ctx, testNow.Add(11*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	fresh, err := repo.GetByID(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, requestModel.StatusExpired, fresh.Status)
}

func TestRepository_Lists(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	require.NoError(t, repo.Create(ctx, newRequest("r1", "x", "y", "e1", testNow)))
	require.NoError(t, repo.Create(ctx, newRequest("r2", "z", "y", "e1", testNow.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newRequest("r3", "y", "w", "e1", testNow.Add(2*time.Hour))))
	require.NoError(t, repo.Create(ctx, newRequest("r4", "z", "w", "e2", testNow.Add(3*time.Hour))))

	// r1 is overdue at this instant, r2 is not.
	at := testNow.Add(7*24*time.Hour + 30*time.Minute)

	received, total, err := repo.ListReceived(ctx, "y", "", at, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, received, 2)
	assert.Equal(t, "r2", received[0].ID)

	pending, total, err := repo.ListReceived(ctx, "y", requestModel.StatusPending, at, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pending, 1)
	assert.Equal(t, "r2", pending[0].ID)

	expired, total, err := repo.ListReceived(ctx, "y", requestModel.StatusExpired, at, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, expired, 1)
	assert.Equal(t, "r1", expired[0].ID)

	sent, total, err := repo.ListSent(ctx, "z", "", at, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, sent, 1)
	assert.Equal(t, "r2", sent[0].ID)

	involving, err := repo.ListPendingInvolving(ctx, "e1", []string{"y"}, "r2")
	require.NoError(t, err)
	ids := make([]string, 0, len(involving))
	for _, r := range involving {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"r1", "r3"}, ids)
}
