package repository

import (
	"context"
	"testing"

	"glimpse/internal/docstore/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_GetAbsentReturnsNil(t *testing.T) {
	t.Parallel()
	repo := NewFollowRepository(memstore.New())

	edge, err := repo.Get(context.Background(), "u1", "u2")
	require.NoError(t, err)
	assert.Nil(t, edge)
}

func TestFollowRepository_CreateGetDelete(t *testing.T) {
	t.Parallel()
	repo := NewFollowRepository(memstore.New())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, "u1", "u2"))

	edge, err := repo.Get(ctx, "u1", "u2")
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, "u1", edge.FollowerID)
	assert.Equal(t, "u2", edge.FollowingID)
	assert.False(t, edge.CreatedAt.IsZero())

	// The edge is directed.
	reverse, err := repo.Get(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.Nil(t, reverse)

	require.NoError(t, repo.Delete(ctx, "u1", "u2"))
	edge, err = repo.Get(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Nil(t, edge)
}

func TestFollowRepository_Counts(t *testing.T) {
	t.Parallel()
	repo := NewFollowRepository(memstore.New())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, "u1", "star"))
	require.NoError(t, repo.Create(ctx, "u2", "star"))
	require.NoError(t, repo.Create(ctx, "star", "u1"))

	followers, err := repo.CountFollowers(ctx, "star")
	require.NoError(t, err)
	assert.Equal(t, int64(2), followers)

	following, err := repo.CountFollowing(ctx, "star")
	require.NoError(t, err)
	assert.Equal(t, int64(1), following)

	none, err := repo.CountFollowers(ctx, "hermit")
	require.NoError(t, err)
	assert.Zero(t, none)
}

func TestFollowRepository_CreateIsIdempotentPerPair(t *testing.T) {
	t.Parallel()
	repo := NewFollowRepository(memstore.New())
	ctx := context.Background()

	// Re-creating an existing edge overwrites the same document, so the
	// count stays at one edge per pair.
	require.NoError(t, repo.Create(ctx, "u1", "u2"))
	require.NoError(t, repo.Create(ctx, "u1", "u2"))

	n, err := repo.CountFollowers(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
