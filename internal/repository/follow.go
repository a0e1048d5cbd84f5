package repository

import (
	"context"
	"errors"

	"glimpse/internal/docstore"
	"glimpse/internal/models"
	"glimpse/internal/observability"
)

// FollowRepository defines the interface for follow edge operations.
// Counts are always computed from the edge set, never stored.
type FollowRepository interface {
	Get(ctx context.Context, followerID, followingID string) (*models.FollowEdge, error)
	Create(ctx context.Context, followerID, followingID string) error
	Delete(ctx context.Context, followerID, followingID string) error
	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)
}

// followRepository implements FollowRepository
type followRepository struct {
	store docstore.Store
	log   *observability.StoreLogger
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(store docstore.Store) FollowRepository {
	return &followRepository{
		store: store,
		log:   observability.NewStoreLogger(docstore.FollowersCollection),
	}
}

// Get returns the edge for the ordered pair, or nil when absent.
func (r *followRepository) Get(ctx context.Context, followerID, followingID string) (*models.FollowEdge, error) {
	doc, err := r.store.Get(ctx, docstore.FollowEdgePath(followerID, followingID))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewTransportError("follow get", err)
	}
	return &models.FollowEdge{
		FollowerID:  asString(doc.Data, "followerId"),
		FollowingID: asString(doc.Data, "followingId"),
		CreatedAt:   asTime(doc.Data, "createdAt"),
	}, nil
}

func (r *followRepository) Create(ctx context.Context, followerID, followingID string) error {
	data := map[string]any{
		"followerId":  followerID,
		"followingId": followingID,
		"createdAt":   docstore.ServerTimestamp(),
	}
	if err := r.store.Set(ctx, docstore.FollowEdgePath(followerID, followingID), data, false); err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewTransportError("follow create", err)
	}
	r.log.LogWrite(ctx, "create", map[string]any{
		"follower_id":  followerID,
		"following_id": followingID,
	})
	return nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID string) error {
	if err := r.store.Delete(ctx, docstore.FollowEdgePath(followerID, followingID)); err != nil {
		r.log.LogError(ctx, err, "delete")
		return models.NewTransportError("follow delete", err)
	}
	r.log.LogWrite(ctx, "delete", map[string]any{
		"follower_id":  followerID,
		"following_id": followingID,
	})
	return nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	n, err := r.store.Count(ctx, docstore.Query{
		Collection: docstore.FollowersCollection,
		Where:      []docstore.Cond{{Field: "followingId", Value: userID}},
	})
	if err != nil {
		return 0, models.NewTransportError("followers count", err)
	}
	return n, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	n, err := r.store.Count(ctx, docstore.Query{
		Collection: docstore.FollowersCollection,
		Where:      []docstore.Cond{{Field: "followerId", Value: userID}},
	})
	if err != nil {
		return 0, models.NewTransportError("following count", err)
	}
	return n, nil
}
