package service

import (
	"context"

	"glimpse/internal/models"
	"glimpse/internal/observability"
	"glimpse/internal/repository"
)

// FollowService owns the follow graph. Edges are keyed by the composite
// (follower, following) id, so a pair has at most one edge and toggling
// twice is always an identity on the edge set.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Toggle creates the follow edge if absent and removes it if present.
// Returns whether followerID follows followingID after the call.
func (s *FollowService) Toggle(ctx context.Context, followerID, followingID string) (following bool, err error) {
	ctx, span := observability.Tracer.Start(ctx, "FollowService.Toggle")
	defer span.End()
	defer func() { observability.RecordEngineOp("toggle_follow", err) }()

	if followerID == followingID {
		return false, models.NewSelfFollowError()
	}

	edge, err := s.followRepo.Get(ctx, followerID, followingID)
	if err != nil {
		return false, err
	}
	if edge != nil {
		if err := s.followRepo.Delete(ctx, followerID, followingID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := s.followRepo.Create(ctx, followerID, followingID); err != nil {
		return false, err
	}
	return true, nil
}

// IsFollowing reports whether the edge exists.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	edge, err := s.followRepo.Get(ctx, followerID, followingID)
	if err != nil {
		return false, err
	}
	return edge != nil, nil
}

// FollowerCount counts edges pointing at userID. The count is computed
// from the edge set on every call, so it cannot drift the way a stored
// counter can.
func (s *FollowService) FollowerCount(ctx context.Context, userID string) (int64, error) {
	return s.followRepo.CountFollowers(ctx, userID)
}

// FollowingCount counts edges originating from userID.
func (s *FollowService) FollowingCount(ctx context.Context, userID string) (int64, error) {
	return s.followRepo.CountFollowing(ctx, userID)
}
