package service

import (
	"context"
	"strings"

	"glimpse/internal/models"
	"glimpse/internal/observability"
	"glimpse/internal/repository"
)

// UserService owns user profile documents. The profile id is always the
// identity provider's principal id; the engine never mints user ids.
type UserService struct {
	userRepo repository.UserRepository
}

type CreateProfileInput struct {
	ID          string
	DisplayName string
	Bio         string
	PhotoBase64 string
}

type UpdateProfileInput struct {
	ID          string
	DisplayName *string
	Bio         *string
	PhotoBase64 *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateProfile writes the profile document at registration time.
func (s *UserService) CreateProfile(ctx context.Context, in CreateProfileInput) (err error) {
	ctx, span := observability.Tracer.Start(ctx, "UserService.CreateProfile")
	defer span.End()
	defer func() { observability.RecordEngineOp("create_profile", err) }()

	if in.ID == "" {
		return models.NewValidationError("User id is required")
	}
	if strings.TrimSpace(in.DisplayName) == "" {
		return models.NewValidationError("Display name is required")
	}

	return s.userRepo.Create(ctx, &models.User{
		ID:          in.ID,
		DisplayName: in.DisplayName,
		Bio:         in.Bio,
		PhotoBase64: in.PhotoBase64,
	})
}

// UpdateProfile merges the given fields into the profile. Only the
// owning principal may call this; the session holder supplies the id.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (err error) {
	ctx, span := observability.Tracer.Start(ctx, "UserService.UpdateProfile")
	defer span.End()
	defer func() { observability.RecordEngineOp("update_profile", err) }()

	if in.DisplayName != nil && strings.TrimSpace(*in.DisplayName) == "" {
		return models.NewValidationError("Display name cannot be empty")
	}

	return s.userRepo.Update(ctx, in.ID, repository.UpdateProfileFields{
		DisplayName: in.DisplayName,
		Bio:         in.Bio,
		PhotoBase64: in.PhotoBase64,
	})
}

// GetProfile resolves a profile by id. A missing profile is not an
// error: callers substitute placeholder display data, so this returns
// (nil, nil) for absent users.
func (s *UserService) GetProfile(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if models.HasCode(err, models.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
