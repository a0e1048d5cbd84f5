// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"glimpse/internal/docstore"
	"glimpse/internal/models"
	"glimpse/internal/observability"
)

// UpdateProfileFields carries the optional profile fields of an update.
// Nil pointers leave the stored value untouched.
type UpdateProfileFields struct {
	DisplayName *string
	Bio         *string
	PhotoBase64 *string
}

// UserRepository defines the interface for user profile data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, fields UpdateProfileFields) error
	SetNotificationToken(ctx context.Context, id, token string) error
	RemoveNotificationToken(ctx context.Context, id string) error
}

// userRepository implements UserRepository
type userRepository struct {
	store docstore.Store
	log   *observability.StoreLogger
}

// NewUserRepository creates a new user repository
func NewUserRepository(store docstore.Store) UserRepository {
	return &userRepository{
		store: store,
		log:   observability.NewStoreLogger(docstore.UsersCollection),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	data := map[string]any{
		"displayName": user.DisplayName,
		"bio":         user.Bio,
		"photoBase64": user.PhotoBase64,
		"fcmToken":    nil,
		"createdAt":   docstore.ServerTimestamp(),
		"updatedAt":   docstore.ServerTimestamp(),
	}
	if err := r.store.Set(ctx, docstore.UserPath(user.ID), data, false); err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewTransportError("user create", err)
	}
	r.log.LogWrite(ctx, "create", map[string]any{"user_id": user.ID})
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	doc, err := r.store.Get(ctx, docstore.UserPath(id))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, models.NewNotFoundError("User", id)
	}
	if err != nil {
		return nil, models.NewTransportError("user get", err)
	}
	return decodeUser(id, doc.Data), nil
}

func (r *userRepository) Update(ctx context.Context, id string, fields UpdateProfileFields) error {
	update := map[string]any{
		"updatedAt": docstore.ServerTimestamp(),
	}
	if fields.DisplayName != nil {
		update["displayName"] = *fields.DisplayName
	}
	if fields.Bio != nil {
		update["bio"] = *fields.Bio
	}
	if fields.PhotoBase64 != nil {
		update["photoBase64"] = *fields.PhotoBase64
	}

	err := r.store.Update(ctx, docstore.UserPath(id), update)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.NewNotFoundError("User", id)
	}
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return models.NewTransportError("user update", err)
	}
	r.log.LogWrite(ctx, "update", map[string]any{"user_id": id})
	return nil
}

func (r *userRepository) SetNotificationToken(ctx context.Context, id, token string) error {
	err := r.store.Update(ctx, docstore.UserPath(id), map[string]any{
		"fcmToken":  token,
		"updatedAt": docstore.ServerTimestamp(),
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return models.NewNotFoundError("User", id)
	}
	if err != nil {
		return models.NewTransportError("token set", err)
	}
	return nil
}

func (r *userRepository) RemoveNotificationToken(ctx context.Context, id string) error {
	err := r.store.Update(ctx, docstore.UserPath(id), map[string]any{
		"fcmToken":  docstore.DeleteField(),
		"updatedAt": docstore.ServerTimestamp(),
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return models.NewNotFoundError("User", id)
	}
	if err != nil {
		return models.NewTransportError("token remove", err)
	}
	return nil
}

func decodeUser(id string, data map[string]any) *models.User {
	return &models.User{
		ID:          id,
		DisplayName: asString(data, "displayName"),
		Bio:         asString(data, "bio"),
		PhotoBase64: asString(data, "photoBase64"),
		FCMToken:    asString(data, "fcmToken"),
		CreatedAt:   asTime(data, "createdAt"),
		UpdatedAt:   asTime(data, "updatedAt"),
	}
}
