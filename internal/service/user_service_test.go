package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("requires id", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		err := e.users.CreateProfile(ctx, CreateProfileInput{DisplayName: "Ada"})
		assertValidationError(t, err)
	})

	t.Run("requires display name", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		err := e.users.CreateProfile(ctx, CreateProfileInput{ID: "u1", DisplayName: "   "})
		assertValidationError(t, err)
	})

	t.Run("roundtrip", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		require.NoError(t, e.users.CreateProfile(ctx, CreateProfileInput{
			ID:          "u1",
			DisplayName: "Ada",
			Bio:         "mathematician",
		}))

		user, err := e.users.GetProfile(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "Ada", user.DisplayName)
		assert.Equal(t, "mathematician", user.Bio)
	})
}

func TestUserService_GetProfile_MissingIsNotAnError(t *testing.T) {
	t.Parallel()
	e := newEngine(t)

	user, err := e.users.GetProfile(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rejects empty display name", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		e.createUser(t, "u1", "Ada")

		empty := " "
		err := e.users.UpdateProfile(ctx, UpdateProfileInput{ID: "u1", DisplayName: &empty})
		assertValidationError(t, err)
	})

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		require.NoError(t, e.users.CreateProfile(ctx, CreateProfileInput{
			ID:          "u1",
			DisplayName: "Ada",
			Bio:         "old bio",
		}))

		bio := "new bio"
		require.NoError(t, e.users.UpdateProfile(ctx, UpdateProfileInput{ID: "u1", Bio: &bio}))

		user, err := e.users.GetProfile(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "Ada", user.DisplayName)
		assert.Equal(t, "new bio", user.Bio)
	})

	t.Run("missing profile", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		name := "New"
		err := e.users.UpdateProfile(ctx, UpdateProfileInput{ID: "ghost", DisplayName: &name})
		assertNotFoundError(t, err)
	})
}
