package service

import (
	"context"
	"testing"

	"glimpse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_AddComment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rejects empty text", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		id := e.createPost(t, "u1", "post")
		_, err := e.comments.AddComment(ctx, AddCommentInput{PostID: id, AuthorID: "u2", Text: "  "})
		assertValidationError(t, err)
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		_, err := e.comments.AddComment(ctx, AddCommentInput{PostID: "ghost", AuthorID: "u1", Text: "hi"})
		assertNotFoundError(t, err)
	})

	t.Run("writes comment and bumps counter", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		e.createUser(t, "u2", "Grace")
		id := e.createPost(t, "u1", "post")

		commentID, err := e.comments.AddComment(ctx, AddCommentInput{PostID: id, AuthorID: "u2", Text: "nice"})
		require.NoError(t, err)
		assert.NotEmpty(t, commentID)

		comments, err := e.comments.ListComments(ctx, id)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, "nice", comments[0].Text)
		assert.Equal(t, "Grace", comments[0].AuthorName)
		assert.Equal(t, "u2", comments[0].UserID)

		post, err := e.posts.GetPost(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, post.CommentsCount)
	})

	t.Run("placeholder author when profile missing", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		id := e.createPost(t, "u1", "post")

		_, err := e.comments.AddComment(ctx, AddCommentInput{PostID: id, AuthorID: "ghost", Text: "hi"})
		require.NoError(t, err)

		comments, err := e.comments.ListComments(ctx, id)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, models.PlaceholderDisplayName, comments[0].AuthorName)
	})

	t.Run("counter failure keeps the comment", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		id := e.createPost(t, "u1", "post")

		incErr := models.NewTransportError("comments count", nil)
		svc := NewCommentService(
			e.commentRepo,
			&failingPostRepo{PostRepository: e.postRepo, incErr: incErr},
			e.userRepo,
		)

		commentID, err := svc.AddComment(ctx, AddCommentInput{PostID: id, AuthorID: "u2", Text: "hi"})
		require.Error(t, err)
		assert.NotEmpty(t, commentID)

		// The comment landed even though the counter write failed.
		comments, err := e.comments.ListComments(ctx, id)
		require.NoError(t, err)
		assert.Len(t, comments, 1)

		post, err := e.posts.GetPost(ctx, id)
		require.NoError(t, err)
		assert.Zero(t, post.CommentsCount)
	})
}

func TestCommentService_ListComments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("oldest first", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		id := e.createPost(t, "u1", "post")

		for _, text := range []string{"first", "second", "third"} {
			_, err := e.comments.AddComment(ctx, AddCommentInput{PostID: id, AuthorID: "u2", Text: text})
			require.NoError(t, err)
		}

		comments, err := e.comments.ListComments(ctx, id)
		require.NoError(t, err)
		require.Len(t, comments, 3)
		assert.Equal(t, "first", comments[0].Text)
		assert.Equal(t, "third", comments[2].Text)
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		_, err := e.comments.ListComments(ctx, "ghost")
		assertNotFoundError(t, err)
	})
}
