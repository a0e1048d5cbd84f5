package service

import (
	"context"
	"testing"
	"time"

	"glimpse/internal/models"
	"glimpse/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectPosts(t *testing.T, ch chan []*models.Post) []*models.Post {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed snapshot")
		return nil
	}
}

func TestFeedService_Subscribe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("newest first with limit", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		e.createUser(t, "u1", "Ada")
		e.createPost(t, "u1", "oldest")
		middle := e.createPost(t, "u1", "middle")
		newest := e.createPost(t, "u1", "newest")

		snaps := make(chan []*models.Post, 16)
		cancel, err := e.feed.Subscribe(ctx, FeedQuery{Limit: 2}, func(posts []*models.Post) {
			snaps <- posts
		})
		require.NoError(t, err)
		defer cancel()

		posts := collectPosts(t, snaps)
		require.Len(t, posts, 2)
		assert.Equal(t, newest, posts[0].ID)
		assert.Equal(t, middle, posts[1].ID)
	})

	t.Run("empty feed delivers empty snapshot", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)

		snaps := make(chan []*models.Post, 1)
		cancel, err := e.feed.Subscribe(ctx, FeedQuery{Limit: 10}, func(posts []*models.Post) {
			snaps <- posts
		})
		require.NoError(t, err)
		defer cancel()

		assert.Empty(t, collectPosts(t, snaps))
	})

	t.Run("author filter", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		mine := e.createPost(t, "u1", "mine")
		e.createPost(t, "u2", "theirs")

		snaps := make(chan []*models.Post, 16)
		cancel, err := e.feed.Subscribe(ctx, FeedQuery{Limit: 10, AuthorID: "u1"}, func(posts []*models.Post) {
			snaps <- posts
		})
		require.NoError(t, err)
		defer cancel()

		posts := collectPosts(t, snaps)
		require.Len(t, posts, 1)
		assert.Equal(t, mine, posts[0].ID)
	})

	t.Run("new posts arrive live", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)

		snaps := make(chan []*models.Post, 16)
		cancel, err := e.feed.Subscribe(ctx, FeedQuery{Limit: 10}, func(posts []*models.Post) {
			snaps <- posts
		})
		require.NoError(t, err)
		defer cancel()

		require.Empty(t, collectPosts(t, snaps))

		id := e.createPost(t, "u1", "fresh")
		posts := collectPosts(t, snaps)
		require.Len(t, posts, 1)
		assert.Equal(t, id, posts[0].ID)
	})
}

func TestFeedService_AuthorJoin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rename shows on old posts", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		e.createUser(t, "u1", "Ada")
		e.createPost(t, "u1", "post")

		newName := "Countess"
		require.NoError(t, e.users.UpdateProfile(ctx, UpdateProfileInput{ID: "u1", DisplayName: &newName}))

		snaps := make(chan []*models.Post, 16)
		cancel, err := e.feed.Subscribe(ctx, FeedQuery{Limit: 10}, func(posts []*models.Post) {
			snaps <- posts
		})
		require.NoError(t, err)
		defer cancel()

		posts := collectPosts(t, snaps)
		require.Len(t, posts, 1)
		// The stored snapshot still says "Ada"; the join wins.
		assert.Equal(t, "Countess", posts[0].AuthorName)
	})

	t.Run("stored snapshot when profile read fails", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		e.createUser(t, "u1", "Ada")
		e.createPost(t, "u1", "post")

		broken := &failingUserRepo{
			UserRepository: e.userRepo,
			getErr:         models.NewTransportError("user get", nil),
		}
		feed := NewFeedService(e.postRepo, e.commentRepo, broken)

		snaps := make(chan []*models.Post, 16)
		cancel, err := feed.Subscribe(ctx, FeedQuery{Limit: 10}, func(posts []*models.Post) {
			snaps <- posts
		})
		require.NoError(t, err)
		defer cancel()

		posts := collectPosts(t, snaps)
		require.Len(t, posts, 1)
		assert.Equal(t, "Ada", posts[0].AuthorName)
	})

	t.Run("placeholder when nothing is known", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)

		// A post written with no author snapshot at all.
		_, err := e.postRepo.Create(ctx, repository.NewPostFields{AuthorID: "ghost", Text: "post"})
		require.NoError(t, err)

		snaps := make(chan []*models.Post, 16)
		cancel, err := e.feed.Subscribe(ctx, FeedQuery{Limit: 10}, func(posts []*models.Post) {
			snaps <- posts
		})
		require.NoError(t, err)
		defer cancel()

		posts := collectPosts(t, snaps)
		require.Len(t, posts, 1)
		assert.Equal(t, models.PlaceholderDisplayName, posts[0].AuthorName)
	})
}

func TestFeedService_SubscribeComments(t *testing.T) {
	t.Parallel()
	e := newEngine(t)
	ctx := context.Background()

	e.createUser(t, "u2", "Grace")
	id := e.createPost(t, "u1", "post")

	snaps := make(chan []*models.Comment, 16)
	cancel, err := e.feed.SubscribeComments(ctx, id, func(comments []*models.Comment) {
		snaps <- comments
	})
	require.NoError(t, err)
	defer cancel()

	collect := func() []*models.Comment {
		select {
		case snap := <-snaps:
			return snap
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for comment snapshot")
			return nil
		}
	}

	require.Empty(t, collect())

	_, err = e.comments.AddComment(ctx, AddCommentInput{PostID: id, AuthorID: "u2", Text: "first"})
	require.NoError(t, err)

	comments := collect()
	require.Len(t, comments, 1)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "Grace", comments[0].AuthorName)

	// A rename is visible on the next snapshot.
	newName := "Admiral"
	require.NoError(t, e.users.UpdateProfile(ctx, UpdateProfileInput{ID: "u2", DisplayName: &newName}))

	_, err = e.comments.AddComment(ctx, AddCommentInput{PostID: id, AuthorID: "u2", Text: "second"})
	require.NoError(t, err)

	comments = collect()
	require.Len(t, comments, 2)
	assert.Equal(t, "Admiral", comments[0].AuthorName)
	assert.Equal(t, "Admiral", comments[1].AuthorName)
}
