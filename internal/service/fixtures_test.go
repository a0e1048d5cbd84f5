package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"glimpse/internal/docstore/memstore"
	"glimpse/internal/models"
	"glimpse/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// engine wires every service over one in-memory store, the way the demo
// binary does.
type engine struct {
	store       *memstore.Store
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository

	users    *UserService
	posts    *PostService
	comments *CommentService
	follows  *FollowService
	feed     *FeedService
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	var mu sync.Mutex
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store := memstore.NewWithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Millisecond)
		return now
	})

	e := &engine{
		store:       store,
		userRepo:    repository.NewUserRepository(store),
		postRepo:    repository.NewPostRepository(store),
		commentRepo: repository.NewCommentRepository(store),
		followRepo:  repository.NewFollowRepository(store),
	}
	e.users = NewUserService(e.userRepo)
	e.posts = NewPostService(e.postRepo, e.userRepo)
	e.comments = NewCommentService(e.commentRepo, e.postRepo, e.userRepo)
	e.follows = NewFollowService(e.followRepo, e.userRepo)
	e.feed = NewFeedService(e.postRepo, e.commentRepo, e.userRepo)
	return e
}

func (e *engine) createUser(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, e.users.CreateProfile(context.Background(), CreateProfileInput{
		ID:          id,
		DisplayName: name,
	}))
}

func (e *engine) createPost(t *testing.T, authorID, text string) string {
	t.Helper()
	id, err := e.posts.CreatePost(context.Background(), CreatePostInput{
		AuthorID: authorID,
		Text:     text,
	})
	require.NoError(t, err)
	return id
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation), "expected validation error, got %v", err)
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeUnauthorized), "expected unauthorized error, got %v", err)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeNotFound), "expected not found error, got %v", err)
}

// failingPostRepo delegates to the real repository but fails the comment
// counter write, exercising the partial-write path.
type failingPostRepo struct {
	repository.PostRepository
	incErr error
}

func (r *failingPostRepo) IncrementCommentsCount(_ context.Context, _ string, _ int64) error {
	return r.incErr
}

// failingUserRepo delegates to the real repository but fails point reads,
// exercising the author-join fallback.
type failingUserRepo struct {
	repository.UserRepository
	getErr error
}

func (r *failingUserRepo) GetByID(_ context.Context, _ string) (*models.User, error) {
	return nil, r.getErr
}
