package service

import (
	"context"

	"glimpse/internal/docstore"
	"glimpse/internal/models"
	"glimpse/internal/observability"
	"glimpse/internal/repository"
)

// FeedService exposes the live read side of the engine: feed and comment
// subscriptions whose items carry the author's current profile. Snapshots
// arrive in store order per subscription; author lookups are independent
// point reads and may reflect a different instant than the list itself.
type FeedService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
}

// FeedQuery bounds a feed subscription. AuthorID, when set, restricts
// the feed to one author (the "my posts" view).
type FeedQuery struct {
	Limit    int
	AuthorID string
}

func NewFeedService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
) *FeedService {
	return &FeedService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
	}
}

// Subscribe opens a live feed query, newest first, bounded to q.Limit.
// Every upstream snapshot is re-joined against the authors' current
// profiles before delivery; an empty feed delivers an empty slice. The
// returned cancel func releases the subscription.
func (s *FeedService) Subscribe(ctx context.Context, q FeedQuery, handler func([]*models.Post)) (docstore.CancelFunc, error) {
	observability.LogSubscription(ctx, "open", docstore.PostsCollection, map[string]any{
		"limit":     q.Limit,
		"author_id": q.AuthorID,
	})
	return s.postRepo.SubscribeLatest(ctx, q.Limit, q.AuthorID, func(posts []*models.Post) {
		s.joinPostAuthors(ctx, posts)
		handler(posts)
	})
}

// SubscribeComments opens a live query over one post's comments, oldest
// first, with the same per-item author join keyed on each comment's
// author id. The denormalized name and photo stored on the comment are
// only used when the profile cannot be resolved.
func (s *FeedService) SubscribeComments(ctx context.Context, postID string, handler func([]*models.Comment)) (docstore.CancelFunc, error) {
	observability.LogSubscription(ctx, "open", docstore.CommentsCollectionPath(postID), nil)
	return s.commentRepo.Subscribe(ctx, postID, func(comments []*models.Comment) {
		s.joinCommentAuthors(ctx, comments)
		handler(comments)
	})
}

// joinPostAuthors resolves each distinct author once per snapshot and
// overwrites the write-time snapshot fields with the live profile.
func (s *FeedService) joinPostAuthors(ctx context.Context, posts []*models.Post) {
	profiles := make(map[string]*models.User)
	for _, post := range posts {
		profile, ok := profiles[post.UserID]
		if !ok {
			profile = s.resolveAuthor(ctx, post.UserID)
			profiles[post.UserID] = profile
		}
		if profile != nil {
			post.AuthorName = profile.DisplayName
			post.AuthorPhoto = profile.PhotoBase64
		} else if post.AuthorName == "" {
			post.AuthorName = models.PlaceholderDisplayName
		}
	}
}

func (s *FeedService) joinCommentAuthors(ctx context.Context, comments []*models.Comment) {
	profiles := make(map[string]*models.User)
	for _, comment := range comments {
		profile, ok := profiles[comment.UserID]
		if !ok {
			profile = s.resolveAuthor(ctx, comment.UserID)
			profiles[comment.UserID] = profile
		}
		if profile != nil {
			comment.AuthorName = profile.DisplayName
			comment.AuthorPhoto = profile.PhotoBase64
		} else if comment.AuthorName == "" {
			comment.AuthorName = models.PlaceholderDisplayName
		}
	}
}

// resolveAuthor returns the author's current profile, or nil when the
// profile is missing or the point read fails. Callers fall back to the
// stored snapshot fields, then to the placeholder name.
func (s *FeedService) resolveAuthor(ctx context.Context, userID string) *models.User {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if !models.HasCode(err, models.CodeNotFound) {
			observability.GlobalLogger.WarnContext(ctx, "author profile read failed",
				"user_id", userID, "error", err.Error())
		}
		return nil
	}
	return user
}
