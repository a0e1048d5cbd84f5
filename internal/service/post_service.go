// Package service implements the social graph and feed engine: the
// read-modify-write protocols for posts, comments, reactions and follow
// edges, and the live subscription wiring that joins author profiles
// into feed items. All state lives behind the docstore contract; the
// services here hold no durable state of their own.
package service

import (
	"context"
	"strings"

	"glimpse/internal/models"
	"glimpse/internal/observability"
	"glimpse/internal/repository"
)

// PostService owns post creation, editing, deletion and reaction toggles.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	AuthorID    string
	Text        string
	ImageBase64 string
}

type UpdatePostInput struct {
	PostID   string
	AuthorID string
	Text     string
}

type DeletePostInput struct {
	PostID      string
	RequesterID string
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

// CreatePost validates and writes a new post with empty reaction sets and
// zero counters. The author's current display name and photo are
// snapshotted into the document for first render; feed subscriptions
// override them with the live profile on every read.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (id string, err error) {
	ctx, span := observability.Tracer.Start(ctx, "PostService.CreatePost")
	defer span.End()
	defer func() { observability.RecordEngineOp("create_post", err) }()

	if strings.TrimSpace(in.Text) == "" {
		return "", models.NewValidationError("Post text is required")
	}

	authorName := models.PlaceholderDisplayName
	authorPhoto := ""
	author, err := s.userRepo.GetByID(ctx, in.AuthorID)
	if err == nil {
		authorName = author.DisplayName
		authorPhoto = author.PhotoBase64
	} else if !models.HasCode(err, models.CodeNotFound) {
		return "", err
	}

	return s.postRepo.Create(ctx, repository.NewPostFields{
		AuthorID:    in.AuthorID,
		Text:        in.Text,
		ImageBase64: in.ImageBase64,
		AuthorName:  authorName,
		AuthorPhoto: authorPhoto,
	})
}

// GetPost returns one post by id.
func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// UpdatePost edits a post's text. Authorship is checked against the
// authoritative document, never the caller's cached copy.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (err error) {
	ctx, span := observability.Tracer.Start(ctx, "PostService.UpdatePost")
	defer span.End()
	defer func() { observability.RecordEngineOp("update_post", err) }()

	if strings.TrimSpace(in.Text) == "" {
		return models.NewValidationError("Post text is required")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if post.UserID != in.AuthorID {
		return models.NewUnauthorizedError("You can only update your own posts")
	}

	return s.postRepo.UpdateText(ctx, in.PostID, in.Text)
}

// DeletePost removes the post document. Comments under the post are left
// in place; the comment subscription is keyed by post id, so orphans are
// never rendered once the post is gone.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (err error) {
	ctx, span := observability.Tracer.Start(ctx, "PostService.DeletePost")
	defer span.End()
	defer func() { observability.RecordEngineOp("delete_post", err) }()

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if post.UserID != in.RequesterID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}

	return s.postRepo.Delete(ctx, in.PostID)
}

// ToggleLike flips userID's like on a post. Liking removes any dislike
// by the same user in the same atomic commit, so a user holds at most
// one reaction and every counter mirrors its set. Applying the toggle
// twice restores the prior state.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (post *models.Post, err error) {
	ctx, span := observability.Tracer.Start(ctx, "PostService.ToggleLike")
	defer span.End()
	defer func() { observability.RecordEngineOp("toggle_like", err) }()

	return s.postRepo.ToggleLike(ctx, postID, userID)
}

// ToggleDislike is symmetric to ToggleLike.
func (s *PostService) ToggleDislike(ctx context.Context, postID, userID string) (post *models.Post, err error) {
	ctx, span := observability.Tracer.Start(ctx, "PostService.ToggleDislike")
	defer span.End()
	defer func() { observability.RecordEngineOp("toggle_dislike", err) }()

	return s.postRepo.ToggleDislike(ctx, postID, userID)
}
