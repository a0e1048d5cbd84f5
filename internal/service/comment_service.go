package service

import (
	"context"
	"strings"

	"glimpse/internal/models"
	"glimpse/internal/observability"
	"glimpse/internal/repository"
)

// CommentService owns comment creation and listing. Comments are
// immutable once written.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	log         *observability.StoreLogger
}

type AddCommentInput struct {
	PostID   string
	AuthorID string
	Text     string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		log:         observability.NewStoreLogger("comments"),
	}
}

// AddComment appends a comment under a post and then increments the
// parent's comment counter. The two writes address different documents
// and are not atomic as a pair: when the counter write fails the comment
// stays and the counter under-reports. That window is logged but not
// repaired here.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (id string, err error) {
	ctx, span := observability.Tracer.Start(ctx, "CommentService.AddComment")
	defer span.End()
	defer func() { observability.RecordEngineOp("add_comment", err) }()

	if strings.TrimSpace(in.Text) == "" {
		return "", models.NewValidationError("Comment text is required")
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return "", err
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

	id, err = s.commentRepo.Create(ctx, repository.NewCommentFields{
		PostID:      in.PostID,
		AuthorID:    in.AuthorID,
		Text:        in.Text,
		AuthorName:  authorName,
		AuthorPhoto: authorPhoto,
	})
	if err != nil {
		return "", err
	}

	if err := s.postRepo.IncrementCommentsCount(ctx, in.PostID, 1); err != nil {
		s.log.LogPartialWrite(ctx, err, "comments count increment", map[string]any{
			"post_id":    in.PostID,
			"comment_id": id,
		})
		return id, err
	}
	return id, nil
}

// ListComments returns a post's comments oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}
