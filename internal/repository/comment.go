package repository

import (
	"context"

	"glimpse/internal/docstore"
	"glimpse/internal/models"
	"glimpse/internal/observability"
)

// NewCommentFields is the document payload for a comment create.
type NewCommentFields struct {
	PostID      string
	AuthorID    string
	Text        string
	AuthorName  string
	AuthorPhoto string
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, fields NewCommentFields) (string, error)
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	Subscribe(ctx context.Context, postID string, fn func([]*models.Comment)) (docstore.CancelFunc, error)
}

// commentRepository implements CommentRepository
type commentRepository struct {
	store docstore.Store
	log   *observability.StoreLogger
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(store docstore.Store) CommentRepository {
	return &commentRepository{
		store: store,
		log:   observability.NewStoreLogger("comments"),
	}
}

func (r *commentRepository) Create(ctx context.Context, fields NewCommentFields) (string, error) {
	data := map[string]any{
		"userId":          fields.AuthorID,
		"text":            fields.Text,
		"userDisplayName": fields.AuthorName,
		"userPhotoUrl":    fields.AuthorPhoto,
		"createdAt":       docstore.ServerTimestamp(),
	}
	id, err := r.store.Add(ctx, docstore.CommentsCollectionPath(fields.PostID), data)
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return "", models.NewTransportError("comment create", err)
	}
	r.log.LogWrite(ctx, "create", map[string]any{
		"post_id":    fields.PostID,
		"comment_id": id,
		"user_id":    fields.AuthorID,
	})
	return id, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	docs, err := r.store.Query(ctx, commentsQuery(postID))
	if err != nil {
		return nil, models.NewTransportError("comment list", err)
	}
	comments := make([]*models.Comment, len(docs))
	for i, doc := range docs {
		comments[i] = decodeComment(postID, doc.ID, doc.Data)
	}
	return comments, nil
}

// Subscribe opens a live query over one post's comments, oldest first.
func (r *commentRepository) Subscribe(ctx context.Context, postID string, fn func([]*models.Comment)) (docstore.CancelFunc, error) {
	return r.store.Subscribe(ctx, commentsQuery(postID), func(docs []*docstore.Document) {
		comments := make([]*models.Comment, len(docs))
		for i, doc := range docs {
			comments[i] = decodeComment(postID, doc.ID, doc.Data)
		}
		fn(comments)
	})
}

func commentsQuery(postID string) docstore.Query {
	return docstore.Query{
		Collection: docstore.CommentsCollectionPath(postID),
		OrderBy:    "createdAt",
	}
}

func decodeComment(postID, id string, data map[string]any) *models.Comment {
	return &models.Comment{
		ID:          id,
		PostID:      postID,
		UserID:      asString(data, "userId"),
		Text:        asString(data, "text"),
		AuthorName:  asString(data, "userDisplayName"),
		AuthorPhoto: asString(data, "userPhotoUrl"),
		CreatedAt:   asTime(data, "createdAt"),
	}
}
