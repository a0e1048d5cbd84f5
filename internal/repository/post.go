package repository

import (
	"context"
	"errors"

	"glimpse/internal/docstore"
	"glimpse/internal/models"
	"glimpse/internal/observability"
)

// NewPostFields is the document payload for a post create. Author name
// and photo are the write-time snapshot; live reads re-join the profile.
type NewPostFields struct {
	AuthorID    string
	Text        string
	ImageBase64 string
	AuthorName  string
	AuthorPhoto string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, fields NewPostFields) (string, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	UpdateText(ctx context.Context, id, text string) error
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID, userID string) (*models.Post, error)
	ToggleDislike(ctx context.Context, postID, userID string) (*models.Post, error)
	IncrementCommentsCount(ctx context.Context, postID string, delta int64) error
	SubscribeLatest(ctx context.Context, limit int, authorID string, fn func([]*models.Post)) (docstore.CancelFunc, error)
}

// postRepository implements PostRepository
type postRepository struct {
	store docstore.Store
	log   *observability.StoreLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(store docstore.Store) PostRepository {
	return &postRepository{
		store: store,
		log:   observability.NewStoreLogger(docstore.PostsCollection),
	}
}

func (r *postRepository) Create(ctx context.Context, fields NewPostFields) (string, error) {
	data := map[string]any{
		"userId":          fields.AuthorID,
		"text":            fields.Text,
		"imageBase64":     fields.ImageBase64,
		"userDisplayName": fields.AuthorName,
		"userPhotoUrl":    fields.AuthorPhoto,
		"likes":           []any{},
		"likesCount":      int64(0),
		"dislikes":        []any{},
		"dislikesCount":   int64(0),
		"commentsCount":   int64(0),
		"createdAt":       docstore.ServerTimestamp(),
		"updatedAt":       docstore.ServerTimestamp(),
	}
	id, err := r.store.Add(ctx, docstore.PostsCollection, data)
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return "", models.NewTransportError("post create", err)
	}
	r.log.LogWrite(ctx, "create", map[string]any{"post_id": id, "user_id": fields.AuthorID})
	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	doc, err := r.store.Get(ctx, docstore.PostPath(id))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, models.NewNotFoundError("Post", id)
	}
	if err != nil {
		return nil, models.NewTransportError("post get", err)
	}
	return decodePost(id, doc.Data), nil
}

func (r *postRepository) UpdateText(ctx context.Context, id, text string) error {
	err := r.store.Update(ctx, docstore.PostPath(id), map[string]any{
		"text":      text,
		"updatedAt": docstore.ServerTimestamp(),
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return models.NewNotFoundError("Post", id)
	}
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return models.NewTransportError("post update", err)
	}
	r.log.LogWrite(ctx, "update", map[string]any{"post_id": id})
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, docstore.PostPath(id)); err != nil {
		r.log.LogError(ctx, err, "delete")
		return models.NewTransportError("post delete", err)
	}
	r.log.LogWrite(ctx, "delete", map[string]any{"post_id": id})
	return nil
}

// ToggleLike flips userID's membership in the like set inside one
// optimistic transaction. Adding a like also clears any dislike by the
// same user, so both counters and both sets move in a single commit and
// concurrent togglers cannot leave a counter disagreeing with its set.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	return r.toggleReaction(ctx, postID, userID, "likes", "likesCount", "dislikes", "dislikesCount")
}

// ToggleDislike is symmetric to ToggleLike in the opposite direction.
func (r *postRepository) ToggleDislike(ctx context.Context, postID, userID string) (*models.Post, error) {
	return r.toggleReaction(ctx, postID, userID, "dislikes", "dislikesCount", "likes", "likesCount")
}

func (r *postRepository) toggleReaction(ctx context.Context, postID, userID, set, count, oppositeSet, oppositeCount string) (*models.Post, error) {
	err := r.store.Transact(ctx, docstore.PostPath(postID), func(doc *docstore.Document) (map[string]any, error) {
		post := decodePost(postID, doc.Data)

		members := post.Likes
		opposite := post.Dislikes
		if set == "dislikes" {
			members, opposite = opposite, members
		}

		fields := map[string]any{"updatedAt": docstore.ServerTimestamp()}
		if contains(members, userID) {
			fields[set] = docstore.ArrayRemove(userID)
			fields[count] = docstore.Increment(-1)
			return fields, nil
		}

		fields[set] = docstore.ArrayUnion(userID)
		fields[count] = docstore.Increment(1)
		if contains(opposite, userID) {
			fields[oppositeSet] = docstore.ArrayRemove(userID)
			fields[oppositeCount] = docstore.Increment(-1)
		}
		return fields, nil
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, models.NewNotFoundError("Post", postID)
	}
	if err != nil {
		r.log.LogError(ctx, err, "toggle "+set)
		return nil, models.NewTransportError("post toggle", err)
	}
	return r.GetByID(ctx, postID)
}

func (r *postRepository) IncrementCommentsCount(ctx context.Context, postID string, delta int64) error {
	err := r.store.Update(ctx, docstore.PostPath(postID), map[string]any{
		"commentsCount": docstore.Increment(delta),
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return models.NewNotFoundError("Post", postID)
	}
	if err != nil {
		return models.NewTransportError("comments count", err)
	}
	return nil
}

// SubscribeLatest opens a live query over posts ordered newest first,
// optionally restricted to one author. fn receives the decoded result
// set on every change, in store snapshot order.
func (r *postRepository) SubscribeLatest(ctx context.Context, limit int, authorID string, fn func([]*models.Post)) (docstore.CancelFunc, error) {
	q := docstore.Query{
		Collection: docstore.PostsCollection,
		OrderBy:    "createdAt",
		Desc:       true,
		Limit:      limit,
	}
	if authorID != "" {
		q.Where = append(q.Where, docstore.Cond{Field: "userId", Value: authorID})
	}
	return r.store.Subscribe(ctx, q, func(docs []*docstore.Document) {
		posts := make([]*models.Post, len(docs))
		for i, doc := range docs {
			posts[i] = decodePost(doc.ID, doc.Data)
		}
		fn(posts)
	})
}

func decodePost(id string, data map[string]any) *models.Post {
	return &models.Post{
		ID:            id,
		UserID:        asString(data, "userId"),
		Text:          asString(data, "text"),
		ImageBase64:   asString(data, "imageBase64"),
		Likes:         asStringSlice(data, "likes"),
		LikesCount:    asInt(data, "likesCount"),
		Dislikes:      asStringSlice(data, "dislikes"),
		DislikesCount: asInt(data, "dislikesCount"),
		CommentsCount: asInt(data, "commentsCount"),
		AuthorName:    asString(data, "userDisplayName"),
		AuthorPhoto:   asString(data, "userPhotoUrl"),
		CreatedAt:     asTime(data, "createdAt"),
		UpdatedAt:     asTime(data, "updatedAt"),
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
