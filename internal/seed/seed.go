// Package seed provides helpers to create demo data in a document
// store. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"glimpse/internal/models"
	"glimpse/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// Options controls how much demo data a seed run creates.
type Options struct {
	Users            int
	PostsPerUser     int
	CommentsPerPost  int
	FollowsPerUser   int
	ReactionsPerPost int
}

// DefaultOptions returns a small but lively dataset.
func DefaultOptions() Options {
	return Options{
		Users:            8,
		PostsPerUser:     3,
		CommentsPerPost:  2,
		FollowsPerUser:   3,
		ReactionsPerPost: 4,
	}
}

// Seeder populates a store through the engine's own services so every
// document carries the exact shape the engine writes.
type Seeder struct {
	users    *service.UserService
	posts    *service.PostService
	comments *service.CommentService
	follows  *service.FollowService
	rng      *rand.Rand
}

// NewSeeder creates a Seeder over the given services.
func NewSeeder(
	users *service.UserService,
	posts *service.PostService,
	comments *service.CommentService,
	follows *service.FollowService,
) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		users:    users,
		posts:    posts,
		comments: comments,
		follows:  follows,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run creates users, posts, comments, follow edges and reactions.
// Returns the seeded user ids.
func (s *Seeder) Run(ctx context.Context, opts Options) ([]string, error) {
	userIDs := make([]string, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		id := fmt.Sprintf("user-%s", gofakeit.LetterN(8))
		err := s.users.CreateProfile(ctx, service.CreateProfileInput{
			ID:          id,
			DisplayName: gofakeit.Username(),
			Bio:         gofakeit.Sentence(8),
		})
		if err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}

	var postIDs []string
	for _, userID := range userIDs {
		for i := 0; i < opts.PostsPerUser; i++ {
			postID, err := s.posts.CreatePost(ctx, service.CreatePostInput{
				AuthorID: userID,
				Text:     gofakeit.HipsterParagraph(1, 2, 6, " "),
			})
			if err != nil {
				return nil, err
			}
			postIDs = append(postIDs, postID)
		}
	}

	for _, postID := range postIDs {
		for i := 0; i < opts.CommentsPerPost; i++ {
			author := userIDs[s.rng.Intn(len(userIDs))]
			_, err := s.comments.AddComment(ctx, service.AddCommentInput{
				PostID:   postID,
				AuthorID: author,
				Text:     gofakeit.HipsterSentence(7),
			})
			if err != nil {
				return nil, err
			}
		}
		for i := 0; i < opts.ReactionsPerPost; i++ {
			user := userIDs[s.rng.Intn(len(userIDs))]
			if s.rng.Intn(3) == 0 {
				if _, err := s.posts.ToggleDislike(ctx, postID, user); err != nil {
					return nil, err
				}
			} else {
				if _, err := s.posts.ToggleLike(ctx, postID, user); err != nil {
					return nil, err
				}
			}
		}
	}

	for _, follower := range userIDs {
		for i := 0; i < opts.FollowsPerUser; i++ {
			target := userIDs[s.rng.Intn(len(userIDs))]
			if target == follower {
				continue
			}
			if _, err := s.follows.Toggle(ctx, follower, target); err != nil {
				if models.HasCode(err, models.CodeSelfFollow) {
					continue
				}
				return nil, err
			}
		}
	}

	return userIDs, nil
}
