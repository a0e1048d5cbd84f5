package models

import "time"

// Post represents a feed post joined with its author's live profile.
//
// Likes and Dislikes hold user ids; LikesCount and DislikesCount mirror
// their lengths and a user id appears in at most one of the two sets.
// Every successful mutation preserves both properties.
type Post struct {
	ID            string   `json:"id"`
	UserID        string   `json:"user_id"`
	Text          string   `json:"text"`
	ImageBase64   string   `json:"image_base64,omitempty"`
	Likes         []string `json:"likes"`
	LikesCount    int      `json:"likes_count"`
	Dislikes      []string `json:"dislikes"`
	DislikesCount int      `json:"dislikes_count"`
	CommentsCount int      `json:"comments_count"`
	// AuthorName and AuthorPhoto are resolved from the author's current
	// profile at read time; the values stored on the document are a
	// write-time snapshot used only as a display fallback.
	AuthorName  string    `json:"author_name"`
	AuthorPhoto string    `json:"author_photo,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LikedBy reports whether userID is in the like set.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// DislikedBy reports whether userID is in the dislike set.
func (p *Post) DislikedBy(userID string) bool {
	for _, id := range p.Dislikes {
		if id == userID {
			return true
		}
	}
	return false
}
