package models

import "time"

// Comment is a comment under a post. Comments are immutable once written
// and are listed in ascending creation order within their post.
type Comment struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
	Text   string `json:"text"`
	// AuthorName and AuthorPhoto are live-joined on read; the stored
	// copies exist only so a client can render without the join.
	AuthorName  string    `json:"author_name"`
	AuthorPhoto string    `json:"author_photo,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
