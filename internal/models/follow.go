package models

import "time"

// FollowEdge records that FollowerID follows FollowingID. The document id
// is the concatenation "followerId_followingId", which gives at most one
// edge per ordered pair. Follower and following counts are never stored;
// they are computed by counting edges.
type FollowEdge struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}
