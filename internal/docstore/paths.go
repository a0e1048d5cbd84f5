package docstore

import "fmt"

// Collection names and path helpers. The layout mirrors the backing
// database: users/{userId}, posts/{postId},
// posts/{postId}/comments/{commentId} and
// followers/{followerId}_{followingId}.
const (
	UsersCollection     = "users"
	PostsCollection     = "posts"
	FollowersCollection = "followers"
)

// UserPath returns the document path of a user profile.
func UserPath(userID string) string {
	return fmt.Sprintf("%s/%s", UsersCollection, userID)
}

// PostPath returns the document path of a post.
func PostPath(postID string) string {
	return fmt.Sprintf("%s/%s", PostsCollection, postID)
}

// CommentsCollectionPath returns the comments subcollection of a post.
func CommentsCollectionPath(postID string) string {
	return fmt.Sprintf("%s/%s/comments", PostsCollection, postID)
}

// CommentPath returns the document path of one comment.
func CommentPath(postID, commentID string) string {
	return fmt.Sprintf("%s/%s", CommentsCollectionPath(postID), commentID)
}

// FollowEdgeID builds the composite edge key, giving at most one edge per
// ordered (follower, following) pair.
func FollowEdgeID(followerID, followingID string) string {
	return fmt.Sprintf("%s_%s", followerID, followingID)
}

// FollowEdgePath returns the document path of a follow edge.
func FollowEdgePath(followerID, followingID string) string {
	return fmt.Sprintf("%s/%s", FollowersCollection, FollowEdgeID(followerID, followingID))
}
