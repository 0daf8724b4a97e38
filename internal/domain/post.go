package domain

import "time"

// Post is a piece of content published by a user. Media is an opaque
// reference into external blob storage.
type Post struct {
	ID        int64
	UserID    int64
	Content   string
	Media     string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Aggregates attached by the service layer, not persisted columns.
	LikeCount    int
	CommentCount int
	// Liked reports whether the requesting user likes this post. Only
	// meaningful on paths with an authenticated caller.
	Liked bool
}

// Comment belongs to exactly one post.
type Comment struct {
	ID        int64
	UserID    int64
	PostID    int64
	Content   string
	CreatedAt time.Time
}

// Like is a (user, post) edge toggled by the like action.
type Like struct {
	ID        int64
	UserID    int64
	PostID    int64
	CreatedAt time.Time
}
