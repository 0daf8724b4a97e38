package repository

import (
	"context"

	"social-api/internal/domain"
)

// PostRepository exposes persistence operations for posts.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	// List returns all posts newest first.
	List(ctx context.Context) ([]domain.Post, error)
	// ListByUser returns a single author's posts in insertion order.
	ListByUser(ctx context.Context, userID int64) ([]domain.Post, error)
	// ListByFollowed returns posts authored by users the follower follows,
	// in insertion order.
	ListByFollowed(ctx context.Context, followerID int64) ([]domain.Post, error)
	// Search matches the content substring case-insensitively, newest first.
	Search(ctx context.Context, substring string) ([]domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id int64) error
}

// CommentRepository manages comments attached to posts.
type CommentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, comment *domain.Comment) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error)
	CountByPost(ctx context.Context, postID int64) (int, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id int64) error
}

// LikeRepository manages like edges between users and posts.
type LikeRepository interface {
	Init(ctx context.Context) error
	// Create inserts the (user, post) edge unless it already exists and
	// reports whether a new edge was created.
	Create(ctx context.Context, userID, postID int64) (bool, error)
	Delete(ctx context.Context, userID, postID int64) (bool, error)
	CountByPost(ctx context.Context, postID int64) (int, error)
	Exists(ctx context.Context, userID, postID int64) (bool, error)
}
