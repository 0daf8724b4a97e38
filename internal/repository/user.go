package repository

import (
	"context"

	"social-api/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// SearchByUsername matches the username substring case-insensitively.
	// An empty substring matches every user.
	SearchByUsername(ctx context.Context, substring string) ([]domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
}

// FollowRepository manages directed follow edges.
type FollowRepository interface {
	Init(ctx context.Context) error
	// Create inserts the edge unless it already exists. The boolean reports
	// whether a new edge was created; a unique-constraint race degrades to
	// created=false.
	Create(ctx context.Context, followerID, followingID int64) (bool, error)
	Delete(ctx context.Context, followerID, followingID int64) (bool, error)
	// ListFollowing returns the users the given user follows, in edge
	// creation order. ListFollowers is the reverse side.
	ListFollowing(ctx context.Context, followerID int64) ([]domain.User, error)
	ListFollowers(ctx context.Context, followingID int64) ([]domain.User, error)
}
