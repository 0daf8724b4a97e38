package domain

import "time"

// User represents a registered account of the network.
type User struct {
	ID             int64
	Username       string
	Email          string
	PasswordHash   string
	Bio            string
	ProfilePicture string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Follow is a directed edge meaning follower receives the followed
// user's posts in their following feed.
type Follow struct {
	ID          int64
	FollowerID  int64
	FollowingID int64
	CreatedAt   time.Time
}
