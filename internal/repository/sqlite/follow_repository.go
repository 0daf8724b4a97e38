package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

const createFollowsTable = `
CREATE TABLE IF NOT EXISTS follows (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	follower_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	following_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL,
	UNIQUE (follower_id, following_id)
);
`

type FollowRepository struct {
	db *sql.DB
}

func NewFollowRepository(db *sql.DB) repository.FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createFollowsTable); err != nil {
		return fmt.Errorf("create follows table: %w", err)
	}
	return nil
}

func (r *FollowRepository) Create(ctx context.Context, followerID, followingID int64) (bool, error) {
	// INSERT OR IGNORE makes the toggle race benign: the loser of a
	// concurrent insert simply observes zero affected rows.
	res, err := r.db.ExecContext(ctx, `
INSERT OR IGNORE INTO follows (follower_id, following_id, created_at)
VALUES (?, ?, ?)`,
		followerID,
		followingID,
		time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("insert follow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("follow rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *FollowRepository) Delete(ctx context.Context, followerID, followingID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID,
		followingID,
	)
	if err != nil {
		return false, fmt.Errorf("delete follow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unfollow rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *FollowRepository) ListFollowing(ctx context.Context, followerID int64) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT u.id, u.username, u.email, u.password_hash, u.bio, u.profile_picture, u.created_at, u.updated_at
FROM users u
JOIN follows f ON f.following_id = u.id
WHERE f.follower_id = ?
ORDER BY f.id ASC`,
		followerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (r *FollowRepository) ListFollowers(ctx context.Context, followingID int64) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT u.id, u.username, u.email, u.password_hash, u.bio, u.profile_picture, u.created_at, u.updated_at
FROM users u
JOIN follows f ON f.follower_id = u.id
WHERE f.following_id = ?
ORDER BY f.id ASC`,
		followingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}
