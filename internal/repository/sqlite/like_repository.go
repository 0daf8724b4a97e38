package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"social-api/internal/repository"
)

const createLikesTable = `
CREATE TABLE IF NOT EXISTS likes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL,
	UNIQUE (user_id, post_id)
);
`

type LikeRepository struct {
	db *sql.DB
}

func NewLikeRepository(db *sql.DB) repository.LikeRepository {
	return &LikeRepository{db: db}
}

func (r *LikeRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createLikesTable); err != nil {
		return fmt.Errorf("create likes table: %w", err)
	}
	return nil
}

func (r *LikeRepository) Create(ctx context.Context, userID, postID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT OR IGNORE INTO likes (user_id, post_id, created_at)
VALUES (?, ?, ?)`,
		userID,
		postID,
		time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("like rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *LikeRepository) Delete(ctx context.Context, userID, postID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM likes WHERE user_id = ? AND post_id = ?`,
		userID,
		postID,
	)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unlike rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *LikeRepository) CountByPost(ctx context.Context, postID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

func (r *LikeRepository) Exists(ctx context.Context, userID, postID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM likes WHERE user_id = ? AND post_id = ?`,
		userID,
		postID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("like exists: %w", err)
	}
	return true, nil
}
