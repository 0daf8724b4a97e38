package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

const createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	content TEXT NOT NULL,
	media TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO posts (user_id, content, media, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		post.UserID,
		post.Content,
		post.Media,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("post last insert id: %w", err)
	}
	post.ID = id
	return id, nil
}

const selectPostColumns = `
SELECT id, user_id, content, media, created_at, updated_at
FROM posts`

func (r *PostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, selectPostColumns+` WHERE id = ?`, id)
	return scanPost(row)
}

func (r *PostRepository) List(ctx context.Context) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, selectPostColumns+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *PostRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, selectPostColumns+` WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list posts by user: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *PostRepository) ListByFollowed(ctx context.Context, followerID int64) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT p.id, p.user_id, p.content, p.media, p.created_at, p.updated_at
FROM posts p
JOIN follows f ON f.following_id = p.user_id
WHERE f.follower_id = ?
ORDER BY p.id ASC`,
		followerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list followed posts: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *PostRepository) Search(ctx context.Context, substring string) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		selectPostColumns+` WHERE LOWER(content) LIKE '%' || LOWER(?) || '%' ORDER BY created_at DESC, id DESC`,
		substring,
	)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	post.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
UPDATE posts SET content = ?, media = ?, updated_at = ?
WHERE id = ?`,
		post.Content,
		post.Media,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("post: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("post: %w", repository.ErrNotFound)
	}
	return nil
}

func collectPosts(rows *sql.Rows) ([]domain.Post, error) {
	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

func scanPost(row interface {
	Scan(dest ...any) error
}) (*domain.Post, error) {
	var post domain.Post
	if err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Content,
		&post.Media,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &post, nil
}
