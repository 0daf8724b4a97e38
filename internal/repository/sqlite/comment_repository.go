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

const createCommentsTable = `
CREATE TABLE IF NOT EXISTS comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) repository.CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCommentsTable); err != nil {
		return fmt.Errorf("create comments table: %w", err)
	}
	return nil
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (int64, error) {
	comment.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO comments (user_id, post_id, content, created_at)
VALUES (?, ?, ?, ?)`,
		comment.UserID,
		comment.PostID,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("comment last insert id: %w", err)
	}
	comment.ID = id
	return id, nil
}

const selectCommentColumns = `
SELECT id, user_id, post_id, content, created_at
FROM comments`

func (r *CommentRepository) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	row := r.db.QueryRowContext(ctx, selectCommentColumns+` WHERE id = ?`, id)
	return scanComment(row)
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx, selectCommentColumns+` WHERE post_id = ? ORDER BY id ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) CountByPost(ctx context.Context, postID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}

func (r *CommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	res, err := r.db.ExecContext(ctx, `UPDATE comments SET content = ? WHERE id = ?`,
		comment.Content,
		comment.ID,
	)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("comment: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("comment: %w", repository.ErrNotFound)
	}
	return nil
}

func scanComment(row interface {
	Scan(dest ...any) error
}) (*domain.Comment, error) {
	var comment domain.Comment
	if err := row.Scan(
		&comment.ID,
		&comment.UserID,
		&comment.PostID,
		&comment.Content,
		&comment.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("comment: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	return &comment, nil
}
