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

const createScheduledPostsTable = `
CREATE TABLE IF NOT EXISTS scheduled_posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	content TEXT NOT NULL,
	media TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	execute_after DATETIME NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	published_at DATETIME
);
`

type ScheduledPostRepository struct {
	db *sql.DB
}

func NewScheduledPostRepository(db *sql.DB) repository.ScheduledPostRepository {
	return &ScheduledPostRepository{db: db}
}

func (r *ScheduledPostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createScheduledPostsTable); err != nil {
		return fmt.Errorf("create scheduled_posts table: %w", err)
	}
	return nil
}

func (r *ScheduledPostRepository) Create(ctx context.Context, sp *domain.ScheduledPost) (int64, error) {
	sp.CreatedAt = time.Now().UTC()
	if sp.Status == "" {
		sp.Status = domain.ScheduledPostStatusPending
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO scheduled_posts (user_id, content, media, status, execute_after, error_message, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sp.UserID,
		sp.Content,
		sp.Media,
		sp.Status,
		sp.ExecuteAfter,
		sp.ErrorMessage,
		sp.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert scheduled post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("scheduled post last insert id: %w", err)
	}
	sp.ID = id
	return id, nil
}

const selectScheduledPostColumns = `
SELECT id, user_id, content, media, status, execute_after, error_message, created_at, published_at
FROM scheduled_posts`

func (r *ScheduledPostRepository) Get(ctx context.Context, id int64) (*domain.ScheduledPost, error) {
	row := r.db.QueryRowContext(ctx, selectScheduledPostColumns+` WHERE id = ?`, id)
	return scanScheduledPost(row)
}

func (r *ScheduledPostRepository) ListPending(ctx context.Context) ([]domain.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx,
		selectScheduledPostColumns+` WHERE status = ? ORDER BY execute_after ASC`,
		domain.ScheduledPostStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending scheduled posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.ScheduledPost
	for rows.Next() {
		sp, err := scanScheduledPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scheduled posts: %w", err)
	}
	return posts, nil
}

func (r *ScheduledPostRepository) Claim(ctx context.Context, id int64) (bool, error) {
	// Conditional update is the claim: only one worker can move the row
	// out of pending.
	res, err := r.db.ExecContext(ctx, `
UPDATE scheduled_posts SET status = ? WHERE id = ? AND status = ?`,
		domain.ScheduledPostStatusPublishing,
		id,
		domain.ScheduledPostStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("claim scheduled post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *ScheduledPostRepository) MarkPublished(ctx context.Context, id int64, publishedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE scheduled_posts SET status = ?, published_at = ?, error_message = '' WHERE id = ?`,
		domain.ScheduledPostStatusPublished,
		publishedAt,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark scheduled post published: %w", err)
	}
	return nil
}

func (r *ScheduledPostRepository) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE scheduled_posts SET status = ?, error_message = ? WHERE id = ?`,
		domain.ScheduledPostStatusFailed,
		errorMessage,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark scheduled post failed: %w", err)
	}
	return nil
}

func scanScheduledPost(row interface {
	Scan(dest ...any) error
}) (*domain.ScheduledPost, error) {
	var sp domain.ScheduledPost
	var publishedAt sql.NullTime
	if err := row.Scan(
		&sp.ID,
		&sp.UserID,
		&sp.Content,
		&sp.Media,
		&sp.Status,
		&sp.ExecuteAfter,
		&sp.ErrorMessage,
		&sp.CreatedAt,
		&publishedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("scheduled post: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan scheduled post: %w", err)
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		sp.PublishedAt = &t
	}
	return &sp, nil
}
