package repository

import (
	"context"
	"time"

	"social-api/internal/domain"
)

// ScheduledPostRepository persists deferred post-creation commands. The
// table doubles as the scheduler's durable queue.
type ScheduledPostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, sp *domain.ScheduledPost) (int64, error)
	Get(ctx context.Context, id int64) (*domain.ScheduledPost, error)
	ListPending(ctx context.Context) ([]domain.ScheduledPost, error)
	// Claim transitions the row from pending to publishing. It reports
	// false when another worker already claimed it, which makes concurrent
	// delivery of the same row benign.
	Claim(ctx context.Context, id int64) (bool, error)
	MarkPublished(ctx context.Context, id int64, publishedAt time.Time) error
	MarkFailed(ctx context.Context, id int64, errorMessage string) error
}
