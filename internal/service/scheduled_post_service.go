package service

import (
	"context"
	"strings"
	"time"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

// ScheduledPostService validates and persists deferred post-creation
// commands. Execution is the scheduler manager's job.
type ScheduledPostService interface {
	Schedule(ctx context.Context, userID int64, content, media string, at time.Time) (*domain.ScheduledPost, error)
	Get(ctx context.Context, id int64) (*domain.ScheduledPost, error)
	ListPending(ctx context.Context) ([]domain.ScheduledPost, error)
	Claim(ctx context.Context, id int64) (bool, error)
	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, errorMessage string) error
}

type scheduledPostService struct {
	scheduled repository.ScheduledPostRepository
}

func NewScheduledPostService(scheduled repository.ScheduledPostRepository) ScheduledPostService {
	return &scheduledPostService{scheduled: scheduled}
}

func (s *scheduledPostService) Schedule(ctx context.Context, userID int64, content, media string, at time.Time) (*domain.ScheduledPost, error) {
	if strings.TrimSpace(content) == "" {
		return nil, Validation("content is required")
	}
	if !at.After(time.Now().UTC()) {
		return nil, Validation("Schedule time must be in the future.")
	}

	sp := &domain.ScheduledPost{
		UserID:       userID,
		Content:      content,
		Media:        media,
		Status:       domain.ScheduledPostStatusPending,
		ExecuteAfter: at.UTC(),
	}
	if _, err := s.scheduled.Create(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *scheduledPostService) Get(ctx context.Context, id int64) (*domain.ScheduledPost, error) {
	return s.scheduled.Get(ctx, id)
}

func (s *scheduledPostService) ListPending(ctx context.Context) ([]domain.ScheduledPost, error) {
	return s.scheduled.ListPending(ctx)
}

func (s *scheduledPostService) Claim(ctx context.Context, id int64) (bool, error) {
	return s.scheduled.Claim(ctx, id)
}

func (s *scheduledPostService) MarkPublished(ctx context.Context, id int64) error {
	return s.scheduled.MarkPublished(ctx, id, time.Now().UTC())
}

func (s *scheduledPostService) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	return s.scheduled.MarkFailed(ctx, id, errorMessage)
}
