package domain

import "time"

type ScheduledPostStatus string

const (
	ScheduledPostStatusPending    ScheduledPostStatus = "pending"
	ScheduledPostStatusPublishing ScheduledPostStatus = "publishing"
	ScheduledPostStatusPublished  ScheduledPostStatus = "published"
	ScheduledPostStatusFailed     ScheduledPostStatus = "failed"
)

// ScheduledPost is a durable deferred post-creation command. Rows in the
// pending state form the scheduler's work queue and survive restarts.
type ScheduledPost struct {
	ID           int64
	UserID       int64
	Content      string
	Media        string
	Status       ScheduledPostStatus
	ExecuteAfter time.Time
	ErrorMessage string
	CreatedAt    time.Time
	PublishedAt  *time.Time
}
