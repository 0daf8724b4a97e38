package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"social-api/internal/domain"
	"social-api/internal/service"
)

// Manager executes scheduled posts at or after their execute-after time.
// The scheduled_posts table is the durable queue: Resume re-enqueues
// whatever was pending when the process last stopped, so delivery is
// at-least-once across restarts.
type Manager interface {
	Start(ctx context.Context) error
	Shutdown()
	Enqueue(ctx context.Context, scheduledPostID int64) error
	Resume(ctx context.Context) error
}

type Config struct {
	MaxConcurrent int
	Logger        *logrus.Logger
}

type manager struct {
	cfg       Config
	scheduled service.ScheduledPostService
	posts     service.PostService

	sem    chan struct{}
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	active map[int64]struct{}
}

func NewManager(cfg Config, scheduled service.ScheduledPostService, posts service.PostService) Manager {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &manager{
		cfg:       cfg,
		scheduled: scheduled,
		posts:     posts,
		sem:       make(chan struct{}, cfg.MaxConcurrent),
		active:    make(map[int64]struct{}),
	}
}

func (m *manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.cfg.Logger.Infof("post scheduler started, max concurrent: %d", m.cfg.MaxConcurrent)
	return nil
}

func (m *manager) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.cfg.Logger.Info("post scheduler stopped")
}

func (m *manager) Enqueue(ctx context.Context, scheduledPostID int64) error {
	sp, err := m.scheduled.Get(ctx, scheduledPostID)
	if err != nil {
		return err
	}
	if sp.Status != domain.ScheduledPostStatusPending {
		return fmt.Errorf("scheduled post %d is not pending", scheduledPostID)
	}
	m.spawn(*sp)
	return nil
}

func (m *manager) Resume(ctx context.Context) error {
	pending, err := m.scheduled.ListPending(ctx)
	if err != nil {
		return err
	}
	for i := range pending {
		m.spawn(pending[i])
	}
	if len(pending) > 0 {
		m.cfg.Logger.Infof("resumed %d pending scheduled posts", len(pending))
	}
	return nil
}

func (m *manager) spawn(sp domain.ScheduledPost) {
	if !m.register(sp.ID) {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.unregister(sp.ID)

		if !m.waitUntil(sp.ExecuteAfter) {
			return
		}

		select {
		case <-m.ctx.Done():
			return
		case m.sem <- struct{}{}:
			defer func() { <-m.sem }()
			m.publish(sp)
		}
	}()
}

// waitUntil blocks until the execute-after time, reporting false when the
// manager shut down first. A pending row interrupted here stays pending
// and is picked up by Resume on the next boot.
func (m *manager) waitUntil(at time.Time) bool {
	delay := time.Until(at)
	if delay <= 0 {
		return true
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-m.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (m *manager) publish(sp domain.ScheduledPost) {
	claimed, err := m.scheduled.Claim(m.ctx, sp.ID)
	if err != nil {
		m.cfg.Logger.Errorf("claim scheduled post %d: %v", sp.ID, err)
		return
	}
	if !claimed {
		// another worker got there first
		return
	}

	if _, err := m.posts.Create(m.ctx, sp.UserID, sp.Content, sp.Media); err != nil {
		m.cfg.Logger.Errorf("publish scheduled post %d: %v", sp.ID, err)
		if markErr := m.scheduled.MarkFailed(m.ctx, sp.ID, err.Error()); markErr != nil {
			m.cfg.Logger.Errorf("mark scheduled post %d failed: %v", sp.ID, markErr)
		}
		return
	}

	if err := m.scheduled.MarkPublished(m.ctx, sp.ID); err != nil {
		m.cfg.Logger.Errorf("mark scheduled post %d published: %v", sp.ID, err)
		return
	}
	m.cfg.Logger.Infof("published scheduled post %d for user %d", sp.ID, sp.UserID)
}

func (m *manager) register(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[id]; ok {
		return false
	}
	m.active[id] = struct{}{}
	return true
}

func (m *manager) unregister(id int64) {
	m.mu.Lock()
	delete(m.active, id)
	m.mu.Unlock()
}
