package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-api/internal/domain"
)

func TestSchedulePastRejected(t *testing.T) {
	env := newTestEnv(t)
	svc := env.scheduledService()
	ctx := context.Background()
	user := env.mustRegister(t, "user1", "user1@example.com")

	_, err := svc.Schedule(ctx, user.ID, "too late", "", time.Now().UTC().Add(-time.Minute))
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// nothing was enqueued
	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestScheduleFuture(t *testing.T) {
	env := newTestEnv(t)
	svc := env.scheduledService()
	ctx := context.Background()
	user := env.mustRegister(t, "user1", "user1@example.com")

	at := time.Now().UTC().Add(time.Hour)
	sp, err := svc.Schedule(ctx, user.ID, "later", "", at)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduledPostStatusPending, sp.Status)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "later", pending[0].Content)
	assert.WithinDuration(t, at, pending[0].ExecuteAfter, time.Second)
}

func TestClaimSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	svc := env.scheduledService()
	ctx := context.Background()
	user := env.mustRegister(t, "user1", "user1@example.com")

	sp, err := svc.Schedule(ctx, user.ID, "claim me", "", time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)

	claimed, err := svc.Claim(ctx, sp.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	// a second claim loses
	claimed, err = svc.Claim(ctx, sp.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	require.NoError(t, svc.MarkPublished(ctx, sp.ID))

	got, err := svc.Get(ctx, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduledPostStatusPublished, got.Status)
	require.NotNil(t, got.PublishedAt)
}

func TestMarkFailed(t *testing.T) {
	env := newTestEnv(t)
	svc := env.scheduledService()
	ctx := context.Background()
	user := env.mustRegister(t, "user1", "user1@example.com")

	sp, err := svc.Schedule(ctx, user.ID, "doomed", "", time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)

	claimed, err := svc.Claim(ctx, sp.ID)
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, svc.MarkFailed(ctx, sp.ID, "author vanished"))

	got, err := svc.Get(ctx, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduledPostStatusFailed, got.Status)
	assert.Equal(t, "author vanished", got.ErrorMessage)
}
