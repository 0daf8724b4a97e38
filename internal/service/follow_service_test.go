package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-api/internal/repository"
)

func TestFollowSelf(t *testing.T) {
	env := newTestEnv(t)
	svc := env.followService()
	user := env.mustRegister(t, "user1", "user1@example.com")

	err := svc.Follow(context.Background(), user.ID, "user1")
	assert.ErrorIs(t, err, ErrSelfFollow)

	following, err := svc.ListFollowing(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestFollowTwice(t *testing.T) {
	env := newTestEnv(t)
	svc := env.followService()
	ctx := context.Background()
	user1 := env.mustRegister(t, "user1", "user1@example.com")
	env.mustRegister(t, "user2", "user2@example.com")

	require.NoError(t, svc.Follow(ctx, user1.ID, "user2"))

	err := svc.Follow(ctx, user1.ID, "user2")
	assert.ErrorIs(t, err, ErrAlreadyFollowing)
}

func TestFollowUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	svc := env.followService()
	user := env.mustRegister(t, "user1", "user1@example.com")

	err := svc.Follow(context.Background(), user.ID, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUnfollow(t *testing.T) {
	env := newTestEnv(t)
	svc := env.followService()
	ctx := context.Background()
	user1 := env.mustRegister(t, "user1", "user1@example.com")
	env.mustRegister(t, "user2", "user2@example.com")

	require.NoError(t, svc.Follow(ctx, user1.ID, "user2"))
	require.NoError(t, svc.Unfollow(ctx, user1.ID, "user2"))

	err := svc.Unfollow(ctx, user1.ID, "user2")
	assert.ErrorIs(t, err, ErrNotFollowing)
}

func TestListFollowingOrder(t *testing.T) {
	env := newTestEnv(t)
	svc := env.followService()
	ctx := context.Background()
	user1 := env.mustRegister(t, "user1", "user1@example.com")
	env.mustRegister(t, "user2", "user2@example.com")
	env.mustRegister(t, "user3", "user3@example.com")

	require.NoError(t, svc.Follow(ctx, user1.ID, "user2"))
	require.NoError(t, svc.Follow(ctx, user1.ID, "user3"))

	following, err := svc.ListFollowing(ctx, user1.ID)
	require.NoError(t, err)
	require.Len(t, following, 2)
	// edge creation order
	assert.Equal(t, "user2", following[0].Username)
	assert.Equal(t, "user3", following[1].Username)
	assert.Empty(t, following[0].PasswordHash)
}

func TestListFollowers(t *testing.T) {
	env := newTestEnv(t)
	svc := env.followService()
	ctx := context.Background()
	user1 := env.mustRegister(t, "user1", "user1@example.com")
	user2 := env.mustRegister(t, "user2", "user2@example.com")
	user3 := env.mustRegister(t, "user3", "user3@example.com")

	require.NoError(t, svc.Follow(ctx, user2.ID, "user1"))
	require.NoError(t, svc.Follow(ctx, user3.ID, "user1"))

	followers, err := svc.ListFollowers(ctx, user1.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "user2", followers[0].Username)
	assert.Equal(t, "user3", followers[1].Username)

	following, err := svc.ListFollowing(ctx, user1.ID)
	require.NoError(t, err)
	assert.Empty(t, following)
}
