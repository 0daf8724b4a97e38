package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-api/internal/repository"
)

func TestCreateComment(t *testing.T) {
	env := newTestEnv(t)
	svc := env.commentService()
	ctx := context.Background()
	user := env.mustRegister(t, "user1", "user1@example.com")
	post := env.mustPost(t, user.ID, "a post")

	comment, err := svc.Create(ctx, user.ID, post.ID, "nice post")
	require.NoError(t, err)
	assert.Equal(t, user.ID, comment.UserID)
	assert.Equal(t, post.ID, comment.PostID)

	_, err = svc.Create(ctx, user.ID, 999, "orphan")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Create(ctx, user.ID, post.ID, "  ")
	assert.True(t, IsValidation(err))
}

func TestListComments(t *testing.T) {
	env := newTestEnv(t)
	svc := env.commentService()
	ctx := context.Background()
	user := env.mustRegister(t, "user1", "user1@example.com")
	post := env.mustPost(t, user.ID, "a post")

	for _, content := range []string{"first", "second", "third"} {
		_, err := svc.Create(ctx, user.ID, post.ID, content)
		require.NoError(t, err)
	}

	comments, err := svc.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "third", comments[2].Content)

	_, err = svc.ListByPost(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCommentOwnership(t *testing.T) {
	env := newTestEnv(t)
	svc := env.commentService()
	ctx := context.Background()
	owner := env.mustRegister(t, "owner", "owner@example.com")
	other := env.mustRegister(t, "other", "other@example.com")
	post := env.mustPost(t, owner.ID, "a post")

	comment, err := svc.Create(ctx, owner.ID, post.ID, "mine")
	require.NoError(t, err)

	_, err = svc.Update(ctx, other.ID, comment.ID, "hijacked")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	err = svc.Delete(ctx, other.ID, comment.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	updated, err := svc.Update(ctx, owner.ID, comment.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	require.NoError(t, svc.Delete(ctx, owner.ID, comment.ID))

	_, err = svc.Get(ctx, comment.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
