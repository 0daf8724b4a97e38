package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "test_user", "test@example.com", "testpassword123")
	require.NoError(t, err)
	assert.Equal(t, "test_user", user.Username)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)
	assert.NotZero(t, user.ID)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"missing username", "", "a@example.com", "password123"},
		{"missing email", "someone", "", "password123"},
		{"short password", "someone", "a@example.com", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "user1", "user1@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "user1", "other@example.com", "password123")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.Register(ctx, "other", "user1@example.com", "password123")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "user1", "user1@example.com", "password123")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "user1", "password123")
	require.NoError(t, err)
	assert.Equal(t, "user1", user.Username)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.Authenticate(ctx, "user1", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSearchUsers(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	env.mustRegister(t, "user1", "user1@example.com")
	env.mustRegister(t, "user2", "user2@example.com")

	users, err := svc.Search(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "user1", users[0].Username)

	// substring matching is case-insensitive
	users, err = svc.Search(ctx, "USER1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "user1", users[0].Username)

	users, err = svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	user := env.mustRegister(t, "user1", "user1@example.com")

	bio := "hello there"
	picture := "s3://bucket/media/pic.png"
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Bio: &bio, ProfilePicture: &picture})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, picture, updated.ProfilePicture)
	// untouched fields survive a partial update
	assert.Equal(t, "user1@example.com", updated.Email)

	got, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, bio, got.Bio)
}
