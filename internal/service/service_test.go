package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"social-api/internal/domain"
	"social-api/internal/repository"
	"social-api/internal/repository/sqlite"
)

type testEnv struct {
	users     repository.UserRepository
	follows   repository.FollowRepository
	posts     repository.PostRepository
	comments  repository.CommentRepository
	likes     repository.LikeRepository
	scheduled repository.ScheduledPostRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		users:     sqlite.NewUserRepository(db),
		follows:   sqlite.NewFollowRepository(db),
		posts:     sqlite.NewPostRepository(db),
		comments:  sqlite.NewCommentRepository(db),
		likes:     sqlite.NewLikeRepository(db),
		scheduled: sqlite.NewScheduledPostRepository(db),
	}

	ctx := context.Background()
	require.NoError(t, env.users.Init(ctx))
	require.NoError(t, env.follows.Init(ctx))
	require.NoError(t, env.posts.Init(ctx))
	require.NoError(t, env.comments.Init(ctx))
	require.NoError(t, env.likes.Init(ctx))
	require.NoError(t, env.scheduled.Init(ctx))

	return env
}

func (e *testEnv) userService() UserService {
	return NewUserService(e.users)
}

func (e *testEnv) followService() FollowService {
	return NewFollowService(e.users, e.follows)
}

func (e *testEnv) postService() PostService {
	return NewPostService(e.posts, e.users, e.likes, e.comments)
}

func (e *testEnv) commentService() CommentService {
	return NewCommentService(e.comments, e.posts)
}

func (e *testEnv) scheduledService() ScheduledPostService {
	return NewScheduledPostService(e.scheduled)
}

// mustRegister creates a user through the service so passwords go through
// the normal hashing path.
func (e *testEnv) mustRegister(t *testing.T, username, email string) *domain.User {
	t.Helper()
	user, err := e.userService().Register(context.Background(), username, email, "password123")
	require.NoError(t, err)
	return user
}

func (e *testEnv) mustPost(t *testing.T, authorID int64, content string) *domain.Post {
	t.Helper()
	post, err := e.postService().Create(context.Background(), authorID, content, "")
	require.NoError(t, err)
	return post
}
