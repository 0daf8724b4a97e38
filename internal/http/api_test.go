package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-api/internal/auth"
	"social-api/internal/repository/sqlite"
	"social-api/internal/scheduler"
	"social-api/internal/service"
)

type testServer struct {
	router *gin.Engine
	posts  service.PostService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	followRepo := sqlite.NewFollowRepository(db)
	postRepo := sqlite.NewPostRepository(db)
	commentRepo := sqlite.NewCommentRepository(db)
	likeRepo := sqlite.NewLikeRepository(db)
	scheduledRepo := sqlite.NewScheduledPostRepository(db)

	ctx := context.Background()
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, followRepo.Init(ctx))
	require.NoError(t, postRepo.Init(ctx))
	require.NoError(t, commentRepo.Init(ctx))
	require.NoError(t, likeRepo.Init(ctx))
	require.NoError(t, scheduledRepo.Init(ctx))

	userService := service.NewUserService(userRepo)
	followService := service.NewFollowService(userRepo, followRepo)
	postService := service.NewPostService(postRepo, userRepo, likeRepo, commentRepo)
	commentService := service.NewCommentService(commentRepo, postRepo)
	scheduledService := service.NewScheduledPostService(scheduledRepo)

	tokens := auth.NewManager("test-secret", time.Hour, 24*time.Hour, auth.NewMemoryBlacklist())

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	manager := scheduler.NewManager(scheduler.Config{MaxConcurrent: 2, Logger: logger}, scheduledService, postService)
	require.NoError(t, manager.Start(ctx))
	t.Cleanup(manager.Shutdown)

	router := gin.New()
	handler := NewHandler(HandlerConfig{
		Users:     userService,
		Follows:   followService,
		Posts:     postService,
		Comments:  commentService,
		Scheduled: scheduledService,
		Manager:   manager,
		Tokens:    tokens,
		KeyPrefix: "media",
	})
	handler.RegisterRoutes(router)

	return &testServer{router: router, posts: postService}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin provisions a user and returns an access token for it.
func (s *testServer) registerAndLogin(t *testing.T, username string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "testpassword123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/login", "", gin.H{
		"username": username,
		"password": "testpassword123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["access"])
	return body["access"]
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	return list
}

func TestRegisterEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/register", "", gin.H{
		"username": "test_user",
		"email":    "test@example.com",
		"password": "testpassword123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "test_user", body["username"])
	assert.NotContains(t, body, "password_hash")

	// short password rejected
	rec = s.do(t, http.MethodPost, "/api/register", "", gin.H{
		"username": "other",
		"email":    "other@example.com",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/profile"},
		{http.MethodGet, "/api/search?username=a"},
		{http.MethodPost, "/api/follow/someone"},
		{http.MethodGet, "/api/following"},
		{http.MethodGet, "/api/own-posts"},
		{http.MethodPost, "/api/posts"},
		{http.MethodPost, "/api/posts/1/like"},
		{http.MethodGet, "/api/comments?post_id=1"},
		{http.MethodPost, "/api/schedule-post"},
	}

	for _, tt := range protected {
		rec := s.do(t, tt.method, tt.path, "", nil)
		assert.Equalf(t, http.StatusUnauthorized, rec.Code, "%s %s", tt.method, tt.path)
	}

	// no state leaked from rejected writes
	token := s.registerAndLogin(t, "checker")
	rec := s.do(t, http.MethodGet, "/api/own-posts", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeList(t, rec))
}

func TestProfileRoundTrip(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "user1")

	rec := s.do(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "user1", profile["username"])

	rec = s.do(t, http.MethodPut, "/api/profile", token, gin.H{"bio": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/profile", token, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "hello", profile["bio"])
}

func TestUserSearchEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "user1")
	s.registerAndLogin(t, "user2")

	rec := s.do(t, http.MethodGet, "/api/search?username=USER1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeList(t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "user1", list[0]["username"])

	rec = s.do(t, http.MethodGet, "/api/search", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 2)
}

func TestFollowEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "user1")
	s.registerAndLogin(t, "user2")

	rec := s.do(t, http.MethodPost, "/api/follow/user2", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "You are now following user2.")

	rec = s.do(t, http.MethodPost, "/api/follow/user2", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "You are already following this user.")

	rec = s.do(t, http.MethodPost, "/api/follow/user1", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "You cannot follow yourself.")

	rec = s.do(t, http.MethodPost, "/api/follow/nobody", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/following", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeList(t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "user2", list[0]["username"])

	rec = s.do(t, http.MethodPost, "/api/unfollow/user2", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/unfollow/user2", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "You are not following this user.")
}

func TestPostCRUDAndOwnership(t *testing.T) {
	s := newTestServer(t)
	owner := s.registerAndLogin(t, "owner")
	other := s.registerAndLogin(t, "other")

	rec := s.do(t, http.MethodPost, "/api/posts", owner, gin.H{"content": "hello world"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var post map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	postID := int64(post["id"].(float64))

	// reads are open to unauthenticated callers
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	// non-owner writes are forbidden
	rec = s.do(t, http.MethodPut, fmt.Sprintf("/api/posts/%d", postID), other, gin.H{"content": "hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d", postID), other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/api/posts/%d", postID), owner, gin.H{"content": "edited"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d", postID), owner, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLikeToggleEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "user1")

	rec := s.do(t, http.MethodPost, "/api/posts", token, gin.H{"content": "likeable"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var post map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	path := fmt.Sprintf("/api/posts/%d/like", int64(post["id"].(float64)))

	rec = s.do(t, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/posts/9999/like", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFollowingPostsEndpoint(t *testing.T) {
	s := newTestServer(t)
	reader := s.registerAndLogin(t, "reader")
	author := s.registerAndLogin(t, "author")

	rec := s.do(t, http.MethodPost, "/api/posts", author, gin.H{"content": "from author"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/following-posts", reader, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeList(t, rec))

	rec = s.do(t, http.MethodPost, "/api/follow/author", reader, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/following-posts", reader, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeList(t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "from author", list[0]["content"])
}

func TestSearchPostsEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "user1")

	for _, content := range []string{"Test content 1", "Another content", "Something different"} {
		rec := s.do(t, http.MethodPost, "/api/posts", token, gin.H{"content": content})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := s.do(t, http.MethodGet, "/api/search-posts?search_criteria=Test", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeList(t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Test content 1", list[0]["content"])
}

func TestCommentEndpoints(t *testing.T) {
	s := newTestServer(t)
	owner := s.registerAndLogin(t, "owner")
	other := s.registerAndLogin(t, "other")

	rec := s.do(t, http.MethodPost, "/api/posts", owner, gin.H{"content": "a post"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var post map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	postID := int64(post["id"].(float64))

	rec = s.do(t, http.MethodPost, "/api/comments", other, gin.H{"post_id": postID, "content": "nice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var comment map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comment))
	commentID := int64(comment["id"].(float64))

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/comments?post_id=%d", postID), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	// only the comment author may modify it
	rec = s.do(t, http.MethodPut, fmt.Sprintf("/api/comments/%d", commentID), owner, gin.H{"content": "hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/api/comments/%d", commentID), other, gin.H{"content": "edited"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/comments/%d", commentID), other, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSchedulePostEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "user1")

	past := time.Now().UTC().Add(-time.Hour).Format("2006-01-02 15:04:05")
	rec := s.do(t, http.MethodPost, "/api/schedule-post", token, gin.H{
		"content":       "too late",
		"schedule_time": past,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Schedule time must be in the future.")

	rec = s.do(t, http.MethodPost, "/api/schedule-post", token, gin.H{
		"content":       "not a time",
		"schedule_time": "tomorrow-ish",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	future := time.Now().UTC().Add(2 * time.Second).Format("2006-01-02 15:04:05")
	rec = s.do(t, http.MethodPost, "/api/schedule-post", token, gin.H{
		"content":       "deferred",
		"schedule_time": future,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Post scheduled successfully.")

	// absent immediately, present after the scheduled time elapses
	rec = s.do(t, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeList(t, rec))

	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = s.do(t, http.MethodGet, "/api/posts", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		if len(decodeList(t, rec)) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("scheduled post never appeared")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestMediaEndpointsWithoutStorage(t *testing.T) {
	s := newTestServer(t)
	token := s.registerAndLogin(t, "user1")

	// no storage service wired: uploads and presigns are unavailable
	rec := s.do(t, http.MethodPost, "/api/media", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/media-url?media=s3://bucket/a.png", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogoutAndTokenFlow(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin(t, "user1")

	rec := s.do(t, http.MethodPost, "/api/login", "", gin.H{
		"username": "user1",
		"password": "testpassword123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var pair map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))

	rec = s.do(t, http.MethodPost, "/api/token/verify", "", gin.H{"token": pair["refresh"]})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/token/refresh", "", gin.H{"refresh": pair["refresh"]})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/logout", pair["access"], gin.H{"refresh": pair["refresh"]})
	assert.Equal(t, http.StatusResetContent, rec.Code)

	// blacklisted refresh token is dead
	rec = s.do(t, http.MethodPost, "/api/token/refresh", "", gin.H{"refresh": pair["refresh"]})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/logout", pair["access"], gin.H{"refresh": pair["refresh"]})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/logout", pair["access"], gin.H{"refresh": "garbage"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
