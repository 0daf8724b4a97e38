package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"social-api/internal/auth"
	"social-api/internal/domain"
	"social-api/internal/repository"
	"social-api/internal/scheduler"
	"social-api/internal/service"
	"social-api/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	follows   service.FollowService
	posts     service.PostService
	comments  service.CommentService
	scheduled service.ScheduledPostService
	manager   scheduler.Manager
	tokens    *auth.Manager
	storage   storage.Service
	bucket    string
	keyPrefix string
}

type HandlerConfig struct {
	Users     service.UserService
	Follows   service.FollowService
	Posts     service.PostService
	Comments  service.CommentService
	Scheduled service.ScheduledPostService
	Manager   scheduler.Manager
	Tokens    *auth.Manager
	Storage   storage.Service
	Bucket    string
	KeyPrefix string
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		users:     cfg.Users,
		follows:   cfg.Follows,
		posts:     cfg.Posts,
		comments:  cfg.Comments,
		scheduled: cfg.Scheduled,
		manager:   cfg.Manager,
		tokens:    cfg.Tokens,
		storage:   cfg.Storage,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/register", h.register)
		api.POST("/login", h.login)
		api.POST("/token/refresh", h.refreshToken)
		api.POST("/token/verify", h.verifyToken)

		// post reads are open to unauthenticated callers
		api.GET("/posts", h.listPosts)
		api.GET("/posts/:id", h.getPost)

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusAccepted, gin.H{"ok": "ok"})
		})

		authed := api.Group("", authRequired(h.tokens))
		{
			authed.POST("/logout", h.logout)
			authed.GET("/profile", h.getProfile)
			authed.PUT("/profile", h.updateProfile)
			authed.GET("/search", h.searchUsers)

			authed.POST("/follow/:username", h.follow)
			authed.POST("/unfollow/:username", h.unfollow)
			authed.GET("/following", h.listFollowing)
			authed.GET("/followers", h.listFollowers)
			authed.GET("/following-posts", h.listFollowingPosts)

			authed.POST("/posts", h.createPost)
			authed.PUT("/posts/:id", h.updatePost)
			authed.PATCH("/posts/:id", h.updatePost)
			authed.DELETE("/posts/:id", h.deletePost)
			authed.POST("/posts/:id/like", h.toggleLike)
			authed.GET("/own-posts", h.listOwnPosts)
			authed.GET("/search-posts", h.searchPosts)

			authed.GET("/comments", h.listComments)
			authed.POST("/comments", h.createComment)
			authed.GET("/comments/:id", h.getComment)
			authed.PUT("/comments/:id", h.updateComment)
			authed.DELETE("/comments/:id", h.deleteComment)

			authed.POST("/schedule-post", h.schedulePost)
			authed.POST("/media", h.uploadMedia)
			authed.GET("/media-url", h.presignMedia)
		}
	}
}

// abortWithServiceError translates domain errors into the HTTP taxonomy.
func abortWithServiceError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "username or email already taken"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

type UserResponse struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture"`
}

type PostResponse struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	Content      string `json:"content"`
	Media        string `json:"media,omitempty"`
	LikeCount    int    `json:"like_count"`
	CommentCount int    `json:"comment_count"`
	IsLiked      bool   `json:"is_liked"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type CommentResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	PostID    int64  `json:"post_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Bio:            user.Bio,
		ProfilePicture: user.ProfilePicture,
	}
}

func usersToResponse(users []domain.User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	return resp
}

func postToResponse(post domain.Post) PostResponse {
	return PostResponse{
		ID:           post.ID,
		UserID:       post.UserID,
		Content:      post.Content,
		Media:        post.Media,
		LikeCount:    post.LikeCount,
		CommentCount: post.CommentCount,
		IsLiked:      post.Liked,
		CreatedAt:    post.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    post.UpdatedAt.Format(time.RFC3339),
	}
}

func postsToResponse(posts []domain.Post) []PostResponse {
	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(posts[i])
	}
	return resp
}

func commentToResponse(comment domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		UserID:    comment.UserID,
		PostID:    comment.PostID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
	}
}

func commentsToResponse(comments []domain.Comment) []CommentResponse {
	resp := make([]CommentResponse, len(comments))
	for i := range comments {
		resp[i] = commentToResponse(comments[i])
	}
	return resp
}
