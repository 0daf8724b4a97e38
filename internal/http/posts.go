package http

import (
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"social-api/internal/service"
	"social-api/internal/storage"
)

const scheduleTimeLayout = "2006-01-02 15:04:05"

type createPostRequest struct {
	Content string `json:"content" binding:"required"`
	Media   string `json:"media"`
}

func (h *Handler) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.Create(c.Request.Context(), currentUserID(c), req.Content, req.Media)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, postToResponse(*post))
}

func (h *Handler) listPosts(c *gin.Context) {
	ctx := c.Request.Context()

	if username, ok := c.GetQuery("username"); ok {
		posts, err := h.posts.ListByAuthorUsername(ctx, username)
		if err != nil {
			abortWithServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, postsToResponse(posts))
		return
	}

	posts, err := h.posts.List(ctx)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, postsToResponse(posts))
}

func (h *Handler) getPost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, postToResponse(*post))
}

type updatePostRequest struct {
	Content *string `json:"content"`
	Media   *string `json:"media"`
}

func (h *Handler) updatePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.Update(c.Request.Context(), currentUserID(c), id, service.PostUpdate{
		Content: req.Content,
		Media:   req.Media,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, postToResponse(*post))
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	deleteMedia, err := strconv.ParseBool(c.DefaultQuery("delete_media", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flag delete_media"})
		return
	}

	post, err := h.posts.Delete(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	var warnings []string
	if deleteMedia && post.Media != "" && h.storage != nil {
		key, err := storage.KeyFromLocation(post.Media, h.bucket)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("resolve media key: %v", err))
		} else if err := h.storage.Delete(c.Request.Context(), key); err != nil {
			warnings = append(warnings, fmt.Sprintf("delete media: %v", err))
		}
	}

	if len(warnings) > 0 {
		c.JSON(http.StatusOK, gin.H{"deleted": post.ID, "warnings": warnings})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listOwnPosts(c *gin.Context) {
	posts, err := h.posts.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, postsToResponse(posts))
}

func (h *Handler) listFollowingPosts(c *gin.Context) {
	posts, err := h.posts.ListFollowingFeed(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, postsToResponse(posts))
}

func (h *Handler) searchPosts(c *gin.Context) {
	posts, err := h.posts.Search(c.Request.Context(), c.Query("search_criteria"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, postsToResponse(posts))
}

func (h *Handler) toggleLike(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	liked, err := h.posts.ToggleLike(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	if liked {
		c.JSON(http.StatusCreated, gin.H{"success": "Post liked."})
		return
	}
	c.JSON(http.StatusNoContent, gin.H{"success": "Post unliked."})
}

type schedulePostRequest struct {
	Content      string `json:"content" binding:"required"`
	Media        string `json:"media"`
	ScheduleTime string `json:"schedule_time" binding:"required"`
}

func (h *Handler) schedulePost(c *gin.Context) {
	var req schedulePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	at, err := time.ParseInLocation(scheduleTimeLayout, req.ScheduleTime, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule_time, expected YYYY-MM-DD HH:MM:SS"})
		return
	}

	sp, err := h.scheduled.Schedule(c.Request.Context(), currentUserID(c), req.Content, req.Media, at)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	if err := h.manager.Enqueue(c.Request.Context(), sp.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": "Post scheduled successfully."})
}

func (h *Handler) uploadMedia(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	key := path.Join(h.keyPrefix, uuid.NewString()+filepath.Ext(fileHeader.Filename))
	location, err := h.storage.Upload(c.Request.Context(), key, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"media": location})
}

func (h *Handler) presignMedia(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}

	location := c.Query("media")
	if location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media is required"})
		return
	}

	key, err := storage.KeyFromLocation(location, h.bucket)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.storage.PresignGet(c.Request.Context(), key, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// pathID parses the :id path parameter; on failure it writes the 400
// response itself.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
