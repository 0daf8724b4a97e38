package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type createCommentRequest struct {
	PostID  int64  `json:"post_id" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (h *Handler) createComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), currentUserID(c), req.PostID, req.Content)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, commentToResponse(*comment))
}

func (h *Handler) listComments(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Query("post_id"), 10, 64)
	if err != nil || postID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post_id"})
		return
	}

	comments, err := h.comments.ListByPost(c.Request.Context(), postID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, commentsToResponse(comments))
}

func (h *Handler) getComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	comment, err := h.comments.Get(c.Request.Context(), id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, commentToResponse(*comment))
}

type updateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) updateComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), currentUserID(c), id, req.Content)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, commentToResponse(*comment))
}

func (h *Handler) deleteComment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
