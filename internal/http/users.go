package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-api/internal/repository"
	"social-api/internal/service"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, userToResponse(*user))
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	pair, err := h.tokens.IssuePair(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": pair.Access, "refresh": pair.Refresh})
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (h *Handler) refreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.tokens.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": pair.Access, "refresh": pair.Refresh})
}

type verifyRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *Handler) verifyToken(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.tokens.Verify(c.Request.Context(), req.Token); err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": "Token is valid."})
}

func (h *Handler) logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.tokens.RevokeRefresh(c.Request.Context(), req.Refresh); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token"})
		return
	}

	c.Status(http.StatusResetContent)
}

func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(*user))
}

type updateProfileRequest struct {
	Email          *string `json:"email"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profile_picture"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), currentUserID(c), service.ProfileUpdate{
		Email:          req.Email,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) searchUsers(c *gin.Context) {
	users, err := h.users.Search(c.Request.Context(), c.Query("username"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, usersToResponse(users))
}

func (h *Handler) follow(c *gin.Context) {
	username := c.Param("username")

	err := h.follows.Follow(c.Request.Context(), currentUserID(c), username)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"success": fmt.Sprintf("You are now following %s.", username)})
	case errors.Is(err, service.ErrSelfFollow):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot follow yourself."})
	case errors.Is(err, service.ErrAlreadyFollowing):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You are already following this user."})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
	default:
		abortWithServiceError(c, err)
	}
}

func (h *Handler) unfollow(c *gin.Context) {
	username := c.Param("username")

	err := h.follows.Unfollow(c.Request.Context(), currentUserID(c), username)
	switch {
	case err == nil:
		c.JSON(http.StatusNoContent, gin.H{"success": fmt.Sprintf("You have unfollowed %s.", username)})
	case errors.Is(err, service.ErrNotFollowing):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You are not following this user."})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
	default:
		abortWithServiceError(c, err)
	}
}

func (h *Handler) listFollowing(c *gin.Context) {
	users, err := h.follows.ListFollowing(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, usersToResponse(users))
}

func (h *Handler) listFollowers(c *gin.Context) {
	users, err := h.follows.ListFollowers(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, usersToResponse(users))
}
