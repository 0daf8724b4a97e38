package service

import (
	"context"
	"strings"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

// CommentService manages comments attached to posts.
type CommentService interface {
	Create(ctx context.Context, authorID, postID int64, content string) (*domain.Comment, error)
	Get(ctx context.Context, id int64) (*domain.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error)
	Update(ctx context.Context, callerID, commentID int64, content string) (*domain.Comment, error)
	Delete(ctx context.Context, callerID, commentID int64) error
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository) CommentService {
	return &commentService{
		comments: comments,
		posts:    posts,
	}
}

func (s *commentService) Create(ctx context.Context, authorID, postID int64, content string) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, Validation("content is required")
	}
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		UserID:  authorID,
		PostID:  postID,
		Content: content,
	}
	if _, err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	return s.comments.Get(ctx, id)
}

func (s *commentService) ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID)
}

func (s *commentService) Update(ctx context.Context, callerID, commentID int64, content string) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, Validation("content is required")
	}

	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != callerID {
		return nil, ErrPermissionDenied
	}

	comment.Content = content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, callerID, commentID int64) error {
	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != callerID {
		return ErrPermissionDenied
	}
	return s.comments.Delete(ctx, commentID)
}
