package service

import (
	"context"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

// FollowService manages the directed follow graph between users.
type FollowService interface {
	Follow(ctx context.Context, followerID int64, targetUsername string) error
	Unfollow(ctx context.Context, followerID int64, targetUsername string) error
	ListFollowing(ctx context.Context, userID int64) ([]domain.User, error)
	ListFollowers(ctx context.Context, userID int64) ([]domain.User, error)
}

type followService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
}

func NewFollowService(users repository.UserRepository, follows repository.FollowRepository) FollowService {
	return &followService{
		users:   users,
		follows: follows,
	}
}

func (s *followService) Follow(ctx context.Context, followerID int64, targetUsername string) error {
	target, err := s.users.GetByUsername(ctx, targetUsername)
	if err != nil {
		return err
	}
	if target.ID == followerID {
		return ErrSelfFollow
	}

	created, err := s.follows.Create(ctx, followerID, target.ID)
	if err != nil {
		return err
	}
	if !created {
		return ErrAlreadyFollowing
	}
	return nil
}

func (s *followService) Unfollow(ctx context.Context, followerID int64, targetUsername string) error {
	target, err := s.users.GetByUsername(ctx, targetUsername)
	if err != nil {
		return err
	}

	deleted, err := s.follows.Delete(ctx, followerID, target.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFollowing
	}
	return nil
}

func (s *followService) ListFollowing(ctx context.Context, userID int64) ([]domain.User, error) {
	users, err := s.follows.ListFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sanitizeUsers(users), nil
}

func (s *followService) ListFollowers(ctx context.Context, userID int64) ([]domain.User, error) {
	users, err := s.follows.ListFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sanitizeUsers(users), nil
}
