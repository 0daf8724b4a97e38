package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

// ProfileUpdate carries the optional profile fields; nil means "leave as is".
type ProfileUpdate struct {
	Email          *string
	Bio            *string
	ProfilePicture *string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Search(ctx context.Context, substring string) ([]domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if username == "" {
		return nil, Validation("username is required")
	}
	if email == "" {
		return nil, Validation("email is required")
	}
	if len(password) < 8 {
		return nil, Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) Search(ctx context.Context, substring string) ([]domain.User, error) {
	users, err := s.users.SearchByUsername(ctx, strings.TrimSpace(substring))
	if err != nil {
		return nil, err
	}
	return sanitizeUsers(users), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if email == "" {
			return nil, Validation("email is required")
		}
		user.Email = email
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.ProfilePicture != nil {
		user.ProfilePicture = *update.ProfilePicture
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	return &clean
}

func sanitizeUsers(users []domain.User) []domain.User {
	clean := make([]domain.User, len(users))
	for i := range users {
		clean[i] = users[i]
		clean[i].PasswordHash = ""
	}
	return clean
}
