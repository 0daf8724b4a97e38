package service

import (
	"context"
	"strings"

	"social-api/internal/domain"
	"social-api/internal/repository"
)

// PostUpdate carries the mutable post fields; nil means "leave as is".
type PostUpdate struct {
	Content *string
	Media   *string
}

// PostService coordinates post level operations backed by repositories.
type PostService interface {
	Create(ctx context.Context, authorID int64, content, media string) (*domain.Post, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	ListByAuthorUsername(ctx context.Context, username string) ([]domain.Post, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Post, error)
	ListFollowingFeed(ctx context.Context, userID int64) ([]domain.Post, error)
	Search(ctx context.Context, criteria string) ([]domain.Post, error)
	Update(ctx context.Context, callerID, postID int64, update PostUpdate) (*domain.Post, error)
	Delete(ctx context.Context, callerID, postID int64) (*domain.Post, error)
	// ToggleLike flips the caller's like on a post and reports whether the
	// post ended up liked.
	ToggleLike(ctx context.Context, userID, postID int64) (bool, error)
}

type postService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	likes    repository.LikeRepository
	comments repository.CommentRepository
}

func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	likes repository.LikeRepository,
	comments repository.CommentRepository,
) PostService {
	return &postService{
		posts:    posts,
		users:    users,
		likes:    likes,
		comments: comments,
	}
}

func (s *postService) Create(ctx context.Context, authorID int64, content, media string) (*domain.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, Validation("content is required")
	}

	post := &domain.Post{
		UserID:  authorID,
		Content: content,
		Media:   media,
	}
	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachCounts(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) List(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	return posts, s.attachCountsAll(ctx, posts)
}

func (s *postService) ListByAuthorUsername(ctx context.Context, username string) ([]domain.Post, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByUser(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	return posts, s.attachCountsAll(ctx, posts)
}

func (s *postService) ListByUser(ctx context.Context, userID int64) ([]domain.Post, error) {
	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachCountsAll(ctx, posts); err != nil {
		return nil, err
	}
	return posts, s.attachLiked(ctx, userID, posts)
}

func (s *postService) ListFollowingFeed(ctx context.Context, userID int64) ([]domain.Post, error) {
	posts, err := s.posts.ListByFollowed(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachCountsAll(ctx, posts); err != nil {
		return nil, err
	}
	return posts, s.attachLiked(ctx, userID, posts)
}

func (s *postService) Search(ctx context.Context, criteria string) ([]domain.Post, error) {
	posts, err := s.posts.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return posts, s.attachCountsAll(ctx, posts)
}

func (s *postService) Update(ctx context.Context, callerID, postID int64, update PostUpdate) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != callerID {
		return nil, ErrPermissionDenied
	}

	if update.Content != nil {
		if strings.TrimSpace(*update.Content) == "" {
			return nil, Validation("content is required")
		}
		post.Content = *update.Content
	}
	if update.Media != nil {
		post.Media = *update.Media
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	if err := s.attachCounts(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Delete(ctx context.Context, callerID, postID int64) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != callerID {
		return nil, ErrPermissionDenied
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) ToggleLike(ctx context.Context, userID, postID int64) (bool, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return false, err
	}

	created, err := s.likes.Create(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	if created {
		return true, nil
	}

	// Edge already present: this toggle removes it. A concurrent removal
	// leaves nothing to delete, which still reads as "unliked".
	if _, err := s.likes.Delete(ctx, userID, postID); err != nil {
		return false, err
	}
	return false, nil
}

func (s *postService) attachCounts(ctx context.Context, post *domain.Post) error {
	likes, err := s.likes.CountByPost(ctx, post.ID)
	if err != nil {
		return err
	}
	comments, err := s.comments.CountByPost(ctx, post.ID)
	if err != nil {
		return err
	}
	post.LikeCount = likes
	post.CommentCount = comments
	return nil
}

func (s *postService) attachCountsAll(ctx context.Context, posts []domain.Post) error {
	for i := range posts {
		if err := s.attachCounts(ctx, &posts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *postService) attachLiked(ctx context.Context, userID int64, posts []domain.Post) error {
	for i := range posts {
		liked, err := s.likes.Exists(ctx, userID, posts[i].ID)
		if err != nil {
			return err
		}
		posts[i].Liked = liked
	}
	return nil
}
