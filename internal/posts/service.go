package posts

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/ripple-social/ripple/internal/platform/httpx"
)

// postCooldown is the minimum gap between two posts by the same author.
const postCooldown = time.Hour

// Service handles feed business logic.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a Service instance. cache may be nil.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// List returns the whole feed, newest first.
func (s *Service) List(ctx context.Context) ([]Post, error) {
	if cached, ok := s.cache.Get(ctx); ok {
		return cached, nil
	}
	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, posts)
	return posts, nil
}

// Create inserts a post after the one-post-per-hour check.
func (s *Service) Create(ctx context.Context, userID int64, content string) (*Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", httpx.ErrValidation)
	}

	last, ok, err := s.repo.LastPostedAt(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ok {
		elapsed := s.now().Sub(last)
		if elapsed < postCooldown {
			remaining := int(math.Ceil((postCooldown - elapsed).Minutes()))
			return nil, fmt.Errorf("%w: you can create only one post per hour, try again in %d minutes",
				httpx.ErrRateLimited, remaining)
		}
	}

	post, err := s.repo.CreatePost(ctx, userID, content)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("post created", slog.Int64("post_id", post.ID), slog.String("username", post.Username))
	return post, nil
}

// Update rewrites a post's content; only the author may do so.
func (s *Service) Update(ctx context.Context, userID, postID int64, content string) (*Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", httpx.ErrValidation)
	}
	existing, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, fmt.Errorf("%w: you can edit only your own posts", httpx.ErrForbidden)
	}
	post, err := s.repo.UpdatePost(ctx, postID, content)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return post, nil
}

// Delete removes a post and its comments; only the author may do so.
func (s *Service) Delete(ctx context.Context, userID, postID int64) error {
	existing, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return fmt.Errorf("%w: you can delete only your own posts", httpx.ErrForbidden)
	}
	if err := s.repo.DeletePost(ctx, postID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// AddComment attaches a comment to an existing post.
func (s *Service) AddComment(ctx context.Context, userID, postID int64, content string) (*Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: comment content is required", httpx.ErrValidation)
	}
	if _, err := s.repo.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	comment, err := s.repo.CreateComment(ctx, postID, userID, content)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return comment, nil
}
