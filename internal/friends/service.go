package friends

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ripple-social/ripple/internal/platform/httpx"
)

// Service handles friendship business logic.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// SendRequest creates a pending friend request addressed by username.
func (s *Service) SendRequest(ctx context.Context, fromID int64, toUsername string) (*FriendRequest, error) {
	if toUsername == "" {
		return nil, fmt.Errorf("%w: to_username is required", httpx.ErrValidation)
	}
	toID, err := s.repo.UserIDByUsername(ctx, toUsername)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %q not found", httpx.ErrNotFound, toUsername)
		}
		return nil, err
	}
	if toID == fromID {
		return nil, fmt.Errorf("%w: you cannot add yourself", httpx.ErrValidation)
	}

	already, err := s.repo.AreFriends(ctx, fromID, toID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, fmt.Errorf("%w: already friends", httpx.ErrConflict)
	}
	pending, err := s.repo.HasPendingRequest(ctx, fromID, toID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("%w: a friend request is already pending", httpx.ErrConflict)
	}

	req, err := s.repo.CreateRequest(ctx, fromID, toID)
	if err != nil {
		if errors.Is(err, httpx.ErrConflict) {
			return nil, fmt.Errorf("%w: a friend request is already pending", httpx.ErrConflict)
		}
		return nil, err
	}
	s.logger.Info("friend request sent",
		slog.Int64("from_user_id", fromID), slog.Int64("to_user_id", toID))
	return req, nil
}

// AcceptRequest lets the addressee accept a pending request, which makes
// the two users friends in both directions.
func (s *Service) AcceptRequest(ctx context.Context, userID, requestID int64) error {
	req, err := s.repo.PendingRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.ToUserID != userID {
		return fmt.Errorf("%w: only the addressee can accept a request", httpx.ErrForbidden)
	}
	if err := s.repo.Accept(ctx, req.ID, req.FromUserID, req.ToUserID); err != nil {
		return err
	}
	s.logger.Info("friend request accepted",
		slog.Int64("request_id", req.ID), slog.Int64("user_id", userID))
	return nil
}

// ListIncoming returns pending requests addressed to the user.
func (s *Service) ListIncoming(ctx context.Context, userID int64) ([]IncomingRequest, error) {
	return s.repo.ListIncoming(ctx, userID)
}

// ListFriends returns the user's friend list.
func (s *Service) ListFriends(ctx context.Context, userID int64) ([]Friend, error) {
	return s.repo.ListFriends(ctx, userID)
}
