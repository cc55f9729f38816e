package messages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ripple-social/ripple/internal/platform/httpx"
)

// Service handles messaging business logic. Messages only flow between
// friends; both listing and sending check the friendship first.
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

// ListThreads returns the user's inbox, one entry per friend.
func (s *Service) ListThreads(ctx context.Context, userID int64) ([]Thread, error) {
	return s.repo.ListThreads(ctx, userID)
}

// Conversation returns the recent messages exchanged with one friend.
func (s *Service) Conversation(ctx context.Context, userID, friendID int64) ([]Message, error) {
	ok, err := s.repo.IsFriend(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: you can only message friends", httpx.ErrForbidden)
	}
	return s.repo.ListConversation(ctx, userID, friendID)
}

// Send stores a message to a friend.
func (s *Service) Send(ctx context.Context, fromID, toID int64, content string) (*Message, error) {
	if toID <= 0 {
		return nil, fmt.Errorf("%w: to_user_id is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", httpx.ErrValidation)
	}
	ok, err := s.repo.IsFriend(ctx, fromID, toID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: you can only message friends", httpx.ErrForbidden)
	}

	msg, err := s.repo.Insert(ctx, fromID, toID, content)
	if err != nil {
		return nil, err
	}
	s.logger.Info("message sent",
		slog.Int64("from_user_id", fromID), slog.Int64("to_user_id", toID))
	return msg, nil
}
