package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ripple-social/ripple/internal/platform/httpx"
)

// VerificationEnqueuer queues the out-of-band verification email. The
// queue is best effort: a failed enqueue is logged and registration still
// succeeds, because the token stays in the store and can be re-sent.
type VerificationEnqueuer interface {
	EnqueueVerificationEmail(ctx context.Context, email, token string) error
}

// Service wraps authentication business rules: registration, email
// verification and login. It holds no mutable state beyond its injected
// collaborators, so concurrent requests need no coordination here.
type Service struct {
	repo   Repository
	hasher *Hasher
	codec  *Codec
	mailq  VerificationEnqueuer
	logger *slog.Logger
}

// NewService constructs a new Service. mailq may be nil when no queue is
// configured (tests, single-binary deployments without a worker).
func NewService(repo Repository, hasher *Hasher, codec *Codec, mailq VerificationEnqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, hasher: hasher, codec: codec, mailq: mailq, logger: logger}
}

// LoginResult carries the issued token and the identity it asserts.
type LoginResult struct {
	Token string
	User  Identity
}

// Register creates a new unverified user and queues the verification email.
func (s *Service) Register(ctx context.Context, username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return fmt.Errorf("%w: username, email and password are required", httpx.ErrValidation)
	}

	existing, err := s.repo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, httpx.ErrNotFound) {
		return fmt.Errorf("register lookup: %w", err)
	}
	if existing != nil {
		return httpx.ErrDuplicateIdentity
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	token := uuid.NewString()

	// The store's uniqueness constraints are the authority here: a
	// concurrent registration can commit between the pre-check and this
	// insert, in which case the insert itself reports the duplicate.
	id, err := s.repo.CreateUser(ctx, username, email, hash, token)
	if err != nil {
		return err
	}
	s.logger.Info("registered user", slog.Int64("user_id", id), slog.String("username", username))

	if s.mailq != nil {
		if err := s.mailq.EnqueueVerificationEmail(ctx, email, token); err != nil {
			s.logger.Warn("enqueue verification email", slog.Any("error", err))
		}
	}
	return nil
}

// VerifyEmail consumes a verification token. The update is atomic with the
// token clear, so a second call with the same token fails.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: token is required", httpx.ErrValidation)
	}
	return s.repo.VerifyEmail(ctx, token)
}

// Login validates identifier/password credentials and issues a session
// token. Unknown identifiers and wrong passwords collapse into the same
// invalid-credentials outcome; the distinction lives only in debug logs.
func (s *Service) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	if identifier == "" || password == "" {
		return nil, fmt.Errorf("%w: identifier and password are required", httpx.ErrValidation)
	}

	user, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			s.logger.Debug("login rejected: unknown identifier", slog.String("identifier", identifier))
			return nil, httpx.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Debug("login rejected: password mismatch", slog.Int64("user_id", user.ID))
		return nil, httpx.ErrInvalidCredentials
	}

	// Checked after password verification so an unverified account still
	// behaves like any other on a wrong password.
	if !user.Verified {
		return nil, httpx.ErrEmailNotVerified
	}

	identity := Identity{ID: user.ID, Username: user.Username, Email: user.Email}
	token, err := s.codec.Issue(identity)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("login success", slog.String("username", user.Username))
	return &LoginResult{Token: token, User: identity}, nil
}
