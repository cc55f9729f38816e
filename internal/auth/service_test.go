package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ripple-social/ripple/internal/platform/httpx"
)

type memoryRepo struct {
	users  map[int64]*User
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[int64]*User{}, nextID: 1}
}

func (m *memoryRepo) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	for _, u := range m.users {
		if u.Username == identifier || u.Email == identifier {
			copied := *u
			return &copied, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *memoryRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *memoryRepo) CreateUser(ctx context.Context, username, email, passwordHash, verificationToken string) (int64, error) {
	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return 0, httpx.ErrDuplicateIdentity
		}
	}
	id := m.nextID
	m.nextID++
	token := verificationToken
	m.users[id] = &User{
		ID:                id,
		Username:          username,
		Email:             email,
		PasswordHash:      passwordHash,
		Verified:          false,
		VerificationToken: &token,
		CreatedAt:         time.Now(),
	}
	return id, nil
}

func (m *memoryRepo) VerifyEmail(ctx context.Context, token string) error {
	for _, u := range m.users {
		if u.VerificationToken != nil && *u.VerificationToken == token && !u.Verified {
			u.Verified = true
			u.VerificationToken = nil
			return nil
		}
	}
	return httpx.ErrInvalidVerification
}

var _ Repository = (*memoryRepo)(nil)

type recordingEnqueuer struct {
	emails []string
	tokens []string
	err    error
}

func (r *recordingEnqueuer) EnqueueVerificationEmail(ctx context.Context, email, token string) error {
	if r.err != nil {
		return r.err
	}
	r.emails = append(r.emails, email)
	r.tokens = append(r.tokens, token)
	return nil
}

func newTestService(repo Repository, mailq VerificationEnqueuer) *Service {
	hasher := NewHasher(bcrypt.MinCost)
	codec := NewCodec("test-secret", time.Hour)
	return NewService(repo, hasher, codec, mailq, nil)
}

func TestRegisterAndVerifyAndLogin(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	mailq := &recordingEnqueuer{}
	svc := newTestService(repo, mailq)

	require.NoError(t, svc.Register(ctx, "dana", "dana@example.com", "pass123"))
	require.Len(t, mailq.tokens, 1)

	// Not verified yet, correct password.
	_, err := svc.Login(ctx, "dana", "pass123")
	require.ErrorIs(t, err, httpx.ErrEmailNotVerified)

	require.NoError(t, svc.VerifyEmail(ctx, mailq.tokens[0]))

	result, err := svc.Login(ctx, "dana", "pass123")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, "dana", result.User.Username)
	require.Equal(t, "dana@example.com", result.User.Email)

	// Login by email works too.
	result, err = svc.Login(ctx, "dana@example.com", "pass123")
	require.NoError(t, err)
	require.Equal(t, int64(1), result.User.ID)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo, nil)

	require.NoError(t, svc.Register(ctx, "dana", "dana@example.com", "pass123"))

	err := svc.Register(ctx, "dana", "other@example.com", "pass123")
	require.ErrorIs(t, err, httpx.ErrDuplicateIdentity)

	err = svc.Register(ctx, "other", "dana@example.com", "pass123")
	require.ErrorIs(t, err, httpx.ErrDuplicateIdentity)
}

func TestRegisterValidatesInput(t *testing.T) {
	svc := newTestService(newMemoryRepo(), nil)

	for _, tc := range []struct{ username, email, password string }{
		{"", "a@example.com", "p"},
		{"a", "", "p"},
		{"a", "a@example.com", ""},
	} {
		err := svc.Register(context.Background(), tc.username, tc.email, tc.password)
		require.ErrorIs(t, err, httpx.ErrValidation)
	}
}

// raceRepo simulates a concurrent insert landing between the pre-check
// and CreateUser.
type raceRepo struct {
	*memoryRepo
	raced bool
}

func (r *raceRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	if !r.raced {
		r.raced = true
		return nil, httpx.ErrNotFound
	}
	return r.memoryRepo.FindByUsernameOrEmail(ctx, username, email)
}

func TestRegisterInsertRaceReportsDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := &raceRepo{memoryRepo: newMemoryRepo()}
	svc := newTestService(repo, nil)

	require.NoError(t, svc.Register(ctx, "dana", "dana@example.com", "pass123"))

	repo.raced = false
	err := svc.Register(ctx, "dana", "dana@example.com", "pass123")
	require.ErrorIs(t, err, httpx.ErrDuplicateIdentity)
}

func TestRegisterSurvivesEnqueueFailure(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	mailq := &recordingEnqueuer{err: errors.New("queue down")}
	svc := newTestService(repo, mailq)

	require.NoError(t, svc.Register(ctx, "dana", "dana@example.com", "pass123"))
	require.Len(t, repo.users, 1)
}

func TestLoginMergesUnknownAndWrongPassword(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	mailq := &recordingEnqueuer{}
	svc := newTestService(repo, mailq)

	require.NoError(t, svc.Register(ctx, "dana", "dana@example.com", "pass123"))
	require.NoError(t, svc.VerifyEmail(ctx, mailq.tokens[0]))

	_, unknownErr := svc.Login(ctx, "nobody", "pass123")
	_, wrongErr := svc.Login(ctx, "dana", "wrong")

	require.ErrorIs(t, unknownErr, httpx.ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, httpx.ErrInvalidCredentials)
	require.Equal(t, unknownErr, wrongErr)
}

func TestVerifyEmailSingleUse(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	mailq := &recordingEnqueuer{}
	svc := newTestService(repo, mailq)

	require.NoError(t, svc.Register(ctx, "dana", "dana@example.com", "pass123"))
	token := mailq.tokens[0]

	require.NoError(t, svc.VerifyEmail(ctx, token))
	require.ErrorIs(t, svc.VerifyEmail(ctx, token), httpx.ErrInvalidVerification)
	require.ErrorIs(t, svc.VerifyEmail(ctx, ""), httpx.ErrValidation)
}
