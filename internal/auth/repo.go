package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ripple-social/ripple/internal/platform/httpx"
)

// Repository defines persistence operations for the credential store.
type Repository interface {
	// FindByIdentifier resolves a user by username or email.
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
	// FindByUsernameOrEmail is the registration duplicate pre-check.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	// CreateUser inserts an unverified user and returns the assigned id.
	// A uniqueness violation surfaces as httpx.ErrDuplicateIdentity even
	// when the pre-check saw no conflicting row.
	CreateUser(ctx context.Context, username, email, passwordHash, verificationToken string) (int64, error)
	// VerifyEmail marks the matching user verified and clears the token in
	// one statement, so a second use of the same token finds no row.
	VerifyEmail(ctx context.Context, token string) error
}

const userColumns = `id, username, email, password_hash, verified, verification_token, created_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByIdentifier fetches a user whose username or email equals identifier.
func (r *PGRepository) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`, identifier)
	return scanUser(row)
}

// FindByUsernameOrEmail fetches a user colliding with either field.
func (r *PGRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $2`, username, email)
	return scanUser(row)
}

// CreateUser inserts a new unverified user record.
func (r *PGRepository) CreateUser(ctx context.Context, username, email, passwordHash, verificationToken string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, verified, verification_token)
		 VALUES ($1, $2, $3, FALSE, $4)
		 RETURNING id`,
		username, email, passwordHash, verificationToken).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, httpx.ErrDuplicateIdentity
		}
		return 0, err
	}
	return id, nil
}

// VerifyEmail completes verification for the user holding token.
func (r *PGRepository) VerifyEmail(ctx context.Context, token string) error {
	var id int64
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET verified = TRUE, verification_token = NULL
		 WHERE verification_token = $1 AND NOT verified
		 RETURNING id`, token).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return httpx.ErrInvalidVerification
	}
	return err
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Verified, &user.VerificationToken, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

var _ Repository = (*PGRepository)(nil)
