package friends

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ripple-social/ripple/internal/platform/db"
	"github.com/ripple-social/ripple/internal/platform/httpx"
)

// Repository defines persistence operations for the friends module.
type Repository interface {
	UserIDByUsername(ctx context.Context, username string) (int64, error)
	AreFriends(ctx context.Context, userID, otherID int64) (bool, error)
	HasPendingRequest(ctx context.Context, fromID, toID int64) (bool, error)
	CreateRequest(ctx context.Context, fromID, toID int64) (*FriendRequest, error)
	PendingRequest(ctx context.Context, requestID int64) (*FriendRequest, error)
	// Accept marks the request accepted and inserts both friendship rows
	// in one transaction.
	Accept(ctx context.Context, requestID, fromID, toID int64) error
	ListIncoming(ctx context.Context, userID int64) ([]IncomingRequest, error)
	ListFriends(ctx context.Context, userID int64) ([]Friend, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// UserIDByUsername resolves a username to its user id.
func (r *PGRepository) UserIDByUsername(ctx context.Context, username string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, httpx.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AreFriends reports whether a friendship row exists. Rows are stored in
// both directions, so one direction is enough to check.
func (r *PGRepository) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM friendships WHERE user_id = $1 AND friend_user_id = $2)`,
		userID, otherID).Scan(&exists)
	return exists, err
}

// HasPendingRequest reports a pending request in either direction.
func (r *PGRepository) HasPendingRequest(ctx context.Context, fromID, toID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friend_requests
			WHERE status = 'pending'
			  AND ((from_user_id = $1 AND to_user_id = $2)
			    OR (from_user_id = $2 AND to_user_id = $1))
		)`, fromID, toID).Scan(&exists)
	return exists, err
}

// CreateRequest inserts a pending request.
func (r *PGRepository) CreateRequest(ctx context.Context, fromID, toID int64) (*FriendRequest, error) {
	var req FriendRequest
	err := r.pool.QueryRow(ctx, `
		INSERT INTO friend_requests (from_user_id, to_user_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, from_user_id, to_user_id, status, created_at`,
		fromID, toID).
		Scan(&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, httpx.ErrConflict
		}
		return nil, err
	}
	return &req, nil
}

// PendingRequest fetches a request that is still pending.
func (r *PGRepository) PendingRequest(ctx context.Context, requestID int64) (*FriendRequest, error) {
	var req FriendRequest
	err := r.pool.QueryRow(ctx, `
		SELECT id, from_user_id, to_user_id, status, created_at
		FROM friend_requests
		WHERE id = $1 AND status = 'pending'`, requestID).
		Scan(&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Accept flips the request to accepted and writes the friendship both ways.
func (r *PGRepository) Accept(ctx context.Context, requestID, fromID, toID int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE friend_requests SET status = 'accepted' WHERE id = $1 AND status = 'pending'`,
			requestID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO friendships (user_id, friend_user_id)
			VALUES ($1, $2), ($2, $1)
			ON CONFLICT (user_id, friend_user_id) DO NOTHING`, fromID, toID)
		return err
	})
}

// ListIncoming returns pending requests addressed to the user.
func (r *PGRepository) ListIncoming(ctx context.Context, userID int64) ([]IncomingRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT fr.id, fr.from_user_id, u.username, fr.created_at
		FROM friend_requests fr
		JOIN users u ON fr.from_user_id = u.id
		WHERE fr.to_user_id = $1 AND fr.status = 'pending'
		ORDER BY fr.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []IncomingRequest{}
	for rows.Next() {
		var req IncomingRequest
		if err := rows.Scan(&req.ID, &req.FromUserID, &req.FromUsername, &req.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// ListFriends returns the user's friends ordered by username.
func (r *PGRepository) ListFriends(ctx context.Context, userID int64) ([]Friend, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.username, u.email
		FROM friendships f
		JOIN users u ON f.friend_user_id = u.id
		WHERE f.user_id = $1
		ORDER BY u.username ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	friends := []Friend{}
	for rows.Next() {
		var f Friend
		if err := rows.Scan(&f.ID, &f.Username, &f.Email); err != nil {
			return nil, err
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
