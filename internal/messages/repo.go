package messages

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// conversationLimit caps how many messages one conversation fetch returns.
const conversationLimit = 200

// Repository defines persistence operations for the messages module.
type Repository interface {
	IsFriend(ctx context.Context, userID, otherID int64) (bool, error)
	ListThreads(ctx context.Context, userID int64) ([]Thread, error)
	// ListConversation returns the most recent messages between two users
	// in chronological order.
	ListConversation(ctx context.Context, userID, friendID int64) ([]Message, error)
	Insert(ctx context.Context, fromID, toID int64, content string) (*Message, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// IsFriend reports whether a friendship row exists from userID to otherID.
func (r *PGRepository) IsFriend(ctx context.Context, userID, otherID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM friendships WHERE user_id = $1 AND friend_user_id = $2)`,
		userID, otherID).Scan(&exists)
	return exists, err
}

// ListThreads returns one row per friend, most recently messaged first.
// Friends with no messages yet sort last.
func (r *PGRepository) ListThreads(ctx context.Context, userID int64) ([]Thread, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.username, u.email, MAX(m.created_at) AS last_message_at
		FROM friendships f
		JOIN users u ON f.friend_user_id = u.id
		LEFT JOIN messages m
		  ON (m.sender_id = f.user_id AND m.receiver_id = f.friend_user_id)
		  OR (m.sender_id = f.friend_user_id AND m.receiver_id = f.user_id)
		WHERE f.user_id = $1
		GROUP BY u.id, u.username, u.email
		ORDER BY last_message_at DESC NULLS LAST, u.username ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	threads := []Thread{}
	for rows.Next() {
		var t Thread
		if err := rows.Scan(&t.FriendID, &t.Username, &t.Email, &t.LastMessageAt); err != nil {
			return nil, err
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

// ListConversation fetches the newest messages between two users and
// returns them oldest first.
func (r *PGRepository) ListConversation(ctx context.Context, userID, friendID int64) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sender_id, receiver_id, content, created_at
		FROM (
			SELECT id, sender_id, receiver_id, content, created_at
			FROM messages
			WHERE (sender_id = $1 AND receiver_id = $2)
			   OR (sender_id = $2 AND receiver_id = $1)
			ORDER BY id DESC
			LIMIT $3
		) recent
		ORDER BY id ASC`, userID, friendID, conversationLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.FromUserID, &m.ToUserID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Insert stores a message.
func (r *PGRepository) Insert(ctx context.Context, fromID, toID int64, content string) (*Message, error) {
	var m Message
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (sender_id, receiver_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, sender_id, receiver_id, content, created_at`,
		fromID, toID, content).
		Scan(&m.ID, &m.FromUserID, &m.ToUserID, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

var _ Repository = (*PGRepository)(nil)
