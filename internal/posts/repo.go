package posts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ripple-social/ripple/internal/platform/db"
	"github.com/ripple-social/ripple/internal/platform/httpx"
)

// Repository defines persistence operations for the posts module.
type Repository interface {
	ListPosts(ctx context.Context) ([]Post, error)
	GetPost(ctx context.Context, id int64) (*Post, error)
	CreatePost(ctx context.Context, userID int64, content string) (*Post, error)
	UpdatePost(ctx context.Context, id int64, content string) (*Post, error)
	DeletePost(ctx context.Context, id int64) error
	// LastPostedAt returns the author's most recent post time; ok is false
	// when the author has never posted.
	LastPostedAt(ctx context.Context, userID int64) (t time.Time, ok bool, err error)
	CreateComment(ctx context.Context, postID, userID int64, content string) (*Comment, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListPosts returns all posts, newest first, with comments attached.
func (r *PGRepository) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.user_id, u.username, p.content, p.created_at, p.updated_at
		FROM posts p
		JOIN users u ON p.user_id = u.id
		ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	index := make(map[int64]int)
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Username, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Comments = []Comment{}
		index[p.ID] = len(posts)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	commentRows, err := r.pool.Query(ctx, `
		SELECT c.id, c.post_id, c.user_id, u.username, c.content, c.created_at
		FROM comments c
		JOIN users u ON c.user_id = u.id
		ORDER BY c.id ASC`)
	if err != nil {
		return nil, err
	}
	defer commentRows.Close()

	for commentRows.Next() {
		var c Comment
		if err := commentRows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[c.PostID]; ok {
			posts[i].Comments = append(posts[i].Comments, c)
		}
	}
	if err := commentRows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost fetches a single post without its comments.
func (r *PGRepository) GetPost(ctx context.Context, id int64) (*Post, error) {
	var p Post
	err := r.pool.QueryRow(ctx, `
		SELECT p.id, p.user_id, u.username, p.content, p.created_at, p.updated_at
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.id = $1`, id).
		Scan(&p.ID, &p.UserID, &p.Username, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Comments = []Comment{}
	return &p, nil
}

// CreatePost inserts a post and returns it with the author's username.
func (r *PGRepository) CreatePost(ctx context.Context, userID int64, content string) (*Post, error) {
	var p Post
	err := r.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO posts (user_id, content) VALUES ($1, $2)
			RETURNING id, user_id, content, created_at, updated_at
		)
		SELECT i.id, i.user_id, u.username, i.content, i.created_at, i.updated_at
		FROM inserted i JOIN users u ON i.user_id = u.id`, userID, content).
		Scan(&p.ID, &p.UserID, &p.Username, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Comments = []Comment{}
	return &p, nil
}

// UpdatePost rewrites a post's content.
func (r *PGRepository) UpdatePost(ctx context.Context, id int64, content string) (*Post, error) {
	var p Post
	err := r.pool.QueryRow(ctx, `
		WITH updated AS (
			UPDATE posts SET content = $2, updated_at = NOW() WHERE id = $1
			RETURNING id, user_id, content, created_at, updated_at
		)
		SELECT u2.id, u2.user_id, u.username, u2.content, u2.created_at, u2.updated_at
		FROM updated u2 JOIN users u ON u2.user_id = u.id`, id, content).
		Scan(&p.ID, &p.UserID, &p.Username, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, httpx.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Comments = []Comment{}
	return &p, nil
}

// DeletePost removes a post and its comments in one transaction.
func (r *PGRepository) DeletePost(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE post_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
		return err
	})
}

// LastPostedAt returns the author's most recent post time.
func (r *PGRepository) LastPostedAt(ctx context.Context, userID int64) (time.Time, bool, error) {
	var t time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT created_at FROM posts WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`,
		userID).Scan(&t)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// CreateComment inserts a comment and returns it with the author's username.
func (r *PGRepository) CreateComment(ctx context.Context, postID, userID int64, content string) (*Comment, error) {
	var c Comment
	err := r.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO comments (post_id, user_id, content) VALUES ($1, $2, $3)
			RETURNING id, post_id, user_id, content, created_at
		)
		SELECT i.id, i.post_id, i.user_id, u.username, i.content, i.created_at
		FROM inserted i JOIN users u ON i.user_id = u.id`, postID, userID, content).
		Scan(&c.ID, &c.PostID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

var _ Repository = (*PGRepository)(nil)
