// Package friends manages friend requests and the symmetric friendship
// graph derived from accepted requests.
package friends

import "time"

// RequestStatus enumerates friend request states.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
)

// FriendRequest is a directed invitation from one user to another.
type FriendRequest struct {
	ID         int64         `json:"id"`
	FromUserID int64         `json:"from_user_id"`
	ToUserID   int64         `json:"to_user_id"`
	Status     RequestStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// IncomingRequest is a pending request as shown to its addressee.
type IncomingRequest struct {
	ID           int64     `json:"id"`
	FromUserID   int64     `json:"from_user_id"`
	FromUsername string    `json:"from_username"`
	CreatedAt    time.Time `json:"created_at"`
}

// Friend is one entry of a user's friend list.
type Friend struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
