// Package messages implements direct messaging between friends.
package messages

import "time"

// Message is one direct message between two users.
type Message struct {
	ID         int64     `json:"id"`
	FromUserID int64     `json:"from_user_id"`
	ToUserID   int64     `json:"to_user_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Thread summarises one friend conversation for the inbox listing.
type Thread struct {
	FriendID      int64      `json:"friend_id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	LastMessageAt *time.Time `json:"last_message_at"`
}
