// Package users exposes public user directory endpoints.
package users

import "time"

// User is the public view of an account. Email stays private to the
// account owner and their friends.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
