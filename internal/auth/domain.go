// Package auth implements credential issuance and stateless session
// verification: password hashing, token signing, registration, login,
// email verification and the request middleware guarding protected routes.
package auth

import "time"

// User is a credential record in the store.
type User struct {
	ID                int64
	Username          string
	Email             string
	PasswordHash      string
	Verified          bool
	VerificationToken *string
	CreatedAt         time.Time
}

// Identity is the minimal claim set embedded in a session token and
// attached to the request context after verification.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
