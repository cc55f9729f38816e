package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the fixed session lifetime.
const DefaultTokenTTL = 2 * time.Hour

var (
	// ErrTokenExpired means the signature checked out but the token is past
	// its expiry. Middleware rejects it the same way as ErrTokenInvalid;
	// only logs keep the distinction.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers malformed input and signature mismatches.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the signed payload carried by a session token.
type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Codec signs and verifies stateless session tokens. Validity is purely a
// function of signature and expiry; no server-side token state exists, so
// rotating the secret is the only way to invalidate tokens early.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec constructs a Codec with the given signing secret and TTL.
func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// TTL exposes the configured token lifetime, mirrored by the cookie Max-Age.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs identity into a compact token valid for the configured TTL.
func (c *Codec) Issue(identity Identity) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   identity.ID,
		Username: identity.Username,
		Email:    identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})
	return token.SignedString(c.secret)
}

// Verify checks signature integrity and expiry and returns the embedded
// identity.
func (c *Codec) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrTokenInvalid
	}
	if !token.Valid {
		return Identity{}, ErrTokenInvalid
	}
	return Identity{ID: claims.UserID, Username: claims.Username, Email: claims.Email}, nil
}
