package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)
	identity := Identity{ID: 42, Username: "dana", Email: "dana@example.com"}

	token, err := codec.Issue(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, identity, got)
}

func TestCodecExpirySpansTTL(t *testing.T) {
	ttl := 90 * time.Minute
	codec := NewCodec("test-secret", ttl)

	token, err := codec.Issue(Identity{ID: 1, Username: "a", Email: "a@example.com"})
	require.NoError(t, err)

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.Equal(t, ttl, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestCodecDefaultTTL(t *testing.T) {
	codec := NewCodec("test-secret", 0)
	require.Equal(t, DefaultTokenTTL, codec.TTL())
}

func TestCodecExpiredToken(t *testing.T) {
	codec := NewCodec("test-secret", -time.Minute)

	token, err := codec.Issue(Identity{ID: 1, Username: "a", Email: "a@example.com"})
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestCodecWrongSecret(t *testing.T) {
	issuer := NewCodec("secret-one", time.Hour)
	verifier := NewCodec("secret-two", time.Hour)

	token, err := issuer.Issue(Identity{ID: 1, Username: "a", Email: "a@example.com"})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodecMalformedToken(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)

	_, err := codec.Verify("not-a-token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodecTamperedToken(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)

	token, err := codec.Issue(Identity{ID: 7, Username: "eve", Email: "eve@example.com"})
	require.NoError(t, err)

	tampered := []byte(token)
	tampered[len(tampered)-1] ^= 0x01
	_, err = codec.Verify(string(tampered))
	require.ErrorIs(t, err, ErrTokenInvalid)
}
