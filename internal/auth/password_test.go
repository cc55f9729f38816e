package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasherHashAndVerify(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	require.True(t, hasher.Verify("s3cret", hash))
	require.False(t, hasher.Verify("wrong", hash))
}

func TestHasherDistinctSalts(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, hasher.Verify("same-password", first))
	require.True(t, hasher.Verify("same-password", second))
}

func TestHasherLegacyPrefix(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("legacy-pass")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$2"))

	legacy := "$2y$" + hash[4:]
	require.True(t, hasher.Verify("legacy-pass", legacy))
	require.False(t, hasher.Verify("wrong", legacy))
}

func TestNewHasherClampsCost(t *testing.T) {
	hasher := NewHasher(99)
	require.Equal(t, DefaultBcryptCost, hasher.cost)

	hasher = NewHasher(-1)
	require.Equal(t, DefaultBcryptCost, hasher.cost)
}
