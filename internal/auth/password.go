package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the work factor used by earlier deployments so
// new hashes stay comparable in cost to existing ones.
const DefaultBcryptCost = 10

const legacyHashPrefix = "$2y$"

// Hasher wraps bcrypt hashing with a fixed work factor.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher, clamping out-of-range costs to the default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted one-way hash of password. Each call embeds a fresh
// salt, so two hashes of the same input differ yet both verify.
func (h *Hasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether password matches hash. Rows migrated from older
// stacks may carry a legacy $2y$ format prefix; when the primary comparison
// fails such a hash is retried exactly once with the prefix normalized to
// $2b$. This is a bounded rewrite, not a retry loop.
func (h *Hasher) Verify(password, hash string) bool {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil {
		return true
	}
	if strings.HasPrefix(hash, legacyHashPrefix) {
		normalized := "$2b$" + hash[len(legacyHashPrefix):]
		return bcrypt.CompareHashAndPassword([]byte(normalized), []byte(password)) == nil
	}
	return false
}
