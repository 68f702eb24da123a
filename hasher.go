package account

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt cost used outside tests. Test builds can
// inject bcrypt.MinCost through NewBcryptHasher.
const DefaultHashCost = 14

// PasswordHasher hashes and verifies credentials. Verification must be
// constant time with respect to the guess and must never error on a
// missing hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// BcryptHasher is the default PasswordHasher.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt hasher with the given cost. Costs
// outside the valid bcrypt range fall back to DefaultHashCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash generates a salted one-way hash of the password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(out), err
}

// Verify reports whether password matches hash. An empty or malformed
// hash verifies false, never errors.
func (h *BcryptHasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashPassword generates a password hash at the default cost.
func HashPassword(password string) (string, error) {
	return NewBcryptHasher(passwordHashCost()).Hash(password)
}

// ComparePasswordAndHash validates the given cleartext password against
// the hashed password.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
