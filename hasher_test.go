package account_test

import (
	"testing"

	account "github.com/goliatone/go-account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := account.NewBcryptHasher(bcrypt.MinCost)

	t.Run("hash and verify roundtrip", func(t *testing.T) {
		hash, err := hasher.Hash("s3cret-password")
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.NotEqual(t, "s3cret-password", hash)

		assert.True(t, hasher.Verify("s3cret-password", hash))
		assert.False(t, hasher.Verify("wrong-password", hash))
	})

	t.Run("empty password errors", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.ErrorIs(t, err, account.ErrNoEmptyString)
	})

	t.Run("empty hash verifies false", func(t *testing.T) {
		assert.False(t, hasher.Verify("anything", ""))
	})

	t.Run("invalid cost falls back to default", func(t *testing.T) {
		h := account.NewBcryptHasher(1000)
		assert.NotNil(t, h)
	})
}

func TestComparePasswordAndHash(t *testing.T) {
	hash, err := account.NewBcryptHasher(bcrypt.MinCost).Hash("password123")
	require.NoError(t, err)

	assert.NoError(t, account.ComparePasswordAndHash("password123", hash))
	assert.ErrorIs(t, account.ComparePasswordAndHash("nope", hash), account.ErrMismatchedHashAndPassword)
}
