package account_test

import (
	"testing"
	"time"

	account "github.com/goliatone/go-account"
	"github.com/stretchr/testify/assert"
)

func TestSimpleConfigDefaults(t *testing.T) {
	cfg := account.SimpleConfig{SigningKey: "key"}

	assert.Equal(t, "key", cfg.GetSigningKey())
	assert.Equal(t, "HS256", cfg.GetSigningMethod())
	assert.Equal(t, 86400*time.Second, cfg.GetTokenLifetime())
	assert.Equal(t, 10, cfg.GetLockThreshold())
	assert.Equal(t, 30*time.Minute, cfg.GetLockDuration())
	assert.Equal(t, 24*time.Hour, cfg.GetLinkTTL())
	assert.True(t, cfg.GetRequireConfirmedEmail())
	assert.Empty(t, cfg.GetMintStrategy())
	assert.Empty(t, cfg.GetLoadStrategy())
}

func TestSimpleConfigOverrides(t *testing.T) {
	cfg := account.SimpleConfig{
		SigningKey:            "key",
		SigningMethod:         "HS512",
		TokenLifetime:         time.Hour,
		LockThreshold:         5,
		LockDuration:          time.Minute,
		LinkTTL:               time.Hour,
		SkipEmailConfirmation: true,
		MintStrategy:          "opaque",
		LoadStrategy:          "opaque",
	}

	assert.Equal(t, "HS512", cfg.GetSigningMethod())
	assert.Equal(t, time.Hour, cfg.GetTokenLifetime())
	assert.Equal(t, 5, cfg.GetLockThreshold())
	assert.Equal(t, time.Minute, cfg.GetLockDuration())
	assert.Equal(t, time.Hour, cfg.GetLinkTTL())
	assert.False(t, cfg.GetRequireConfirmedEmail())
	assert.Equal(t, "opaque", cfg.GetMintStrategy())
	assert.Equal(t, "opaque", cfg.GetLoadStrategy())
}

func TestPayloadValidation(t *testing.T) {
	t.Run("register", func(t *testing.T) {
		assert.NoError(t, account.RegisterPayload{Email: "ok@example.com", Password: "password123"}.Validate())
		assert.NoError(t, account.RegisterPayload{Email: "ok@example.com"}.Validate())
		assert.Error(t, account.RegisterPayload{}.Validate())
		assert.Error(t, account.RegisterPayload{Email: "nope"}.Validate())
		assert.Error(t, account.RegisterPayload{Email: "ok@example.com", Password: "short"}.Validate())
	})

	t.Run("email change", func(t *testing.T) {
		assert.NoError(t, account.EmailChangePayload{Email: "ok@example.com"}.Validate())
		assert.Error(t, account.EmailChangePayload{}.Validate())
	})

	t.Run("password", func(t *testing.T) {
		assert.NoError(t, account.PasswordPayload{Password: "password123"}.Validate())
		assert.Error(t, account.PasswordPayload{}.Validate())
		assert.Error(t, account.PasswordPayload{Password: "short"}.Validate())
	})
}
