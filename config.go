package account

import "time"

// Defaults applied by SimpleConfig when a field is left at its zero value.
const (
	DefaultSigningMethod = "HS256"
	DefaultTokenLifetime = 86400 * time.Second
	DefaultLockThreshold = 10
	DefaultLockDuration  = 30 * time.Minute
	DefaultLinkTTL       = 24 * time.Hour
)

// Config holds account security options.
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetTokenLifetime() time.Duration
	GetLockThreshold() int
	GetLockDuration() time.Duration
	GetLinkTTL() time.Duration
	GetRequireConfirmedEmail() bool
	GetMintStrategy() string
	GetLoadStrategy() string
}

// SimpleConfig is a plain struct Config with sensible defaults. Zero values
// fall back to the package defaults; RequireConfirmedEmail defaults to true
// and is disabled through SkipEmailConfirmation.
type SimpleConfig struct {
	SigningKey            string
	SigningMethod         string
	TokenLifetime         time.Duration
	LockThreshold         int
	LockDuration          time.Duration
	LinkTTL               time.Duration
	SkipEmailConfirmation bool
	MintStrategy          string
	LoadStrategy          string
}

var _ Config = SimpleConfig{}

func (c SimpleConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c SimpleConfig) GetSigningMethod() string {
	if c.SigningMethod == "" {
		return DefaultSigningMethod
	}
	return c.SigningMethod
}

func (c SimpleConfig) GetTokenLifetime() time.Duration {
	if c.TokenLifetime <= 0 {
		return DefaultTokenLifetime
	}
	return c.TokenLifetime
}

func (c SimpleConfig) GetLockThreshold() int {
	if c.LockThreshold <= 0 {
		return DefaultLockThreshold
	}
	return c.LockThreshold
}

func (c SimpleConfig) GetLockDuration() time.Duration {
	if c.LockDuration <= 0 {
		return DefaultLockDuration
	}
	return c.LockDuration
}

func (c SimpleConfig) GetLinkTTL() time.Duration {
	if c.LinkTTL <= 0 {
		return DefaultLinkTTL
	}
	return c.LinkTTL
}

func (c SimpleConfig) GetRequireConfirmedEmail() bool {
	return !c.SkipEmailConfirmation
}

func (c SimpleConfig) GetMintStrategy() string {
	return c.MintStrategy
}

func (c SimpleConfig) GetLoadStrategy() string {
	return c.LoadStrategy
}
