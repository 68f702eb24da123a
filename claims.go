package account

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the claim set carried by session tokens. Custom mint
// strategies may add fields but must preserve exp, nbf, iat and account_id
// for default-loader interop.
type SessionClaims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id,omitempty"`
}

func newSessionClaims(accountID string, now time.Time, lifetime time.Duration) *SessionClaims {
	return &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
		AccountID: accountID,
	}
}

// Expires returns the expiry time, zero when absent.
func (c *SessionClaims) Expires() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Issued returns the issuance time, zero when absent.
func (c *SessionClaims) Issued() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}
