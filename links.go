package account

import (
	"crypto/rand"
	"math/big"
	"time"
)

// LinkTokenLength is the length of generated email/password link tokens.
// The alphabet is URL-path safe so links can be embedded without escaping.
const LinkTokenLength = 50

const linkAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateLinkToken returns a high-entropy opaque string used for email
// confirmation and password reset links.
func GenerateLinkToken() string {
	max := big.NewInt(int64(len(linkAlphabet)))
	buf := make([]byte, LinkTokenLength)

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken,
			// there is no meaningful fallback for a security token
			panic(err)
		}
		buf[i] = linkAlphabet[n.Int64()]
	}

	return string(buf)
}

// LinkExpired reports whether a link expiry has passed. A missing expiry
// counts as expired so half-initialized link pairs never validate.
func LinkExpired(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return true
	}
	return expiresAt.Before(now)
}
