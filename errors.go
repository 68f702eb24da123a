package account

import (
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeAccountLocked       = "account_locked"
	TextCodeEmailNotConfirmed   = "email_not_confirmed"
	TextCodeEmailLinkExpired    = "email_link_expired"
	TextCodePasswordLinkExpired = "password_link_expired"
	TextCodeTokenMalformed      = "token_malformed"
	TextCodeTokenExpired        = "token_expired"
	TextCodeTokenNoAccount      = "token_no_account"
	TextCodeTokenMismatch       = "token_mismatch"
	TextCodeStrategyNotFound    = "strategy_not_found"
	TextCodeUnknownProvider     = "social_provider_unknown"
)

// ErrAccountLocked is returned when an authenticated action is attempted
// against a locked account. Use AccountLockedError to attach the unlock time.
var ErrAccountLocked = errors.New("account is locked", errors.CategoryAuth).
	WithTextCode(TextCodeAccountLocked).
	WithCode(errors.CodeForbidden)

// ErrEmailNotConfirmed is returned when login requires a confirmed email
// and the account has not confirmed one yet.
var ErrEmailNotConfirmed = errors.New("email address not confirmed", errors.CategoryAuth).
	WithTextCode(TextCodeEmailNotConfirmed).
	WithCode(errors.CodeForbidden)

// ErrEmailLinkExpired is returned when an expired email link is used to
// confirm an account or an email change.
var ErrEmailLinkExpired = errors.New("email confirmation link expired", errors.CategoryBadInput).
	WithTextCode(TextCodeEmailLinkExpired).
	WithCode(errors.CodeBadRequest)

// ErrPasswordLinkExpired is returned when an expired password reset link is used.
var ErrPasswordLinkExpired = errors.New("password reset link expired", errors.CategoryBadInput).
	WithTextCode(TextCodePasswordLinkExpired).
	WithCode(errors.CodeBadRequest)

// ErrTokenMalformed is returned when a session token fails structural
// decoding or signature verification.
var ErrTokenMalformed = errors.New("malformed or tampered session token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a session token is past its expiry.
var ErrTokenExpired = errors.New("session token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenNoAccount is returned when a decodable token references an account
// that no longer exists.
var ErrTokenNoAccount = errors.New("session token references unknown account", errors.CategoryAuth).
	WithTextCode(TextCodeTokenNoAccount).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMismatch is returned when a cryptographically valid token does not
// match the token on file, meaning it was revoked or replaced.
var ErrTokenMismatch = errors.New("session token was revoked", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMismatch).
	WithCode(errors.CodeUnauthorized)

// ErrStrategyNotFound indicates a configured token strategy identifier could
// not be resolved. This is a deployment error, not a per request condition.
var ErrStrategyNotFound = errors.New("token strategy not registered", errors.CategoryInternal).
	WithTextCode(TextCodeStrategyNotFound)

// ErrUnknownSocialProvider is returned when using a provider outside the
// known provider set.
var ErrUnknownSocialProvider = errors.New("unknown social provider", errors.CategoryBadInput).
	WithTextCode(TextCodeUnknownProvider).
	WithCode(errors.CodeBadRequest)

// ErrNoEmptyString is returned when hashing an empty password.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation)

// ErrMismatchedHashAndPassword is returned when a password does not match its hash.
var ErrMismatchedHashAndPassword = errors.New("mismatched password and hash", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// AccountLockedError clones ErrAccountLocked with the unlock time attached.
func AccountLockedError(until time.Time) *errors.Error {
	clone := ErrAccountLocked.Clone()
	clone.Source = ErrAccountLocked
	return clone.WithMetadata(map[string]any{
		"locked_until": until,
	})
}

// EmailNotConfirmedError clones ErrEmailNotConfirmed carrying the obfuscated
// address so callers can tell users where the confirmation went.
func EmailNotConfirmedError(email string) *errors.Error {
	clone := ErrEmailNotConfirmed.Clone()
	clone.Source = ErrEmailNotConfirmed
	return clone.WithMetadata(map[string]any{
		"email": ObfuscateEmail(email),
	})
}

// StrategyNotFoundError clones ErrStrategyNotFound naming the unresolved identifier.
func StrategyNotFoundError(kind, id string) *errors.Error {
	clone := ErrStrategyNotFound.Clone()
	clone.Source = ErrStrategyNotFound
	return clone.WithMetadata(map[string]any{
		"kind": kind,
		"id":   id,
	})
}

// UnknownSocialProviderError clones ErrUnknownSocialProvider naming the provider.
func UnknownSocialProviderError(provider string) *errors.Error {
	clone := ErrUnknownSocialProvider.Clone()
	clone.Source = ErrUnknownSocialProvider
	return clone.WithMetadata(map[string]any{
		"provider": provider,
	})
}

// IsAccountLocked checks for a lock rejection anywhere in the chain.
func IsAccountLocked(err error) bool {
	return hasTextCode(err, TextCodeAccountLocked)
}

// IsEmailNotConfirmed checks for an unconfirmed email rejection.
func IsEmailNotConfirmed(err error) bool {
	return hasTextCode(err, TextCodeEmailNotConfirmed)
}

// IsTokenExpired checks for an expired session token error.
func IsTokenExpired(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsTokenMismatch checks for a revoked/replayed token rejection.
func IsTokenMismatch(err error) bool {
	return hasTextCode(err, TextCodeTokenMismatch)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == code
	}

	return false
}

// ObfuscateEmail masks the address part of an email for display in user
// facing messages, e.g. j***e@example.com.
func ObfuscateEmail(email string) string {
	if email == "" {
		return ""
	}

	at := strings.LastIndex(email, "@")
	if at < 0 {
		return strings.Repeat("*", len(email))
	}

	address, host := email[:at], email[at:]
	if len(address) <= 2 {
		return strings.Repeat("*", len(address)) + host
	}

	masked := strings.Repeat("*", len(address)-2)
	return address[:1] + masked + address[len(address)-1:] + host
}
