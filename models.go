package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Known social providers. Lookup by any other provider name is rejected
// with ErrUnknownSocialProvider.
const (
	ProviderFacebook  = "facebook"
	ProviderGoogle    = "google"
	ProviderTwitter   = "twitter"
	ProviderVkontakte = "vkontakte"
	ProviderInstagram = "instagram"
)

var knownProviders = map[string]bool{
	ProviderFacebook:  true,
	ProviderGoogle:    true,
	ProviderTwitter:   true,
	ProviderVkontakte: true,
	ProviderInstagram: true,
}

// IsKnownProvider reports whether the provider name is part of the
// supported social provider set.
func IsKnownProvider(provider string) bool {
	return knownProviders[strings.ToLower(provider)]
}

// Account is the aggregate root for authentication state. All security
// sub-state (lock counters, confirmation links, the session token on file)
// lives inline on the row so deleting an account needs no extra cleanup.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`

	// email identity
	Email              string     `bun:"email,notnull,unique" json:"email,omitempty"`
	EmailConfirmed     bool       `bun:"email_confirmed" json:"email_confirmed,omitempty"`
	PendingEmail       string     `bun:"pending_email,nullzero" json:"pending_email,omitempty"`
	EmailLink          string     `bun:"email_link,nullzero" json:"-"`
	EmailLinkExpiresAt *time.Time `bun:"email_link_expires_at,nullzero" json:"-"`

	// credentials
	PasswordHash          string     `bun:"password_hash" json:"-"`
	PasswordLink          string     `bun:"password_link,nullzero" json:"-"`
	PasswordLinkExpiresAt *time.Time `bun:"password_link_expires_at,nullzero" json:"-"`

	// locking
	FailedLogins int        `bun:"failed_logins" json:"failed_logins,omitempty"`
	LockedUntil  *time.Time `bun:"locked_until,nullzero" json:"locked_until,omitempty"`

	// session token on file, the single source of truth for revocation
	CurrentToken string `bun:"current_token,nullzero" json:"-"`

	LoggedInAt *time.Time `bun:"loggedin_at,nullzero" json:"loggedin_at,omitempty"`
	CreatedAt  *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt  *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt  *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// SocialAccount links an account to an external identity. Only the provider
// name and external id participate in login lookup.
type SocialAccount struct {
	bun.BaseModel `bun:"table:social_accounts,alias:soc"`

	ID         uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	AccountID  uuid.UUID  `bun:"account_id,notnull,type:uuid" json:"account_id,omitempty"`
	Provider   string     `bun:"provider,notnull" json:"provider,omitempty"`
	ExternalID string     `bun:"external_id,notnull" json:"external_id,omitempty"`
	CreatedAt  *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// EmailSecure returns the obfuscated email used for display.
func (a *Account) EmailSecure() string {
	return ObfuscateEmail(a.Email)
}

// IsNew reports whether the account still carries its original identity:
// the email on record is the login identity and no email change is pending.
// New accounts are gated on email confirmation during login; accounts mid
// email-change may keep logging in with their old confirmed identity.
func (a *Account) IsNew() bool {
	return a.Email != "" && a.PendingEmail == ""
}

// -----------------------------------------------------------------------
// Locking
// -----------------------------------------------------------------------

// IsLocked checks the lock state at the given time. A lock whose deadline
// passed is cleared as a side effect, so expiry never needs a sweeper.
func (a *Account) IsLocked(now time.Time) bool {
	if a.LockedUntil == nil {
		return false
	}

	if a.LockedUntil.After(now) {
		return true
	}

	a.Unlock()
	return false
}

// Lock locks the account until now + d and resets the failure counter.
func (a *Account) Lock(now time.Time, d time.Duration) {
	until := now.Add(d)
	a.LockedUntil = &until
	a.FailedLogins = 0
}

// Unlock clears the lock and the failure counter.
func (a *Account) Unlock() {
	a.LockedUntil = nil
	a.FailedLogins = 0
}

// RecordFailedLogin increments the failed login counter and engages the
// lock once the counter reaches the threshold. Recording against an active
// lock is a no-op; the caller should have rejected the attempt already.
func (a *Account) RecordFailedLogin(now time.Time, threshold int, lockFor time.Duration) {
	if a.IsLocked(now) {
		return
	}

	a.FailedLogins++
	if a.FailedLogins >= threshold {
		a.Lock(now, lockFor)
	}
}

// RecordSuccessfulLogin resets the counter and clears any stale lock.
func (a *Account) RecordSuccessfulLogin(now time.Time) {
	a.Unlock()
	a.LoggedInAt = &now
}

// -----------------------------------------------------------------------
// Email links
// -----------------------------------------------------------------------

// SetEmail sets the login email, folding to lowercase. The first email
// becomes the account identity; later changes are staged on PendingEmail
// until confirmed. Either way a fresh confirmation link is granted.
func (a *Account) SetEmail(email string, now time.Time, ttl time.Duration) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || email == a.Email {
		return
	}

	if a.Email == "" {
		a.Email = email
	} else {
		a.PendingEmail = email
	}

	a.RequireEmailConfirmation(now, ttl)
}

// RequireEmailConfirmation marks the email unconfirmed and issues a fresh
// confirmation link. Re-issuing replaces any outstanding link, this is how
// resend works: a new grant, never an idempotent repeat.
func (a *Account) RequireEmailConfirmation(now time.Time, ttl time.Duration) {
	expires := now.Add(ttl)
	a.EmailConfirmed = false
	a.EmailLink = GenerateLinkToken()
	a.EmailLinkExpiresAt = &expires
}

// ConfirmEmail promotes a pending email change if one is staged and marks
// the address confirmed. The consumed link stays on the row but grants
// nothing once the account is confirmed; it is replaced on the next grant.
func (a *Account) ConfirmEmail() {
	if a.Email != "" && a.PendingEmail != "" {
		a.Email = a.PendingEmail
	}

	a.EmailConfirmed = true
	a.PendingEmail = ""
}

// CancelEmailChange rolls back a staged email change and restores the
// confirmed state of the original address.
func (a *Account) CancelEmailChange() {
	if a.PendingEmail == "" {
		return
	}

	a.PendingEmail = ""
	a.EmailConfirmed = true
	a.EmailLink = ""
	a.EmailLinkExpiresAt = nil
}

// EmailLinkExpired checks the outstanding email link against now. A missing
// link counts as expired.
func (a *Account) EmailLinkExpired(now time.Time) bool {
	return LinkExpired(a.EmailLinkExpiresAt, now)
}

// -----------------------------------------------------------------------
// Password links
// -----------------------------------------------------------------------

// GeneratePasswordLink grants a fresh password reset link, replacing any
// outstanding one.
func (a *Account) GeneratePasswordLink(now time.Time, ttl time.Duration) {
	expires := now.Add(ttl)
	a.PasswordLink = GenerateLinkToken()
	a.PasswordLinkExpiresAt = &expires
}

// ClearPasswordLink consumes the password reset link.
func (a *Account) ClearPasswordLink() {
	a.PasswordLink = ""
	a.PasswordLinkExpiresAt = nil
}

// PasswordLinkExpired checks the outstanding password link against now.
func (a *Account) PasswordLinkExpired(now time.Time) bool {
	return LinkExpired(a.PasswordLinkExpiresAt, now)
}
