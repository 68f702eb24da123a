package account

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LinkKind selects which outstanding link column a lookup runs against.
type LinkKind string

const (
	LinkKindEmail    LinkKind = "email_link"
	LinkKindPassword LinkKind = "password_link"
)

// Accounts is the persistence contract this package consumes. Not found is
// signalled with a record-not-found error (see IsNotFound); the counter and
// token mutators must be lost-update-free under concurrent requests against
// the same account, which is why they exist next to plain Save.
type Accounts interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByLink(ctx context.Context, kind LinkKind, link string) (*Account, error)
	FindBySocial(ctx context.Context, provider, externalID string) (*Account, error)

	// Create inserts a new account. The id may be preassigned, e.g. the
	// deterministic registration id; a missing id is generated.
	Create(ctx context.Context, acc *Account) (*Account, error)
	// Save persists the full row of an existing account. An account with no
	// id yet is created instead.
	Save(ctx context.Context, acc *Account) (*Account, error)
	Delete(ctx context.Context, acc *Account) error

	// TrackFailedLogin increments the failure counter atomically in the
	// store, engaging the lock at threshold, and mirrors the result onto acc.
	TrackFailedLogin(ctx context.Context, acc *Account, threshold int, lockFor time.Duration) error
	// TrackSuccessfulLogin resets the counter and lock atomically.
	TrackSuccessfulLogin(ctx context.Context, acc *Account) error

	// StoreToken persists token as the account's token on file.
	StoreToken(ctx context.Context, id uuid.UUID, token string) error
	// ClearToken removes the token on file, making any outstanding session
	// token fail the replay check on its next use.
	ClearToken(ctx context.Context, id uuid.UUID) error

	// LinkSocial attaches an external identity to the account.
	LinkSocial(ctx context.Context, accountID uuid.UUID, provider, externalID string) error
	// UnlinkSocial removes the external identity for provider, if any.
	UnlinkSocial(ctx context.Context, accountID uuid.UUID, provider string) error
}
