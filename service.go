package account

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

// LoginResult is the typed outcome of a login attempt. Expected negative
// outcomes (unknown account, bad password) come back with Authenticated
// false and a nil error; security-state violations (locked account,
// unconfirmed email) are returned as typed errors instead.
type LoginResult struct {
	Authenticated bool
	Token         string
	Account       *Account
}

// Service orchestrates login, registration confirmation, email and
// password changes, composing the hasher, the lock state machine, the link
// ledger and the token service, and emitting domain events along the way.
type Service struct {
	store            Accounts
	hasher           PasswordHasher
	tokens           TokenService
	sink             EventSink
	mailer           Mailer
	logger           Logger
	lockThreshold    int
	lockDuration     time.Duration
	linkTTL          time.Duration
	requireConfirmed bool
	confirmBaseURL   string
	resetBaseURL     string
	nowFn            func() time.Time
}

// NewService creates a Service with the default bcrypt hasher and token
// service. Collaborators default to no-ops and are wired via the With
// chainers.
func NewService(store Accounts, cfg Config) *Service {
	return &Service{
		store:            store,
		hasher:           NewBcryptHasher(passwordHashCost()),
		tokens:           NewTokenService(store, cfg),
		sink:             noopEventSink{},
		mailer:           noopMailer{},
		logger:           defLogger{},
		lockThreshold:    cfg.GetLockThreshold(),
		lockDuration:     cfg.GetLockDuration(),
		linkTTL:          cfg.GetLinkTTL(),
		requireConfirmed: cfg.GetRequireConfirmedEmail(),
		nowFn:            time.Now,
	}
}

// WithHasher overrides the password hasher.
func (s *Service) WithHasher(h PasswordHasher) *Service {
	if h != nil {
		s.hasher = h
	}
	return s
}

// WithTokenService overrides the session token service.
func (s *Service) WithTokenService(ts TokenService) *Service {
	if ts != nil {
		s.tokens = ts
	}
	return s
}

// WithEventSink configures the sink domain events are emitted to.
func (s *Service) WithEventSink(sink EventSink) *Service {
	s.sink = normalizeEventSink(sink)
	return s
}

// WithMailer configures the outbound mail collaborator.
func (s *Service) WithMailer(m Mailer) *Service {
	s.mailer = normalizeMailer(m)
	return s
}

// WithLogger overrides the logger.
func (s *Service) WithLogger(logger Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithClock overrides the time source, used to exercise expiry in tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.nowFn = now
	}
	return s
}

// WithLinkBaseURLs sets the base URLs links are embedded under in outbound
// mail, one for email confirmation and one for password reset.
func (s *Service) WithLinkBaseURLs(confirm, reset string) *Service {
	s.confirmBaseURL = confirm
	s.resetBaseURL = reset
	return s
}

// TokenService exposes the session token service used by this Service.
func (s *Service) TokenService() TokenService {
	return s.tokens
}

// -----------------------------------------------------------------------
// Login
// -----------------------------------------------------------------------

// Login authenticates an account by email and password. The lock gate runs
// before the confirmation gate; the confirmation gate only applies to new
// accounts, so an account mid email-change keeps logging in with its old
// confirmed identity.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	acc, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			s.emit(ctx, EventLoginNonexistent, nil, map[string]any{
				"email": ObfuscateEmail(email),
			})
			return &LoginResult{}, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up account for login")
	}

	if err := s.gateLogin(acc); err != nil {
		return nil, err
	}

	if !s.hasher.Verify(password, acc.PasswordHash) {
		if err := s.store.TrackFailedLogin(ctx, acc, s.lockThreshold, s.lockDuration); err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to record login failure")
		}
		s.emit(ctx, EventLoginFailure, acc, nil)
		return &LoginResult{Account: acc}, nil
	}

	return s.establishSession(ctx, acc, EventLoginSuccess, nil)
}

// ForceLogin establishes a session without password verification, used by
// social login and post-registration auto-login. The lock and confirmation
// gates still apply.
func (s *Service) ForceLogin(ctx context.Context, acc *Account) (*LoginResult, error) {
	if err := s.gateLogin(acc); err != nil {
		return nil, err
	}

	return s.establishSession(ctx, acc, EventLoginSuccess, map[string]any{
		"forced": true,
	})
}

// AttemptSocialLogin looks up the account linked to the provider identity
// and force-logs it in. An unknown identity is an expected outcome, not an
// error; the caller decides whether to register.
func (s *Service) AttemptSocialLogin(ctx context.Context, provider, externalID string) (*LoginResult, error) {
	provider = strings.ToLower(provider)
	if !IsKnownProvider(provider) {
		return nil, UnknownSocialProviderError(provider)
	}

	acc, err := s.store.FindBySocial(ctx, provider, externalID)
	if err != nil {
		if errors.IsNotFound(err) {
			return &LoginResult{}, nil
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up social account")
	}

	result, err := s.ForceLogin(ctx, acc)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, EventSocialLogin, acc, map[string]any{
		"provider": provider,
	})

	return result, nil
}

// Logout revokes the account's session token.
func (s *Service) Logout(ctx context.Context, acc *Account) error {
	if err := s.tokens.Revoke(ctx, acc.ID); err != nil {
		return err
	}

	acc.CurrentToken = ""
	s.emit(ctx, EventLogout, acc, nil)
	return nil
}

func (s *Service) gateLogin(acc *Account) error {
	if acc.IsLocked(s.nowFn()) {
		return AccountLockedError(*acc.LockedUntil)
	}

	if acc.IsNew() && s.requireConfirmed && !acc.EmailConfirmed {
		return EmailNotConfirmedError(acc.Email)
	}

	return nil
}

func (s *Service) establishSession(ctx context.Context, acc *Account, event EventType, metadata map[string]any) (*LoginResult, error) {
	if err := s.store.TrackSuccessfulLogin(ctx, acc); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to record login")
	}

	token, err := s.tokens.Issue(ctx, acc)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, event, acc, metadata)

	return &LoginResult{
		Authenticated: true,
		Token:         token,
		Account:       acc,
	}, nil
}

// -----------------------------------------------------------------------
// Register and confirm
// -----------------------------------------------------------------------

// Register creates an unconfirmed account and sends the welcome message
// with the confirmation link. The password is optional so accounts created
// from a social identity can exist without one; such accounts always fail
// password verification but can still force-login.
func (s *Service) Register(ctx context.Context, payload RegisterPayload) (*Account, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	acc := &Account{}
	acc.SetEmail(payload.Email, s.nowFn(), s.linkTTL)

	if payload.Password != "" {
		hash, err := s.hasher.Hash(payload.Password)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
		}
		acc.PasswordHash = hash
	}

	if id, err := hashid.NewUUID(acc.Email); err == nil {
		acc.ID = id
	}

	acc, err := s.store.Create(ctx, acc)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryConflict, "could not create account")
	}

	s.emit(ctx, EventRegistered, acc, nil)

	if err := s.mailer.Send(ctx, welcomeMessage(acc, s.confirmBaseURL)); err != nil {
		s.logger.Warn("welcome mail send error: %v", err)
	}

	return acc, nil
}

// ResendConfirmation regenerates the confirmation link and resends the
// welcome message. The previous link stops working; this is a fresh grant.
func (s *Service) ResendConfirmation(ctx context.Context, acc *Account) error {
	acc.RequireEmailConfirmation(s.nowFn(), s.linkTTL)

	if _, err := s.store.Save(ctx, acc); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to save confirmation link")
	}

	msg := welcomeMessage(acc, s.confirmBaseURL)
	if acc.PendingEmail != "" {
		msg = emailChangeMessage(acc, s.confirmBaseURL)
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn("confirmation mail send error: %v", err)
	}

	return nil
}

// ConfirmEmailWithLink confirms email ownership, for both initial
// confirmation and staged email changes. Unknown links report false;
// re-presenting a consumed link for an already confirmed account reports
// true without mutation so confirmations are safe to retry.
func (s *Service) ConfirmEmailWithLink(ctx context.Context, link string) (bool, error) {
	acc, err := s.store.FindByLink(ctx, LinkKindEmail, link)
	if err != nil {
		if errors.IsNotFound(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to look up email link")
	}

	if acc.EmailConfirmed {
		return true, nil
	}

	if acc.EmailLinkExpired(s.nowFn()) {
		return false, ErrEmailLinkExpired
	}

	acc.ConfirmEmail()
	if _, err := s.store.Save(ctx, acc); err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to save email confirmation")
	}

	s.emit(ctx, EventEmailConfirmed, acc, nil)
	return true, nil
}

// RequestEmailChange stages a new email on the account and sends the
// confirmation message to the new address. The account keeps its old
// confirmed identity until the link is used.
func (s *Service) RequestEmailChange(ctx context.Context, acc *Account, newEmail string) error {
	payload := EmailChangePayload{Email: newEmail}
	if err := payload.Validate(); err != nil {
		return err
	}

	newEmail = strings.ToLower(strings.TrimSpace(newEmail))
	if newEmail == acc.Email {
		return nil
	}

	acc.SetEmail(newEmail, s.nowFn(), s.linkTTL)

	if _, err := s.store.Save(ctx, acc); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to save email change")
	}

	s.emit(ctx, EventEmailChangeRequested, acc, map[string]any{
		"pending_email": ObfuscateEmail(acc.PendingEmail),
	})

	if err := s.mailer.Send(ctx, emailChangeMessage(acc, s.confirmBaseURL)); err != nil {
		s.logger.Warn("email change mail send error: %v", err)
	}

	return nil
}

// CancelEmailChange rolls back a staged email change.
func (s *Service) CancelEmailChange(ctx context.Context, acc *Account) error {
	if acc.PendingEmail == "" {
		return nil
	}

	acc.CancelEmailChange()
	if _, err := s.store.Save(ctx, acc); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to cancel email change")
	}

	s.emit(ctx, EventAccountSaved, acc, nil)
	return nil
}

// -----------------------------------------------------------------------
// Password
// -----------------------------------------------------------------------

// RequestPasswordReset grants a fresh password reset link and mails it.
func (s *Service) RequestPasswordReset(ctx context.Context, acc *Account) error {
	acc.GeneratePasswordLink(s.nowFn(), s.linkTTL)

	if _, err := s.store.Save(ctx, acc); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to save password reset link")
	}

	s.emit(ctx, EventPasswordResetRequested, acc, nil)

	if err := s.mailer.Send(ctx, passwordResetMessage(acc, s.resetBaseURL)); err != nil {
		s.logger.Warn("password reset mail send error: %v", err)
	}

	return nil
}

// ResetPasswordWithLink changes the password of the account holding the
// outstanding reset link. Unknown links report false, stale links raise
// ErrPasswordLinkExpired so the user knows to request a new one.
func (s *Service) ResetPasswordWithLink(ctx context.Context, link, newPassword string) (bool, error) {
	acc, err := s.store.FindByLink(ctx, LinkKindPassword, link)
	if err != nil {
		if errors.IsNotFound(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to look up password link")
	}

	if acc.PasswordLinkExpired(s.nowFn()) {
		return false, ErrPasswordLinkExpired
	}

	if err := s.ChangePassword(ctx, acc, newPassword); err != nil {
		return false, err
	}

	return true, nil
}

// ChangePassword hashes and stores the new password, consumes any
// outstanding reset link, and revokes the active session token so every
// existing session is logged out.
func (s *Service) ChangePassword(ctx context.Context, acc *Account, newPassword string) error {
	payload := PasswordPayload{Password: newPassword}
	if err := payload.Validate(); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	acc.PasswordHash = hash
	acc.ClearPasswordLink()

	if _, err := s.store.Save(ctx, acc); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to save password change")
	}

	if err := s.tokens.Revoke(ctx, acc.ID); err != nil {
		return err
	}
	acc.CurrentToken = ""

	s.emit(ctx, EventPasswordChanged, acc, nil)
	return nil
}

// -----------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------

// Delete removes the account. All token, lock and link sub-state lives
// inline on the aggregate so no separate cleanup is needed; deleting an
// already deleted account is a no-op.
func (s *Service) Delete(ctx context.Context, acc *Account) error {
	if err := s.store.Delete(ctx, acc); err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete account")
	}

	s.emit(ctx, EventAccountDeleted, acc, nil)
	return nil
}

func (s *Service) emit(ctx context.Context, event EventType, acc *Account, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}

	err := s.sink.Emit(ctx, Event{
		Type:       event,
		Account:    acc,
		Metadata:   metadata,
		OccurredAt: s.nowFn(),
	})
	if err != nil {
		s.logger.Warn("event sink emit error: %v", err)
	}
}
