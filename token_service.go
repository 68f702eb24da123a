package account

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService mints, validates and revokes the bearer session token bound
// to an account.
type TokenService interface {
	Issue(ctx context.Context, acc *Account) (string, error)
	Load(ctx context.Context, raw string) (*Account, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

// TokenServiceImpl implements TokenService on top of HS-family JWTs and the
// Accounts store. The account's token on file is the single source of truth:
// a signed, unexpired token that no longer matches it is treated as revoked.
type TokenServiceImpl struct {
	store            Accounts
	signingKey       []byte
	method           jwt.SigningMethod
	lifetime         time.Duration
	requireConfirmed bool
	mintStrategyID   string
	loadStrategyID   string
	strategies       *StrategyRegistry
	logger           Logger
	nowFn            func() time.Time
}

var _ TokenService = (*TokenServiceImpl)(nil)

// NewTokenService creates a TokenService from config. Unknown or non-HMAC
// signing method names fall back to HS256; key validation happens on first
// sign, matching the lazy posture of strategy resolution.
func NewTokenService(store Accounts, cfg Config) *TokenServiceImpl {
	method := jwt.GetSigningMethod(cfg.GetSigningMethod())
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		method = jwt.SigningMethodHS256
	}

	return &TokenServiceImpl{
		store:            store,
		signingKey:       []byte(cfg.GetSigningKey()),
		method:           method,
		lifetime:         cfg.GetTokenLifetime(),
		requireConfirmed: cfg.GetRequireConfirmedEmail(),
		mintStrategyID:   cfg.GetMintStrategy(),
		loadStrategyID:   cfg.GetLoadStrategy(),
		strategies:       NewStrategyRegistry(),
		logger:           defLogger{},
		nowFn:            time.Now,
	}
}

// WithLogger overrides the logger.
func (ts *TokenServiceImpl) WithLogger(logger Logger) *TokenServiceImpl {
	if logger != nil {
		ts.logger = logger
	}
	return ts
}

// WithStrategies replaces the strategy registry.
func (ts *TokenServiceImpl) WithStrategies(reg *StrategyRegistry) *TokenServiceImpl {
	if reg != nil {
		ts.strategies = reg
	}
	return ts
}

// WithClock overrides the time source, used to exercise expiry in tests.
func (ts *TokenServiceImpl) WithClock(now func() time.Time) *TokenServiceImpl {
	if now != nil {
		ts.nowFn = now
	}
	return ts
}

// Issue returns the session token for the account. While the token on file
// still decodes unexpired it is returned unchanged, so clients can retry
// safely without churning tokens. Otherwise a fresh token is minted, stored
// as the token on file, and returned.
func (ts *TokenServiceImpl) Issue(ctx context.Context, acc *Account) (string, error) {
	if acc.CurrentToken != "" {
		if _, err := ts.decode(acc.CurrentToken); err == nil {
			return acc.CurrentToken, nil
		}
		// token on file fails self-decode, treat as absent
	}

	token, err := ts.mint(ctx, acc)
	if err != nil {
		return "", err
	}

	if err := ts.store.StoreToken(ctx, acc.ID, token); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to persist session token")
	}

	acc.CurrentToken = token
	return token, nil
}

func (ts *TokenServiceImpl) mint(ctx context.Context, acc *Account) (string, error) {
	if ts.mintStrategyID != "" {
		strategy, err := ts.strategies.ResolveMint(ts.mintStrategyID)
		if err != nil {
			return "", err
		}
		return strategy(ctx, acc)
	}

	claims := newSessionClaims(acc.ID.String(), ts.nowFn(), ts.lifetime)
	signed, err := jwt.NewWithClaims(ts.method, claims).SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign session token")
	}

	return signed, nil
}

// Load validates a presented token and returns the account it belongs to.
// The pipeline is: signature, expiry, account lookup, lock gate, confirmed
// email gate, then the exact match against the token on file that makes
// revocation effective while the signature is still cryptographically valid.
func (ts *TokenServiceImpl) Load(ctx context.Context, raw string) (*Account, error) {
	if ts.loadStrategyID != "" {
		strategy, err := ts.strategies.ResolveLoad(ts.loadStrategyID)
		if err != nil {
			return nil, err
		}
		return strategy(ctx, raw)
	}

	claims, err := ts.decode(raw)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return nil, ErrTokenNoAccount
	}

	acc, err := ts.store.FindByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrTokenNoAccount
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load account for session token")
	}

	now := ts.nowFn()
	if acc.IsLocked(now) {
		return nil, AccountLockedError(*acc.LockedUntil)
	}

	if ts.requireConfirmed && !acc.EmailConfirmed {
		return nil, EmailNotConfirmedError(acc.Email)
	}

	if acc.CurrentToken == "" || acc.CurrentToken != raw {
		return nil, ErrTokenMismatch
	}

	return acc, nil
}

// Revoke clears the account's token on file. Any previously issued token,
// however unexpired, fails the mismatch check from then on. Once Revoke
// returns, every subsequent Load against the same store observes the clear.
func (ts *TokenServiceImpl) Revoke(ctx context.Context, id uuid.UUID) error {
	if err := ts.store.ClearToken(ctx, id); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to revoke session token")
	}
	return nil
}

func (ts *TokenServiceImpl) decode(raw string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token decode rejected signing method: %v", t.Header["alg"])
			return nil, ErrTokenMalformed
		}
		return ts.signingKey, nil
	}, jwt.WithTimeFunc(ts.nowFn))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
