package account

import "context"

var accountCtxKey = &contextKey{"account"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithContext sets the Account in the given context
func WithContext(ctx context.Context, acc *Account) context.Context {
	return context.WithValue(ctx, accountCtxKey, acc)
}

// FromContext finds the account from the context.
func FromContext(ctx context.Context) (*Account, bool) {
	raw, ok := ctx.Value(accountCtxKey).(*Account)
	return raw, ok
}

// WithClaimsContext sets the SessionClaims in the given context
func WithClaimsContext(ctx context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the SessionClaims from the standard context
func GetClaims(ctx context.Context) (*SessionClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*SessionClaims)
	return raw, ok
}
