package account

import (
	"context"
	"sync"
)

// MintStrategy replaces the default token mint. The returned token is still
// persisted as the account's token on file so revocation keeps working.
type MintStrategy func(ctx context.Context, acc *Account) (string, error)

// LoadStrategy replaces the default token load pipeline entirely.
type LoadStrategy func(ctx context.Context, raw string) (*Account, error)

// StrategyRegistry maps string identifiers to mint/load strategies. The
// registry stands in for the source system's dynamic module imports:
// strategies register once at configuration time, identifiers resolve
// lazily on first use.
type StrategyRegistry struct {
	mu   sync.RWMutex
	mint map[string]MintStrategy
	load map[string]LoadStrategy
}

// NewStrategyRegistry returns an empty registry.
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		mint: map[string]MintStrategy{},
		load: map[string]LoadStrategy{},
	}
}

// RegisterMint registers a mint strategy under id, replacing any previous one.
func (r *StrategyRegistry) RegisterMint(id string, fn MintStrategy) *StrategyRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mint[id] = fn
	return r
}

// RegisterLoad registers a load strategy under id, replacing any previous one.
func (r *StrategyRegistry) RegisterLoad(id string, fn LoadStrategy) *StrategyRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load[id] = fn
	return r
}

// ResolveMint returns the mint strategy for id. An unresolved identifier is
// a deployment error, not a per request condition.
func (r *StrategyRegistry) ResolveMint(id string) (MintStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.mint[id]
	if !ok || fn == nil {
		return nil, StrategyNotFoundError("mint", id)
	}
	return fn, nil
}

// ResolveLoad returns the load strategy for id.
func (r *StrategyRegistry) ResolveLoad(id string) (LoadStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.load[id]
	if !ok || fn == nil {
		return nil, StrategyNotFoundError("load", id)
	}
	return fn, nil
}
