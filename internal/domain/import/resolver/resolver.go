// Package resolver reconciles free-text account, category and holding
// references from statement rows against the existing-entity catalog.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/soldibase/soldibase/internal/domain/import/catalog"
)

// ErrAccountUnresolved marks a row whose explicitly referenced account does
// not exist. An explicit-but-wrong account reference must never silently
// land on the wrong account, so this is a hard failure for the row.
var ErrAccountUnresolved = errors.New("no resolvable account")

// HoldingCreator synthesizes a missing holding through the persistence
// collaborator and returns its identifier.
type HoldingCreator interface {
	EnsureHolding(ctx context.Context, h catalog.Holding) (uuid.UUID, error)
}

// Resolver applies the deterministic fallback chains of one import session.
// It is not safe for concurrent use; the import pass is single-threaded.
type Resolver struct {
	catalog        *catalog.Catalog
	defaultAccount uuid.UUID

	// tickers caches ticker→id so one batch issues at most one creation
	// request per distinct ticker. Required correctness, not a cache for
	// speed: duplicate creations would duplicate holdings.
	tickers map[string]uuid.UUID
}

// New creates a resolver over a catalog snapshot. defaultAccount is the
// session-wide account used when no account column is mapped; pass uuid.Nil
// to fall back to the first catalog account.
func New(cat *catalog.Catalog, defaultAccount uuid.UUID) *Resolver {
	return &Resolver{
		catalog:        cat,
		defaultAccount: defaultAccount,
		tickers:        make(map[string]uuid.UUID),
	}
}

// ResolveAccount resolves the account for one row. cell is the raw account
// cell; mapped reports whether an account column is mapped at all.
//
// Chain: explicit cell → catalog match or hard failure; no mapped column →
// session default; otherwise first catalog account as last resort.
func (r *Resolver) ResolveAccount(cell string, mapped bool) (uuid.UUID, error) {
	if mapped && strings.TrimSpace(cell) != "" {
		if a, ok := r.catalog.AccountByName(cell); ok {
			return a.ID, nil
		}
		return uuid.Nil, fmt.Errorf("%w: %q", ErrAccountUnresolved, strings.TrimSpace(cell))
	}
	if r.defaultAccount != uuid.Nil {
		return r.defaultAccount, nil
	}
	if a, ok := r.catalog.FirstAccount(); ok {
		return a.ID, nil
	}
	return uuid.Nil, ErrAccountUnresolved
}

// ResolveCategory resolves a category by name and direction, degrading to a
// name-only match and finally to the first category of the row's direction.
// Category resolution never hard-fails; misclassification is low-stakes and
// correctable later. The second result is false only when the catalog has no
// candidate at all.
func (r *Resolver) ResolveCategory(cell string, direction catalog.CategoryType) (uuid.UUID, bool) {
	name := strings.TrimSpace(cell)
	if name != "" {
		if cat, ok := r.catalog.CategoryByName(name, direction); ok {
			return cat.ID, true
		}
		if cat, ok := r.catalog.CategoryByName(name, ""); ok {
			return cat.ID, true
		}
	}
	if cat, ok := r.catalog.FirstCategoryOfType(direction); ok {
		return cat.ID, true
	}
	return uuid.Nil, false
}

// LookupHolding checks the in-batch cache and the catalog for a ticker
// without side effects. Used during preview/validation passes, which must
// never create entities.
func (r *Resolver) LookupHolding(ticker string) (uuid.UUID, bool) {
	key := TickerKey(ticker)
	if id, ok := r.tickers[key]; ok {
		return id, true
	}
	if h, ok := r.catalog.HoldingByTicker(key); ok {
		return h.ID, true
	}
	return uuid.Nil, false
}

// EnsureHolding resolves a ticker to a holding id, synthesizing the holding
// through creator when it exists nowhere. The first successful resolution
// populates the cache; every later row with the same ticker reuses it.
func (r *Resolver) EnsureHolding(ctx context.Context, creator HoldingCreator, ticker, currency string) (uuid.UUID, error) {
	key := TickerKey(ticker)
	if key == "" {
		return uuid.Nil, errors.New("empty ticker")
	}
	if id, ok := r.LookupHolding(key); ok {
		r.tickers[key] = id
		return id, nil
	}

	id, err := creator.EnsureHolding(ctx, catalog.Holding{
		Ticker:    key,
		Name:      key,
		AssetType: "stock",
		Currency:  currency,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("create holding %s: %w", key, err)
	}
	r.tickers[key] = id
	return id, nil
}

// TickerKey is the resolution key for holdings: the uppercased ticker.
func TickerKey(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
