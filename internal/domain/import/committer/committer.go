// Package committer filters candidate records to the valid subset, creates
// shared referenced entities exactly once per resolution key, and submits
// bulk-create requests to the persistence collaborator.
package committer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/soldibase/soldibase/internal/domain/import/catalog"
	"github.com/soldibase/soldibase/internal/domain/import/materializer"
	"github.com/soldibase/soldibase/internal/domain/import/resolver"
)

// wireDateLayout is the ISO-8601-like timestamp handed to the persistence
// collaborator. The midday time component survives serialization.
const wireDateLayout = "2006-01-02T15:04:05"

// TransactionCreate is the bulk-create payload for one ledger transaction.
type TransactionCreate struct {
	Date        string     `json:"date"`
	Amount      string     `json:"amount"` // unsigned decimal string
	Description string     `json:"description"`
	AccountID   uuid.UUID  `json:"accountId"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	Direction   string     `json:"direction"`
}

// TradeCreate is the bulk-create payload for one trade.
type TradeCreate struct {
	HoldingID    uuid.UUID `json:"holdingId"`
	Date         string    `json:"date"`
	Quantity     string    `json:"quantity"`
	PricePerUnit string    `json:"pricePerUnit"`
	TotalAmount  string    `json:"totalAmount"`
	Fees         string    `json:"fees"`
	Direction    string    `json:"direction"`
}

// AccountCreate is the bulk-create payload for one account.
type AccountCreate struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	OpeningBalance string `json:"openingBalance"`
	Currency       string `json:"currency"`
}

// CategoryCreate is the bulk-create payload for one category.
type CategoryCreate struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Store is the persistence collaborator behind the commit boundary.
type Store interface {
	BulkCreateTransactions(ctx context.Context, txs []TransactionCreate) error
	BulkCreateTrades(ctx context.Context, trades []TradeCreate) error
	BulkCreateAccounts(ctx context.Context, accounts []AccountCreate) error
	BulkCreateCategories(ctx context.Context, categories []CategoryCreate) error
	EnsureHolding(ctx context.Context, h catalog.Holding) (uuid.UUID, error)
}

// Summary is the operator-facing outcome of one commit: "Submitted of Total
// rows imported, Skipped skipped".
type Summary struct {
	Total         int
	Submitted     int
	Skipped       int
	FailedTickers []string
}

// Committer submits candidate batches for one import session.
type Committer struct {
	store    Store
	resolver *resolver.Resolver
	currency string
	logger   *slog.Logger
}

// New creates a committer. currency is applied to holdings synthesized
// during trade commits.
func New(store Store, res *resolver.Resolver, currency string, logger *slog.Logger) *Committer {
	return &Committer{store: store, resolver: res, currency: currency, logger: logger}
}

// CommitTransactions submits the valid transaction candidates as one
// bulk-create request.
func (c *Committer) CommitTransactions(ctx context.Context, candidates []materializer.TransactionCandidate) (*Summary, error) {
	summary := &Summary{Total: len(candidates)}

	payload := make([]TransactionCreate, 0, len(candidates))
	for _, cand := range candidates {
		if !cand.Valid {
			summary.Skipped++
			continue
		}
		payload = append(payload, TransactionCreate{
			Date:        cand.Date.Format(wireDateLayout),
			Amount:      cand.Amount.String(),
			Description: cand.Description,
			AccountID:   cand.AccountID,
			CategoryID:  cand.CategoryID,
			Direction:   string(cand.Direction),
		})
	}

	if len(payload) > 0 {
		if err := c.store.BulkCreateTransactions(ctx, payload); err != nil {
			return summary, fmt.Errorf("bulk create transactions: %w", err)
		}
	}
	summary.Submitted = len(payload)
	return summary, nil
}

// CommitTrades resolves or creates each distinct ticker exactly once, then
// submits trades referencing the resulting holding ids. Holding failures are
// isolated per ticker: dependent trades are excluded and reported, trades
// for other tickers still proceed.
func (c *Committer) CommitTrades(ctx context.Context, candidates []materializer.TradeCandidate) (*Summary, error) {
	summary := &Summary{Total: len(candidates)}

	valid := make([]materializer.TradeCandidate, 0, len(candidates))
	var tickers []string
	seen := make(map[string]bool)
	for _, cand := range candidates {
		if !cand.Valid {
			summary.Skipped++
			continue
		}
		valid = append(valid, cand)
		if !seen[cand.Ticker] {
			seen[cand.Ticker] = true
			tickers = append(tickers, cand.Ticker)
		}
	}

	holdings := make(map[string]uuid.UUID, len(tickers))
	failed := make(map[string]bool)
	for _, ticker := range tickers {
		// Cancellation point between ticker cohorts; the ticker→id cache
		// only ever holds completed resolutions, so aborting here is safe.
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		id, err := c.resolver.EnsureHolding(ctx, c.store, ticker, c.currency)
		if err != nil {
			c.logger.Warn("holding resolution failed, skipping its trades",
				"ticker", ticker, "error", err)
			failed[ticker] = true
			summary.FailedTickers = append(summary.FailedTickers, ticker)
			continue
		}
		holdings[ticker] = id
	}

	payload := make([]TradeCreate, 0, len(valid))
	for _, cand := range valid {
		if failed[cand.Ticker] {
			summary.Skipped++
			continue
		}
		payload = append(payload, TradeCreate{
			HoldingID:    holdings[cand.Ticker],
			Date:         cand.Date.Format(wireDateLayout),
			Quantity:     cand.Quantity.String(),
			PricePerUnit: cand.PricePerUnit.String(),
			TotalAmount:  cand.TotalAmount.String(),
			Fees:         cand.Fees.String(),
			Direction:    string(cand.Side),
		})
	}

	if len(payload) > 0 {
		if err := c.store.BulkCreateTrades(ctx, payload); err != nil {
			return summary, fmt.Errorf("bulk create trades: %w", err)
		}
	}
	summary.Submitted = len(payload)
	return summary, nil
}

// CommitAccounts submits valid bulk-imported accounts.
func (c *Committer) CommitAccounts(ctx context.Context, candidates []materializer.AccountCandidate) (*Summary, error) {
	summary := &Summary{Total: len(candidates)}

	payload := make([]AccountCreate, 0, len(candidates))
	for _, cand := range candidates {
		if !cand.Valid {
			summary.Skipped++
			continue
		}
		payload = append(payload, AccountCreate{
			Name:           cand.Name,
			Type:           string(cand.Type),
			OpeningBalance: cand.Balance.String(),
			Currency:       c.currency,
		})
	}

	if len(payload) > 0 {
		if err := c.store.BulkCreateAccounts(ctx, payload); err != nil {
			return summary, fmt.Errorf("bulk create accounts: %w", err)
		}
	}
	summary.Submitted = len(payload)
	return summary, nil
}

// CommitCategories submits valid bulk-imported categories.
func (c *Committer) CommitCategories(ctx context.Context, candidates []materializer.CategoryCandidate) (*Summary, error) {
	summary := &Summary{Total: len(candidates)}

	payload := make([]CategoryCreate, 0, len(candidates))
	for _, cand := range candidates {
		if !cand.Valid {
			summary.Skipped++
			continue
		}
		payload = append(payload, CategoryCreate{Name: cand.Name, Type: string(cand.Type)})
	}

	if len(payload) > 0 {
		if err := c.store.BulkCreateCategories(ctx, payload); err != nil {
			return summary, fmt.Errorf("bulk create categories: %w", err)
		}
	}
	summary.Submitted = len(payload)
	return summary, nil
}
