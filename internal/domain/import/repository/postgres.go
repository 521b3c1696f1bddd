// Package repository is the persistence collaborator behind the import
// engine's commit boundary: catalog snapshots, bulk creates, holding
// create-or-reuse, saved column mappings and import job bookkeeping.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/soldibase/soldibase/internal/domain/import/catalog"
	"github.com/soldibase/soldibase/internal/domain/import/committer"
	"github.com/soldibase/soldibase/internal/domain/import/sniffer"
)

// DB is the subset of pgxpool.Pool the repository needs. Satisfied by
// pgxmock in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository implements the committer's Store plus the session-level
// catalog, mapping-memory and job operations.
type Repository struct {
	db DB
}

// New creates a repository over a pgx pool or compatible handle.
func New(db DB) *Repository {
	return &Repository{db: db}
}

// LoadCatalog reads the existing-entity snapshot resolved against during
// one import session.
func (r *Repository) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	cat := &catalog.Catalog{}

	rows, err := r.db.Query(ctx, `SELECT id, name, type FROM accounts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	for rows.Next() {
		var a catalog.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Type); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan account: %w", err)
		}
		cat.Accounts = append(cat.Accounts, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	rows, err = r.db.Query(ctx, `SELECT id, name, type FROM categories ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cat.Categories = append(cat.Categories, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	rows, err = r.db.Query(ctx, `SELECT id, ticker, name, asset_type, currency FROM holdings ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("load holdings: %w", err)
	}
	for rows.Next() {
		var h catalog.Holding
		if err := rows.Scan(&h.ID, &h.Ticker, &h.Name, &h.AssetType, &h.Currency); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		cat.Holdings = append(cat.Holdings, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load holdings: %w", err)
	}

	return cat, nil
}

// EnsureHolding creates a holding or reuses the existing row with the same
// ticker, returning its identifier either way.
func (r *Repository) EnsureHolding(ctx context.Context, h catalog.Holding) (uuid.UUID, error) {
	query := `
		INSERT INTO holdings (ticker, name, asset_type, currency)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticker) DO UPDATE SET ticker = EXCLUDED.ticker
		RETURNING id
	`
	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, h.Ticker, h.Name, h.AssetType, h.Currency).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("ensure holding %s: %w", h.Ticker, err)
	}
	return id, nil
}

// BulkCreateTransactions inserts one batch atomically.
func (r *Repository) BulkCreateTransactions(ctx context.Context, txs []committer.TransactionCreate) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO transactions (account_id, category_id, posted_at, amount, description, direction)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		for _, t := range txs {
			if _, err := tx.Exec(ctx, query, t.AccountID, t.CategoryID, t.Date, t.Amount, t.Description, t.Direction); err != nil {
				return fmt.Errorf("insert transaction: %w", err)
			}
		}
		return nil
	})
}

// BulkCreateTrades inserts one batch atomically.
func (r *Repository) BulkCreateTrades(ctx context.Context, trades []committer.TradeCreate) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO trades (holding_id, traded_at, quantity, price_per_unit, total_amount, fees, direction)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		for _, t := range trades {
			if _, err := tx.Exec(ctx, query, t.HoldingID, t.Date, t.Quantity, t.PricePerUnit, t.TotalAmount, t.Fees, t.Direction); err != nil {
				return fmt.Errorf("insert trade: %w", err)
			}
		}
		return nil
	})
}

// BulkCreateAccounts inserts one batch atomically.
func (r *Repository) BulkCreateAccounts(ctx context.Context, accounts []committer.AccountCreate) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO accounts (name, type, currency, opening_balance)
			VALUES ($1, $2, $3, $4)
		`
		for _, a := range accounts {
			if _, err := tx.Exec(ctx, query, a.Name, a.Type, a.Currency, a.OpeningBalance); err != nil {
				return fmt.Errorf("insert account: %w", err)
			}
		}
		return nil
	})
}

// BulkCreateCategories inserts one batch atomically.
func (r *Repository) BulkCreateCategories(ctx context.Context, categories []committer.CategoryCreate) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		query := `INSERT INTO categories (name, type) VALUES ($1, $2)`
		for _, c := range categories {
			if _, err := tx.Exec(ctx, query, c.Name, c.Type); err != nil {
				return fmt.Errorf("insert category: %w", err)
			}
		}
		return nil
	})
}

// SaveMapping persists a confirmed column mapping under its header
// fingerprint for recall on the next upload of the same layout.
func (r *Repository) SaveMapping(ctx context.Context, fingerprint string, m *sniffer.Mappings) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}
	query := `
		INSERT INTO import_mappings (fingerprint, mapping)
		VALUES ($1, $2)
		ON CONFLICT (fingerprint) DO UPDATE SET mapping = EXCLUDED.mapping, updated_at = now()
	`
	if _, err := r.db.Exec(ctx, query, fingerprint, payload); err != nil {
		return fmt.Errorf("save mapping: %w", err)
	}
	return nil
}

// MappingByFingerprint returns the saved mapping for a header layout, or
// nil when none was confirmed yet.
func (r *Repository) MappingByFingerprint(ctx context.Context, fingerprint string) (*sniffer.Mappings, error) {
	var payload []byte
	err := r.db.QueryRow(ctx, `SELECT mapping FROM import_mappings WHERE fingerprint = $1`, fingerprint).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup mapping: %w", err)
	}

	var m sniffer.Mappings
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("unmarshal mapping: %w", err)
	}
	return &m, nil
}

// CreateImportJob records the start of one import pass.
func (r *Repository) CreateImportJob(ctx context.Context, kind string, rowsTotal int) (uuid.UUID, error) {
	var id uuid.UUID
	query := `
		INSERT INTO import_jobs (kind, status, rows_total)
		VALUES ($1, 'running', $2)
		RETURNING id
	`
	if err := r.db.QueryRow(ctx, query, kind, rowsTotal).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("create import job: %w", err)
	}
	return id, nil
}

// FinishImportJob records the terminal status and counts of an import pass.
func (r *Repository) FinishImportJob(ctx context.Context, id uuid.UUID, status string, imported, skipped int) error {
	query := `
		UPDATE import_jobs
		SET status = $2, rows_imported = $3, rows_skipped = $4, finished_at = now()
		WHERE id = $1
	`
	if _, err := r.db.Exec(ctx, query, id, status, imported, skipped); err != nil {
		return fmt.Errorf("finish import job: %w", err)
	}
	return nil
}

func (r *Repository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
