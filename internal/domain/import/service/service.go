// Package service orchestrates one statement import end to end: analyze the
// upload, propose column mappings, preview candidates against the existing
// catalog, and commit confirmed batches.
package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/soldibase/soldibase/internal/domain/import/catalog"
	"github.com/soldibase/soldibase/internal/domain/import/committer"
	"github.com/soldibase/soldibase/internal/domain/import/materializer"
	"github.com/soldibase/soldibase/internal/domain/import/reader"
	"github.com/soldibase/soldibase/internal/domain/import/resolver"
	"github.com/soldibase/soldibase/internal/domain/import/sniffer"
	"github.com/soldibase/soldibase/pkg/money"
)

// Kind names the target shape of one import pass.
type Kind string

const (
	KindTransactions Kind = "transactions"
	KindTrades       Kind = "trades"
	KindAccounts     Kind = "accounts"
	KindCategories   Kind = "categories"
)

// Repository is everything the import flow needs from persistence.
type Repository interface {
	committer.Store

	LoadCatalog(ctx context.Context) (*catalog.Catalog, error)
	SaveMapping(ctx context.Context, fingerprint string, m *sniffer.Mappings) error
	MappingByFingerprint(ctx context.Context, fingerprint string) (*sniffer.Mappings, error)
	CreateImportJob(ctx context.Context, kind string, rowsTotal int) (uuid.UUID, error)
	FinishImportJob(ctx context.Context, id uuid.UUID, status string, imported, skipped int) error
}

// Service runs the import flow.
type Service struct {
	repo     Repository
	currency string
	logger   *slog.Logger
}

// New creates an import service. currency is the default currency applied to
// entities created during commit.
func New(repo Repository, currency string, logger *slog.Logger) *Service {
	return &Service{repo: repo, currency: currency, logger: logger}
}

// Analysis is the outcome of inspecting one upload before any import: the
// parsed rows, the classifier's mapping proposal, and the previously
// confirmed mapping for the same header layout when one exists.
type Analysis struct {
	Document *reader.Document
	Proposed *sniffer.Mappings
	Saved    *sniffer.Mappings
}

var excelExtensions = map[string]bool{".xlsx": true, ".xlsm": true, ".xltx": true}

// Analyze parses an uploaded file, proposes column mappings from its headers
// and recalls any mapping confirmed for the same layout before.
func (s *Service) Analyze(ctx context.Context, filename string, data []byte) (*Analysis, error) {
	var (
		doc *reader.Document
		err error
	)
	if excelExtensions[strings.ToLower(filepath.Ext(filename))] {
		doc, err = reader.ReadExcel(bytes.NewReader(data))
	} else {
		doc, err = reader.ReadCSV(data)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	proposed := sniffer.Classify(doc.Headers)
	saved, err := s.repo.MappingByFingerprint(ctx, proposed.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("recall mapping: %w", err)
	}

	s.logger.Info("upload analyzed",
		"file", filename,
		"rows", len(doc.Rows),
		"fingerprint", proposed.Fingerprint,
		"savedMapping", saved != nil)

	return &Analysis{Document: doc, Proposed: proposed, Saved: saved}, nil
}

// ConfirmMapping persists a human-confirmed mapping under its fingerprint so
// the next upload of the same layout skips the mapping step.
func (s *Service) ConfirmMapping(ctx context.Context, m *sniffer.Mappings) error {
	if m.Fingerprint == "" {
		return fmt.Errorf("mapping has no fingerprint")
	}
	return s.repo.SaveMapping(ctx, m.Fingerprint, m)
}

// ImportSession is the frozen input of one import pass: rows, confirmed
// mappings, a catalog snapshot and the session default account. Sessions are
// values; previews and commits never mutate them.
type ImportSession struct {
	Rows           []reader.Row
	Mappings       sniffer.Mappings
	Catalog        *catalog.Catalog
	DefaultAccount uuid.UUID
}

// NewSession snapshots the existing-entity catalog and binds it to the
// upload's rows and confirmed mappings. defaultAccount may be uuid.Nil.
func (s *Service) NewSession(ctx context.Context, doc *reader.Document, m *sniffer.Mappings, defaultAccount uuid.UUID) (ImportSession, error) {
	cat, err := s.repo.LoadCatalog(ctx)
	if err != nil {
		return ImportSession{}, fmt.Errorf("load catalog: %w", err)
	}
	return ImportSession{
		Rows:           doc.Rows,
		Mappings:       *m,
		Catalog:        cat,
		DefaultAccount: defaultAccount,
	}, nil
}

func (s *Service) materializer(session ImportSession) *materializer.Materializer {
	return materializer.New(resolver.New(session.Catalog, session.DefaultAccount))
}

// PreviewTransactions materializes every row as a ledger transaction without
// touching persistence. Invalid candidates are kept so callers can show what
// will be skipped and why.
func (s *Service) PreviewTransactions(session ImportSession) []materializer.TransactionCandidate {
	m := s.materializer(session)
	out := make([]materializer.TransactionCandidate, 0, len(session.Rows))
	for _, row := range session.Rows {
		out = append(out, m.Transaction(row, session.Mappings.Transaction))
	}
	return out
}

// PreviewTrades materializes every row as a brokerage trade. Unknown tickers
// stay unresolved here; holdings are only created at commit.
func (s *Service) PreviewTrades(session ImportSession) []materializer.TradeCandidate {
	m := s.materializer(session)
	out := make([]materializer.TradeCandidate, 0, len(session.Rows))
	for _, row := range session.Rows {
		out = append(out, m.Trade(row, session.Mappings.Trade))
	}
	return out
}

// PreviewAccounts materializes every row as a bulk-imported account.
func (s *Service) PreviewAccounts(session ImportSession) []materializer.AccountCandidate {
	m := s.materializer(session)
	out := make([]materializer.AccountCandidate, 0, len(session.Rows))
	for _, row := range session.Rows {
		out = append(out, m.Account(row, session.Mappings.Account))
	}
	return out
}

// PreviewCategories materializes every row as a bulk-imported category.
func (s *Service) PreviewCategories(session ImportSession) []materializer.CategoryCandidate {
	m := s.materializer(session)
	out := make([]materializer.CategoryCandidate, 0, len(session.Rows))
	for _, row := range session.Rows {
		out = append(out, m.Category(row, session.Mappings.Category))
	}
	return out
}

// TransactionTotals sums the valid candidates per direction for the preview
// screen.
type TransactionTotals struct {
	Rows     int
	Valid    int
	Income   *money.Money
	Expenses *money.Money
}

// Totals aggregates preview candidates into per-direction sums.
func (s *Service) Totals(candidates []materializer.TransactionCandidate) TransactionTotals {
	totals := TransactionTotals{
		Rows:     len(candidates),
		Income:   money.Zero(s.currency),
		Expenses: money.Zero(s.currency),
	}
	for _, c := range candidates {
		if !c.Valid {
			continue
		}
		totals.Valid++
		amount := money.NewFromDecimal(c.Amount, s.currency)
		if c.Direction == materializer.Income {
			totals.Income = totals.Income.MustAdd(amount)
		} else {
			totals.Expenses = totals.Expenses.MustAdd(amount)
		}
	}
	return totals
}

// CommitTransactions materializes and persists the session's rows as ledger
// transactions, with import-job bookkeeping around the batch.
func (s *Service) CommitTransactions(ctx context.Context, session ImportSession) (*committer.Summary, error) {
	candidates := s.PreviewTransactions(session)
	return s.commit(ctx, KindTransactions, len(candidates), func(c *committer.Committer) (*committer.Summary, error) {
		return c.CommitTransactions(ctx, candidates)
	}, session)
}

// CommitTrades materializes and persists the session's rows as trades,
// creating each missing holding exactly once.
func (s *Service) CommitTrades(ctx context.Context, session ImportSession) (*committer.Summary, error) {
	candidates := s.PreviewTrades(session)
	return s.commit(ctx, KindTrades, len(candidates), func(c *committer.Committer) (*committer.Summary, error) {
		return c.CommitTrades(ctx, candidates)
	}, session)
}

// CommitAccounts persists the session's rows as new accounts.
func (s *Service) CommitAccounts(ctx context.Context, session ImportSession) (*committer.Summary, error) {
	candidates := s.PreviewAccounts(session)
	return s.commit(ctx, KindAccounts, len(candidates), func(c *committer.Committer) (*committer.Summary, error) {
		return c.CommitAccounts(ctx, candidates)
	}, session)
}

// CommitCategories persists the session's rows as new categories.
func (s *Service) CommitCategories(ctx context.Context, session ImportSession) (*committer.Summary, error) {
	candidates := s.PreviewCategories(session)
	return s.commit(ctx, KindCategories, len(candidates), func(c *committer.Committer) (*committer.Summary, error) {
		return c.CommitCategories(ctx, candidates)
	}, session)
}

func (s *Service) commit(ctx context.Context, kind Kind, total int, run func(*committer.Committer) (*committer.Summary, error), session ImportSession) (*committer.Summary, error) {
	jobID, err := s.repo.CreateImportJob(ctx, string(kind), total)
	if err != nil {
		return nil, fmt.Errorf("create import job: %w", err)
	}

	com := committer.New(s.repo, resolver.New(session.Catalog, session.DefaultAccount), s.currency, s.logger)
	summary, err := run(com)

	status := "completed"
	if err != nil {
		status = "failed"
		commitFailures.WithLabelValues(string(kind)).Inc()
	}
	var imported, skipped int
	if summary != nil {
		imported, skipped = summary.Submitted, summary.Skipped
		rowsSubmitted.WithLabelValues(string(kind)).Add(float64(summary.Submitted))
		rowsSkipped.WithLabelValues(string(kind)).Add(float64(summary.Skipped))
	}
	if finishErr := s.repo.FinishImportJob(ctx, jobID, status, imported, skipped); finishErr != nil {
		s.logger.Warn("failed to finish import job", "jobID", jobID, "error", finishErr)
	}
	if err != nil {
		return summary, err
	}

	s.logger.Info("import committed",
		"kind", kind,
		"jobID", jobID,
		"total", summary.Total,
		"submitted", summary.Submitted,
		"skipped", summary.Skipped)
	return summary, nil
}
