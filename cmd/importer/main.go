// Command importer ingests a bank or brokerage statement file into the
// database: analyze, map columns, preview, commit.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soldibase/soldibase/internal/domain/import/committer"
	"github.com/soldibase/soldibase/internal/domain/import/repository"
	"github.com/soldibase/soldibase/internal/domain/import/service"
	"github.com/soldibase/soldibase/pkg/config"
)

func main() {
	var (
		file        = flag.String("file", "", "statement file to import (.csv, .tsv, .xlsx)")
		kind        = flag.String("kind", "transactions", "what the rows are: transactions, trades, accounts, categories")
		accountName = flag.String("account", "", "default account for rows without an account column")
		currency    = flag.String("currency", "", "override the configured default currency")
		dryRun      = flag.Bool("dry-run", false, "preview only, do not write anything")
		saveMapping = flag.Bool("save-mapping", false, "remember the detected column mapping for this header layout")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: importer -file statement.csv [-kind transactions] [-account name] [-dry-run]")
		os.Exit(2)
	}

	if err := run(logger, *file, *kind, *accountName, *currency, *dryRun, *saveMapping); err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, file, kind, accountName, currencyOverride string, dryRun, saveMapping bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	currency := cfg.Import.DefaultCurrency
	if currencyOverride != "" {
		currency = currencyOverride
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	if max := int64(cfg.Import.MaxFileSizeMB) << 20; int64(len(data)) > max {
		return fmt.Errorf("file exceeds %d MB limit", cfg.Import.MaxFileSizeMB)
	}

	svc := service.New(repository.New(pool), currency, logger)

	analysis, err := svc.Analyze(ctx, file, data)
	if err != nil {
		return err
	}
	mappings := analysis.Proposed
	if analysis.Saved != nil {
		logger.Info("using previously confirmed mapping", "fingerprint", analysis.Saved.Fingerprint)
		mappings = analysis.Saved
	}

	session, err := svc.NewSession(ctx, analysis.Document, mappings, uuid.Nil)
	if err != nil {
		return err
	}
	if accountName != "" {
		account, ok := session.Catalog.AccountByName(accountName)
		if !ok {
			return fmt.Errorf("account %q not found", accountName)
		}
		session.DefaultAccount = account.ID
	}

	if dryRun {
		return preview(svc, session, kind)
	}

	if saveMapping {
		if err := svc.ConfirmMapping(ctx, mappings); err != nil {
			return fmt.Errorf("save mapping: %w", err)
		}
	}

	var summary *committer.Summary
	switch service.Kind(kind) {
	case service.KindTransactions:
		summary, err = svc.CommitTransactions(ctx, session)
	case service.KindTrades:
		summary, err = svc.CommitTrades(ctx, session)
	case service.KindAccounts:
		summary, err = svc.CommitAccounts(ctx, session)
	case service.KindCategories:
		summary, err = svc.CommitCategories(ctx, session)
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%d of %d rows imported, %d skipped\n", summary.Submitted, summary.Total, summary.Skipped)
	for _, ticker := range summary.FailedTickers {
		fmt.Printf("holding %s could not be created; its trades were skipped\n", ticker)
	}
	return nil
}

func preview(svc *service.Service, session service.ImportSession, kind string) error {
	switch service.Kind(kind) {
	case service.KindTransactions:
		candidates := svc.PreviewTransactions(session)
		totals := svc.Totals(candidates)
		fmt.Printf("%d rows, %d valid\n", totals.Rows, totals.Valid)
		fmt.Printf("income  %s\n", totals.Income.Display())
		fmt.Printf("expense %s\n", totals.Expenses.Display())
		for i, c := range candidates {
			for _, w := range c.Warnings {
				fmt.Printf("row %d: %s\n", i+1, w)
			}
		}
	case service.KindTrades:
		candidates := svc.PreviewTrades(session)
		valid := 0
		for _, c := range candidates {
			if c.Valid {
				valid++
			}
		}
		fmt.Printf("%d rows, %d valid\n", len(candidates), valid)
	case service.KindAccounts:
		candidates := svc.PreviewAccounts(session)
		for _, c := range candidates {
			if c.Valid {
				fmt.Printf("%s (%s) %s\n", c.Name, c.Type, c.Balance.String())
			}
		}
	case service.KindCategories:
		candidates := svc.PreviewCategories(session)
		for _, c := range candidates {
			if c.Valid {
				fmt.Printf("%s (%s)\n", c.Name, c.Type)
			}
		}
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	return nil
}
