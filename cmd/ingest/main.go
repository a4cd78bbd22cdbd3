// Command ingest loads customer_data.xlsx and loan_data.xlsx into the
// database, keeping the ids from the workbooks.
package main

import (
	"context"
	"credit-approval/internal/config"
	"credit-approval/internal/infrastructure/database/postgres"
	"credit-approval/internal/infrastructure/logging"
	"credit-approval/internal/ingest"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	dir := flag.String("dir", cfg.Ingest.DataDir, "directory holding the workbooks")
	flag.Parse()

	if err := run(cfg, *dir, logger); err != nil {
		logger.Error("Ingestion failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, dir string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.Database.URL, logger); err != nil {
			return err
		}
	}

	loader := ingest.NewLoader(
		postgres.NewCustomerRepository(pool, logger),
		postgres.NewLoanRepository(pool, logger),
		func(ctx context.Context) error { return postgres.ResetSequences(ctx, pool) },
		logger,
	)

	report, err := loader.LoadFiles(ctx,
		filepath.Join(dir, cfg.Ingest.CustomerFile),
		filepath.Join(dir, cfg.Ingest.LoanFile),
	)
	if err != nil {
		return err
	}
	logger.Info("Data ingested",
		slog.Int("customers", report.CustomersUpserted),
		slog.Int("loans", report.LoansUpserted),
		slog.Int("loans_skipped", report.LoansSkipped),
	)
	return nil
}
