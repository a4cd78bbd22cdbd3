package batch

import (
	"context"
	"credit-approval/internal/infrastructure/monitoring"
	"credit-approval/internal/pkg/clock"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// DebtStore is the slice of the customer store the job needs.
type DebtStore interface {
	ListIDs(ctx context.Context) ([]int64, error)
	RefreshCurrentDebt(ctx context.Context, customerID int64, at time.Time) (bool, error)
}

// RefreshDebtSnapshotJob recomputes current_debt for every customer. The
// snapshot is otherwise only written at issuance, so loans that ran out since
// then are still counted until this job runs.
type RefreshDebtSnapshotJob struct {
	store   DebtStore
	clock   clock.Clock
	workers int
	logger  *slog.Logger
}

type RefreshSummary struct {
	Processed int
	Updated   int
	Errors    int
}

func NewRefreshDebtSnapshotJob(store DebtStore, clk clock.Clock, workers int, logger *slog.Logger) *RefreshDebtSnapshotJob {
	if store == nil || logger == nil {
		panic("RefreshDebtSnapshotJob dependencies cannot be nil")
	}
	if clk == nil {
		clk = clock.System{}
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &RefreshDebtSnapshotJob{
		store:   store,
		clock:   clk,
		workers: workers,
		logger:  logger.With("job", "RefreshDebtSnapshot"),
	}
}

func (j *RefreshDebtSnapshotJob) Run(ctx context.Context) error {
	_, err := j.run(ctx)
	return err
}

func (j *RefreshDebtSnapshotJob) run(ctx context.Context) (RefreshSummary, error) {
	startTime := time.Now()
	at := clock.Today(j.clock)
	j.logger.InfoContext(ctx, "Starting debt snapshot refresh job.", slog.Time("evaluation_date", at))

	ids, err := j.store.ListIDs(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list customer IDs, aborting job.", slog.Any("error", err))
		return RefreshSummary{}, fmt.Errorf("cannot run job, failed to list customers: %w", err)
	}
	if len(ids) == 0 {
		j.logger.InfoContext(ctx, "No customers found to process.")
		return RefreshSummary{}, nil
	}

	var processed, updated, errorCount atomic.Int32
	var g errgroup.Group
	g.SetLimit(j.workers)

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			logCtx := j.logger.With(slog.Int64("customerID", id))
			changed, refreshErr := j.store.RefreshCurrentDebt(ctx, id, at)
			if refreshErr != nil {
				logCtx.ErrorContext(ctx, "Failed to refresh debt snapshot", slog.Any("error", refreshErr))
				errorCount.Add(1)
				return nil
			}
			processed.Add(1)
			if changed {
				updated.Add(1)
				monitoring.RecordDebtSnapshotUpdated()
				logCtx.DebugContext(ctx, "Debt snapshot updated.")
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := RefreshSummary{
		Processed: int(processed.Load()),
		Updated:   int(updated.Load()),
		Errors:    int(errorCount.Load()),
	}
	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("total_customers", len(ids)),
		slog.Int("processed", summary.Processed),
		slog.Int("updated", summary.Updated),
		slog.Int("errors", summary.Errors),
	)

	if err := ctx.Err(); err != nil {
		summaryLog.WarnContext(ctx, "Debt snapshot refresh job interrupted.", slog.Any("error", err))
		return summary, fmt.Errorf("job interrupted: %w", err)
	}
	if summary.Errors > 0 {
		summaryLog.WarnContext(ctx, "Debt snapshot refresh job finished with errors.")
		return summary, fmt.Errorf("job completed with %d errors", summary.Errors)
	}
	summaryLog.InfoContext(ctx, "Debt snapshot refresh job finished successfully.")
	return summary, nil
}
