// Package worker provides background workers for linkdex.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorhill/cronexpr"
	"go.uber.org/zap"

	"github.com/kailas-cloud/linkdex/internal/domain"
	dombackfill "github.com/kailas-cloud/linkdex/internal/domain/backfill"
)

// BackfillRunner drains the embedding backfill queue.
type BackfillRunner interface {
	RunAll(ctx context.Context, limit int) ([]dombackfill.Report, error)
}

// BackfillScheduler runs the backfill at every tick of a cron schedule.
type BackfillScheduler struct {
	runner   BackfillRunner
	expr     *cronexpr.Expression
	schedule string
	limit    int
	logger   *zap.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewBackfillScheduler parses schedule (5-field cron or a @-macro).
func NewBackfillScheduler(runner BackfillRunner, schedule string, limit int, logger *zap.Logger) (*BackfillScheduler, error) {
	expr, err := cronexpr.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("parse backfill schedule %q: %w", schedule, err)
	}
	return &BackfillScheduler{
		runner:   runner,
		expr:     expr,
		schedule: schedule,
		limit:    limit,
		logger:   logger,
		now:      time.Now,
		after:    time.After,
	}, nil
}

// Next returns the first tick strictly after t.
func (w *BackfillScheduler) Next(t time.Time) time.Time {
	return w.expr.Next(t)
}

// Start blocks, running the backfill at each tick until ctx is cancelled.
func (w *BackfillScheduler) Start(ctx context.Context) {
	w.logger.Info("Backfill scheduler started",
		zap.String("schedule", w.schedule),
		zap.Int("batch_limit", w.limit),
	)

	for {
		next := w.Next(w.now())
		if next.IsZero() {
			w.logger.Warn("Backfill schedule has no future ticks, stopping")
			return
		}

		select {
		case <-ctx.Done():
			w.logger.Info("Backfill scheduler stopped")
			return
		case <-w.after(next.Sub(w.now())):
			w.runOnce(ctx)
		}
	}
}

func (w *BackfillScheduler) runOnce(ctx context.Context) {
	start := w.now()
	reports, err := w.runner.RunAll(ctx, w.limit)

	var processed, failed int
	var costUSD float64
	for _, r := range reports {
		processed += r.Processed
		failed += r.Failed
		costUSD += r.CostUSD
	}

	fields := []zap.Field{
		zap.Int("batches", len(reports)),
		zap.Int("processed", processed),
		zap.Int("failed", failed),
		zap.Float64("cost_usd", costUSD),
		zap.Duration("duration", w.now().Sub(start)),
	}
	switch {
	case errors.Is(err, domain.ErrCostLimitReached):
		w.logger.Warn("Scheduled backfill stopped at cost limit", append(fields, zap.Error(err))...)
	case errors.Is(err, context.Canceled):
		w.logger.Info("Scheduled backfill interrupted", fields...)
	case err != nil:
		w.logger.Error("Scheduled backfill failed", append(fields, zap.Error(err))...)
	case processed > 0:
		w.logger.Info("Scheduled backfill completed", fields...)
	default:
		w.logger.Debug("Scheduled backfill found nothing pending")
	}
}
