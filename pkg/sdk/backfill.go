package linkdex

import (
	"context"
	"fmt"
	"time"

	dombackfill "github.com/kailas-cloud/linkdex/internal/domain/backfill"
)

// BackfillService embeds documents that have no vector yet.
type BackfillService struct {
	svc backfillUseCase
	obs *observer
}

// Run embeds one batch of up to limit pending documents, oldest first.
// A zero limit uses the default of 10; the maximum is 50.
func (s *BackfillService) Run(ctx context.Context, limit int) (report BackfillReport, err error) {
	start := time.Now()
	defer func() { s.obs.observe("backfill", start, err) }()

	r, err := s.svc.RunBatch(ctx, limit, 0)
	if err != nil {
		return BackfillReport{}, fmt.Errorf("backfill: %w", err)
	}
	s.obs.spent("backfill", r.CostUSD)
	return fromInternalReport(r), nil
}

// RunAll repeats batches until nothing is pending or a batch makes no progress.
// Reports of completed batches are returned alongside any error.
func (s *BackfillService) RunAll(ctx context.Context, limit int) (reports []BackfillReport, err error) {
	start := time.Now()
	defer func() { s.obs.observe("backfill_all", start, err) }()

	rs, err := s.svc.RunAll(ctx, limit)
	reports = make([]BackfillReport, len(rs))
	for i, r := range rs {
		s.obs.spent("backfill_all", r.CostUSD)
		reports[i] = fromInternalReport(r)
	}
	if err != nil {
		return reports, fmt.Errorf("backfill: %w", err)
	}
	return reports, nil
}

func fromInternalReport(r dombackfill.Report) BackfillReport {
	return BackfillReport{
		Processed:  r.Processed,
		Successful: r.Successful,
		Failed:     r.Failed,
		CostUSD:    r.CostUSD,
		Remaining:  r.Remaining,
		Errors:     r.Errors,
	}
}
