package cost

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/linkdex/internal/domain"
	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
	"github.com/kailas-cloud/linkdex/internal/metrics"
)

// Action defines behavior when a spend cap is reached.
type Action string

const (
	// ActionReject blocks the metered call.
	ActionReject Action = "reject"
	// ActionWarn logs a warning but allows the call.
	ActionWarn Action = "warn"
)

// Limits holds the spend caps in USD.
type Limits struct {
	DailyUSD   float64
	MonthlyUSD float64
	Action     Action
}

// DefaultLimits is $1/day, $30/month, reject.
func DefaultLimits() Limits {
	return Limits{DailyUSD: 1.0, MonthlyUSD: 30.0, Action: ActionReject}
}

// Limit returns the cap of the scope.
func (l Limits) Limit(scope domcost.Scope) float64 {
	if scope == domcost.Monthly {
		return l.MonthlyUSD
	}
	return l.DailyUSD
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithRecent sets the default number of recent records in the summary.
func WithRecent(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.recent = n
		}
	}
}

// Ledger governs metered model calls against daily and monthly caps.
// Spend is recomputed from the record store on every check; nothing is cached.
type Ledger struct {
	store   Store
	pricing domcost.Pricing
	limits  Limits
	recent  int
	now     func() time.Time
	logger  *zap.Logger
}

// New creates a Ledger.
func New(store Store, pricing domcost.Pricing, limits Limits, logger *zap.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:   store,
		pricing: pricing,
		limits:  limits,
		recent:  10,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Pricing returns the model pricing used to cost records.
func (l *Ledger) Pricing() domcost.Pricing { return l.pricing }

// Limits returns the configured caps.
func (l *Ledger) Limits() Limits { return l.limits }

// Spend sums the records of the current window of scope.
func (l *Ledger) Spend(ctx context.Context, scope domcost.Scope) (domcost.PeriodSpend, error) {
	start, end := scope.Window(l.now())
	totals, err := l.store.Totals(ctx, start, end)
	if err != nil {
		return domcost.PeriodSpend{}, fmt.Errorf("%s totals: %w", scope, err)
	}
	return domcost.NewPeriodSpend(scope, start, totals, l.limits.Limit(scope)), nil
}

// CanSpend reports whether the current window of scope is below its cap.
func (l *Ledger) CanSpend(ctx context.Context, scope domcost.Scope) (bool, error) {
	spend, err := l.Spend(ctx, scope)
	if err != nil {
		return false, err
	}
	return !spend.Reached(), nil
}

// CanAfford reports whether a call projected to cost projectedUSD fits under the cap of scope.
func (l *Ledger) CanAfford(ctx context.Context, scope domcost.Scope, projectedUSD float64) (bool, error) {
	spend, err := l.Spend(ctx, scope)
	if err != nil {
		return false, err
	}
	return spend.Allows(projectedUSD), nil
}

// Check verifies both caps before a metered call expected to cost projectedUSD.
// With ActionReject a cap that is reached, or would be crossed by the projection,
// returns a *domain.CostLimitError; with ActionWarn it is logged and the call proceeds.
//
// Check and the later Record are not atomic: concurrent callers can each pass the
// check and overshoot the cap by at most one call apiece. Closing the gap needs a
// conditional increment done by the store itself (a Lua script over the costs key,
// or an INSERT ... SELECT guarded by the window sum in Postgres).
func (l *Ledger) Check(ctx context.Context, projectedUSD float64) error {
	for _, scope := range []domcost.Scope{domcost.Daily, domcost.Monthly} {
		spend, err := l.Spend(ctx, scope)
		if err != nil {
			return err
		}
		if spend.Allows(projectedUSD) {
			continue
		}

		metrics.CostRejectionsTotal.WithLabelValues(string(scope)).Inc()
		fields := []zap.Field{
			zap.String("scope", string(scope)),
			zap.Float64("spent_usd", spend.Totals.CostUSD),
			zap.Float64("limit_usd", spend.LimitUSD),
			zap.Float64("projected_usd", projectedUSD),
		}
		if l.limits.Action == ActionWarn {
			l.logger.Warn("Cost limit reached, proceeding", fields...)
			return nil
		}
		l.logger.Warn("Cost limit reached, rejecting", fields...)
		return domain.NewCostLimitError(string(scope), spend.Totals.CostUSD, spend.LimitUSD)
	}
	return nil
}

// Record appends a record. It never refuses a valid record, including zero-cost failures.
func (l *Ledger) Record(ctx context.Context, rec domcost.Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = l.now().UTC()
	}
	if rec.Model == "" {
		rec.Model = l.pricing.Model
	}

	status := "success"
	if !rec.Success {
		status = "error"
	}
	metrics.EmbeddingRequestsTotal.WithLabelValues(string(rec.RequestType), status).Inc()
	if rec.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(string(rec.RequestType)).Add(float64(rec.TotalTokens))
	}

	if err := l.store.Append(ctx, rec); err != nil {
		return fmt.Errorf("append cost record: %w", err)
	}
	return nil
}

// Success builds a priced record for a completed call.
func (l *Ledger) Success(typ domcost.RequestType, promptTokens, totalTokens int, documentID string) domcost.Record {
	return domcost.Record{
		Model:        l.pricing.Model,
		PromptTokens: promptTokens,
		TotalTokens:  totalTokens,
		CostUSD:      l.pricing.Cost(totalTokens),
		RequestType:  typ,
		Success:      true,
		DocumentID:   documentID,
		CreatedAt:    l.now().UTC(),
	}
}

// Failure builds a zero-cost record for a failed call.
func (l *Ledger) Failure(typ domcost.RequestType, cause error, documentID string) domcost.Record {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return domcost.Record{
		Model:        l.pricing.Model,
		RequestType:  typ,
		Success:      false,
		ErrorMessage: msg,
		DocumentID:   documentID,
		CreatedAt:    l.now().UTC(),
	}
}

// Summary builds the cost report. recent <= 0 uses the configured default.
func (l *Ledger) Summary(ctx context.Context, recent int) (domcost.Summary, error) {
	if recent <= 0 {
		recent = l.recent
	}

	daily, err := l.Spend(ctx, domcost.Daily)
	if err != nil {
		return domcost.Summary{}, err
	}
	monthly, err := l.Spend(ctx, domcost.Monthly)
	if err != nil {
		return domcost.Summary{}, err
	}

	monthStart, monthEnd := domcost.Monthly.Window(l.now())
	byModel, err := l.store.Breakdown(ctx, monthStart, monthEnd)
	if err != nil {
		return domcost.Summary{}, fmt.Errorf("breakdown: %w", err)
	}

	records, err := l.store.Recent(ctx, recent)
	if err != nil {
		return domcost.Summary{}, fmt.Errorf("recent records: %w", err)
	}

	return domcost.Summary{
		Daily:      daily,
		Monthly:    monthly,
		ByModel:    byModel,
		Recent:     records,
		CanProcess: !daily.Reached() && !monthly.Reached(),
	}, nil
}
