package cost

import "time"

// Totals aggregates records over a window.
type Totals struct {
	CostUSD  float64
	Requests int
	Tokens   int
}

// ModelBreakdown aggregates records per model and request type.
type ModelBreakdown struct {
	Model       string
	RequestType RequestType
	Requests    int
	Tokens      int
	CostUSD     float64
}

// PeriodSpend is the spend of one scope window against its cap.
type PeriodSpend struct {
	Scope        Scope
	Start        time.Time
	Totals       Totals
	LimitUSD     float64
	RemainingUSD float64
	PercentUsed  float64
}

// NewPeriodSpend derives remaining and percentage from totals and cap.
func NewPeriodSpend(scope Scope, start time.Time, totals Totals, limit float64) PeriodSpend {
	remaining := limit - totals.CostUSD
	if remaining < 0 {
		remaining = 0
	}
	var pct float64
	if limit > 0 {
		pct = totals.CostUSD / limit * 100
	}
	return PeriodSpend{
		Scope:        scope,
		Start:        start,
		Totals:       totals,
		LimitUSD:     limit,
		RemainingUSD: remaining,
		PercentUsed:  pct,
	}
}

// Reached reports whether spend meets or exceeds the cap.
func (p PeriodSpend) Reached() bool { return p.Totals.CostUSD >= p.LimitUSD }

// Allows reports whether a call projected to cost projectedUSD stays within the cap.
// A zero projection reduces to !Reached().
func (p PeriodSpend) Allows(projectedUSD float64) bool {
	if p.Reached() {
		return false
	}
	return projectedUSD <= 0 || p.Totals.CostUSD+projectedUSD <= p.LimitUSD
}

// Summary is the read-only cost report.
type Summary struct {
	Daily      PeriodSpend
	Monthly    PeriodSpend
	ByModel    []ModelBreakdown
	Recent     []Record
	CanProcess bool
}
