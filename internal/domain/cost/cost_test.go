package cost

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestScopeWindow(t *testing.T) {
	now := time.Date(2026, 2, 28, 23, 59, 0, 0, time.UTC)

	start, end := Daily.Window(now)
	if !start.Equal(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("daily window = [%v, %v)", start, end)
	}

	start, end = Monthly.Window(now)
	if !start.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("monthly window = [%v, %v)", start, end)
	}
}

func TestScopeWindow_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	now := time.Date(2026, 3, 1, 5, 0, 0, 0, loc) // 2026-02-28 20:00 UTC

	start, _ := Daily.Window(now)
	if start.Day() != 28 {
		t.Errorf("daily window start = %v, want Feb 28 UTC", start)
	}
}

func TestPricingCost(t *testing.T) {
	p := DefaultPricing()
	if got := p.Cost(1_000_000); math.Abs(got-0.02) > 1e-12 {
		t.Errorf("Cost(1M) = %f, want 0.02", got)
	}
	if got := p.Cost(500); math.Abs(got-0.00001) > 1e-12 {
		t.Errorf("Cost(500) = %g", got)
	}
	if got := p.Cost(0); got != 0 {
		t.Errorf("Cost(0) = %f", got)
	}
}

func TestRecordValidate(t *testing.T) {
	valid := Record{Model: "m", RequestType: RequestEmbedding, CreatedAt: time.Now()}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []Record{
		{RequestType: RequestEmbedding, CreatedAt: time.Now()},
		{Model: "m", RequestType: "image", CreatedAt: time.Now()},
		{Model: "m", RequestType: RequestChat, TotalTokens: -1, CreatedAt: time.Now()},
		{Model: "m", RequestType: RequestChat, CostUSD: -0.1, CreatedAt: time.Now()},
		{Model: "m", RequestType: RequestChat},
	}
	for i, r := range bad {
		if err := r.Validate(); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestNewPeriodSpend(t *testing.T) {
	p := NewPeriodSpend(Daily, time.Now(), Totals{CostUSD: 0.25}, 1.0)
	if p.RemainingUSD != 0.75 || p.PercentUsed != 25 {
		t.Errorf("remaining=%f pct=%f", p.RemainingUSD, p.PercentUsed)
	}
	if p.Reached() {
		t.Error("Reached() = true at 25%")
	}

	over := NewPeriodSpend(Daily, time.Now(), Totals{CostUSD: 1.2}, 1.0)
	if over.RemainingUSD != 0 || !over.Reached() {
		t.Errorf("over-cap spend: remaining=%f reached=%v", over.RemainingUSD, over.Reached())
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("empty = %d", got)
	}
	if got := EstimateTokens("abcd", "abcde"); got != 3 {
		t.Errorf("EstimateTokens = %d, want 3", got)
	}
}

func TestPeriodSpend_Allows(t *testing.T) {
	p := NewPeriodSpend(Daily, time.Time{}, Totals{CostUSD: 0.97}, 1.0)
	if !p.Allows(0) {
		t.Error("zero projection below cap must be allowed")
	}
	if p.Allows(0.05) {
		t.Error("$0.97 + $0.05 must not be allowed under $1.00")
	}
	if !p.Allows(0.02) {
		t.Error("$0.97 + $0.02 fits under $1.00")
	}

	full := NewPeriodSpend(Daily, time.Time{}, Totals{CostUSD: 1.0}, 1.0)
	if full.Allows(0) {
		t.Error("reached cap must block")
	}
}

func TestRequestTypeFrom(t *testing.T) {
	if got := RequestTypeFrom(context.Background(), RequestEmbedding); got != RequestEmbedding {
		t.Errorf("untagged context = %q, want fallback", got)
	}
	ctx := ContextWithRequestType(context.Background(), RequestSearchEmbedding)
	if got := RequestTypeFrom(ctx, RequestEmbedding); got != RequestSearchEmbedding {
		t.Errorf("tagged context = %q, want %q", got, RequestSearchEmbedding)
	}
}
