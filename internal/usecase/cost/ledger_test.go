package cost

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/linkdex/internal/domain"
	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
)

func zapNop() *zap.Logger { return zap.NewNop() }

func TestCanSpend_DailyCapReachedAndYesterdayIgnored(t *testing.T) {
	s := &memStore{records: []domcost.Record{
		spent(fixedNow.Add(-24*time.Hour), 5.00), // yesterday, ignored by the daily scope
		spent(fixedNow.Add(-time.Hour), 0.97),
	}}
	l := newTestLedger(t, s, DefaultLimits())
	ctx := context.Background()

	ok, err := l.CanSpend(ctx, domcost.Daily)
	if err != nil {
		t.Fatalf("CanSpend: %v", err)
	}
	if !ok {
		t.Fatal("expected $0.97 of $1.00 to allow spending")
	}

	// Once a record pushes the sum past the cap, nothing more is allowed.
	if err := l.Record(ctx, spent(fixedNow, 0.05)); err != nil {
		t.Fatalf("Record: %v", err)
	}

	ok, err = l.CanSpend(ctx, domcost.Daily)
	if err != nil {
		t.Fatalf("CanSpend: %v", err)
	}
	if ok {
		t.Fatal("expected $1.02 of $1.00 to block spending")
	}
}

func TestCheck_ProjectedCostCrossesCap(t *testing.T) {
	s := &memStore{records: []domcost.Record{spent(fixedNow.Add(-time.Hour), 0.97)}}
	l := newTestLedger(t, s, DefaultLimits())
	ctx := context.Background()

	ok, err := l.CanAfford(ctx, domcost.Daily, 0.05)
	if err != nil {
		t.Fatalf("CanAfford: %v", err)
	}
	if ok {
		t.Fatal("$0.97 + $0.05 must not fit under $1.00")
	}

	if err := l.Check(ctx, 0.05); !errors.Is(err, domain.ErrCostLimitReached) {
		t.Fatalf("expected ErrCostLimitReached before the call, got %v", err)
	}
	if len(s.records) != 1 {
		t.Errorf("a rejection must not append records, have %d", len(s.records))
	}

	if err := l.Check(ctx, 0.02); err != nil {
		t.Errorf("$0.97 + $0.02 fits: %v", err)
	}
}

func TestCanSpend_ExactlyAtCapBlocks(t *testing.T) {
	s := &memStore{records: []domcost.Record{spent(fixedNow, 1.00)}}
	l := newTestLedger(t, s, DefaultLimits())

	ok, err := l.CanSpend(context.Background(), domcost.Daily)
	if err != nil {
		t.Fatalf("CanSpend: %v", err)
	}
	if ok {
		t.Error("sum == cap must block")
	}
}

func TestCanSpend_MonthlyWindow(t *testing.T) {
	s := &memStore{records: []domcost.Record{
		spent(time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC), 40), // previous month
		spent(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 29.5),
	}}
	l := newTestLedger(t, s, DefaultLimits())

	ok, err := l.CanSpend(context.Background(), domcost.Monthly)
	if err != nil {
		t.Fatalf("CanSpend: %v", err)
	}
	if !ok {
		t.Error("previous month must not count")
	}
}

func TestCheck_Reject(t *testing.T) {
	s := &memStore{records: []domcost.Record{spent(fixedNow, 1.5)}}
	l := newTestLedger(t, s, DefaultLimits())

	err := l.Check(context.Background(), 0)
	if !errors.Is(err, domain.ErrCostLimitReached) {
		t.Fatalf("expected ErrCostLimitReached, got %v", err)
	}
	var cle *domain.CostLimitError
	if !errors.As(err, &cle) || cle.Scope != string(domcost.Daily) {
		t.Fatalf("expected daily CostLimitError, got %#v", err)
	}
}

func TestCheck_MonthlyReject(t *testing.T) {
	// Spread across earlier days so the daily cap is untouched.
	s := &memStore{records: []domcost.Record{
		spent(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), 15),
		spent(time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), 15),
	}}
	l := newTestLedger(t, s, DefaultLimits())

	var cle *domain.CostLimitError
	if err := l.Check(context.Background(), 0); !errors.As(err, &cle) || cle.Scope != string(domcost.Monthly) {
		t.Fatalf("expected monthly CostLimitError, got %v", err)
	}
}

func TestCheck_Warn(t *testing.T) {
	s := &memStore{records: []domcost.Record{spent(fixedNow, 1.5)}}
	limits := DefaultLimits()
	limits.Action = ActionWarn
	l := newTestLedger(t, s, limits)

	if err := l.Check(context.Background(), 0); err != nil {
		t.Fatalf("warn action must not fail: %v", err)
	}
}

func TestCheck_StoreError(t *testing.T) {
	l := newTestLedger(t, &memStore{totalsErr: errStore}, DefaultLimits())
	if err := l.Check(context.Background(), 0); !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestRecord_FillsDefaults(t *testing.T) {
	s := &memStore{}
	l := newTestLedger(t, s, DefaultLimits())

	if err := l.Record(context.Background(), domcost.Record{RequestType: domcost.RequestChat, Success: true}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got := s.records[0]
	if !got.CreatedAt.Equal(fixedNow) {
		t.Errorf("CreatedAt = %v", got.CreatedAt)
	}
	if got.Model != "text-embedding-3-small" {
		t.Errorf("Model = %q", got.Model)
	}
}

func TestRecord_StoreError(t *testing.T) {
	l := newTestLedger(t, &memStore{appendErr: errStore}, DefaultLimits())
	if err := l.Record(context.Background(), l.Success(domcost.RequestEmbedding, 1, 1, "")); !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestSuccessAndFailure(t *testing.T) {
	l := newTestLedger(t, &memStore{}, DefaultLimits())

	ok := l.Success(domcost.RequestSearchEmbedding, 900, 1000, "doc-1")
	if math.Abs(ok.CostUSD-0.00002) > 1e-12 {
		t.Errorf("CostUSD = %v, want 0.00002", ok.CostUSD)
	}
	if !ok.Success || ok.DocumentID != "doc-1" || ok.PromptTokens != 900 {
		t.Errorf("unexpected success record: %+v", ok)
	}

	fail := l.Failure(domcost.RequestEmbeddingBatch, domain.ErrModelUnavailable, "")
	if fail.Success || fail.CostUSD != 0 || fail.TotalTokens != 0 {
		t.Errorf("failure must be zero-cost: %+v", fail)
	}
	if fail.ErrorMessage == "" {
		t.Error("failure must carry the error message")
	}
}

func TestSummary(t *testing.T) {
	s := &memStore{records: []domcost.Record{
		spent(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), 3),
		spent(fixedNow.Add(-2*time.Hour), 0.25),
		spent(fixedNow.Add(-time.Hour), 0.25),
	}}
	l := newTestLedger(t, s, DefaultLimits())

	sum, err := l.Summary(context.Background(), 2)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Daily.Totals.CostUSD != 0.5 || sum.Daily.Totals.Requests != 2 {
		t.Errorf("daily totals = %+v", sum.Daily.Totals)
	}
	if sum.Daily.RemainingUSD != 0.5 || sum.Daily.PercentUsed != 50 {
		t.Errorf("daily remaining/percent = %v/%v", sum.Daily.RemainingUSD, sum.Daily.PercentUsed)
	}
	if sum.Monthly.Totals.CostUSD != 3.5 {
		t.Errorf("monthly cost = %v", sum.Monthly.Totals.CostUSD)
	}
	if len(sum.Recent) != 2 {
		t.Errorf("recent = %d, want 2", len(sum.Recent))
	}
	if len(sum.ByModel) != 1 || sum.ByModel[0].Requests != 3 {
		t.Errorf("breakdown = %+v", sum.ByModel)
	}
	if !sum.CanProcess {
		t.Error("expected CanProcess")
	}
}

func TestSummary_DefaultRecent(t *testing.T) {
	s := &memStore{}
	for i := 0; i < 15; i++ {
		s.records = append(s.records, spent(fixedNow, 0))
	}
	l := New(s, domcost.DefaultPricing(), DefaultLimits(), zap.NewNop(),
		WithClock(func() time.Time { return fixedNow }), WithRecent(5))

	sum, err := l.Summary(context.Background(), 0)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(sum.Recent) != 5 {
		t.Errorf("recent = %d, want 5", len(sum.Recent))
	}
}
