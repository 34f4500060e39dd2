package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/linkdex/internal/domain"
	dombackfill "github.com/kailas-cloud/linkdex/internal/domain/backfill"
)

type mockRunner struct {
	mu       sync.Mutex
	calls    int
	gotLimit int
	reports  []dombackfill.Report
	err      error
	ran      chan struct{}
}

func (m *mockRunner) RunAll(_ context.Context, limit int) ([]dombackfill.Report, error) {
	m.mu.Lock()
	m.calls++
	m.gotLimit = limit
	m.mu.Unlock()
	if m.ran != nil {
		m.ran <- struct{}{}
	}
	return m.reports, m.err
}

func TestNewBackfillScheduler_InvalidSchedule(t *testing.T) {
	if _, err := NewBackfillScheduler(&mockRunner{}, "not a cron", 10, zap.NewNop()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestBackfillScheduler_Next(t *testing.T) {
	w, err := NewBackfillScheduler(&mockRunner{}, "*/30 * * * *", 10, zap.NewNop())
	if err != nil {
		t.Fatalf("NewBackfillScheduler: %v", err)
	}
	from := time.Date(2026, 3, 1, 10, 7, 0, 0, time.UTC)
	want := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	if got := w.Next(from); !got.Equal(want) {
		t.Errorf("Next = %v, want %v", got, want)
	}
}

func TestBackfillScheduler_RunsOnTickUntilCancelled(t *testing.T) {
	runner := &mockRunner{
		ran:     make(chan struct{}),
		reports: []dombackfill.Report{{Processed: 3, Successful: 3, CostUSD: 0.0001}},
	}
	w, err := NewBackfillScheduler(runner, "@hourly", 25, zap.NewNop())
	if err != nil {
		t.Fatalf("NewBackfillScheduler: %v", err)
	}

	ticks := make(chan time.Time)
	var waits []time.Duration
	w.now = func() time.Time { return time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC) }
	w.after = func(d time.Duration) <-chan time.Time {
		waits = append(waits, d)
		return ticks
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	ticks <- time.Time{}
	<-runner.ran
	ticks <- time.Time{}
	<-runner.ran
	cancel()
	<-done

	if runner.calls != 2 || runner.gotLimit != 25 {
		t.Errorf("calls=%d limit=%d", runner.calls, runner.gotLimit)
	}
	if waits[0] != 45*time.Minute {
		t.Errorf("first wait = %v, want 45m", waits[0])
	}
}

func TestBackfillScheduler_LogsCostLimit(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	runner := &mockRunner{err: domain.NewCostLimitError("daily", 1, 1)}
	w, err := NewBackfillScheduler(runner, "@daily", 10, zap.New(core))
	if err != nil {
		t.Fatalf("NewBackfillScheduler: %v", err)
	}

	w.runOnce(context.Background())
	if logs.FilterMessage("Scheduled backfill stopped at cost limit").Len() != 1 {
		t.Error("expected cost limit warning")
	}
}
