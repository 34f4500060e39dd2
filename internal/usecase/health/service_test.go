package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		storeErr   error
		embedErr   error
		wantStatus Status
		wantStore  CheckResult
		wantEmbed  CheckResult
	}{
		{"all healthy", nil, nil, Healthy, CheckOK, CheckOK},
		{"store down", errors.New("conn refused"), nil, Unhealthy, CheckError, CheckOK},
		{"embedding down", nil, errors.New("timeout"), Degraded, CheckOK, CheckError},
		{"both down", errors.New("db down"), errors.New("emb down"), Unhealthy, CheckError, CheckError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(zap.NewNop(),
				Component{Name: "database", Pinger: &mockPinger{err: tt.storeErr}, Required: true},
				Component{Name: "embedding", Pinger: &mockPinger{err: tt.embedErr}},
			)
			r := svc.Check(context.Background())

			if r.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", r.Status, tt.wantStatus)
			}
			if r.Checks["database"] != tt.wantStore {
				t.Errorf("database = %q, want %q", r.Checks["database"], tt.wantStore)
			}
			if r.Checks["embedding"] != tt.wantEmbed {
				t.Errorf("embedding = %q, want %q", r.Checks["embedding"], tt.wantEmbed)
			}
		})
	}
}

func TestCheck_NilPingerSkipped(t *testing.T) {
	svc := New(zap.NewNop(),
		Component{Name: "database", Pinger: &mockPinger{}, Required: true},
		Component{Name: "embedding"},
	)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("status = %q", r.Status)
	}
	if _, ok := r.Checks["embedding"]; ok {
		t.Error("embedding check should be absent when no pinger is configured")
	}
}

func TestCheck_TimeoutApplies(t *testing.T) {
	slow := PingFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	svc := New(zap.NewNop(), Component{Name: "database", Pinger: slow, Required: true})
	svc.timeout = 10 * time.Millisecond

	r := svc.Check(context.Background())
	if r.Status != Unhealthy {
		t.Errorf("status = %q, want %q", r.Status, Unhealthy)
	}
}
