package cost

import (
	"context"
	"time"

	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
)

// Store is the append-only cost record store.
type Store interface {
	Append(ctx context.Context, rec domcost.Record) error
	Totals(ctx context.Context, from, to time.Time) (domcost.Totals, error)
	Breakdown(ctx context.Context, from, to time.Time) ([]domcost.ModelBreakdown, error)
	Recent(ctx context.Context, n int) ([]domcost.Record, error)
}
