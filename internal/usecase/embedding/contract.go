package embedding

import (
	"context"

	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
)

// Ledger meters model calls.
type Ledger interface {
	Check(ctx context.Context, projectedUSD float64) error
	Record(ctx context.Context, rec domcost.Record) error
	Success(typ domcost.RequestType, promptTokens, totalTokens int, documentID string) domcost.Record
	Failure(typ domcost.RequestType, cause error, documentID string) domcost.Record
	Pricing() domcost.Pricing
}

// VectorWriter persists a document vector.
type VectorWriter interface {
	SetVector(ctx context.Context, id string, vec []float32, model string) error
}
