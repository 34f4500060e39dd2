package backfill

import (
	"context"

	"github.com/kailas-cloud/linkdex/internal/domain"
	domdoc "github.com/kailas-cloud/linkdex/internal/domain/document"
)

// PendingStore selects documents that still need a vector and persists new ones.
type PendingStore interface {
	ListUnembedded(ctx context.Context, limit, offset int) ([]domdoc.Document, error)
	CountUnembedded(ctx context.Context) (int, error)
	SetVector(ctx context.Context, id string, vec []float32, model string) error
}

// BatchEmbedder embeds a batch under one cost check and one cost record.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, float64, error)
	Model() string
}
