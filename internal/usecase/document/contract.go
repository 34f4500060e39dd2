package document

import (
	"context"

	domdoc "github.com/kailas-cloud/linkdex/internal/domain/document"
	"github.com/kailas-cloud/linkdex/internal/domain/search/filter"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Upsert(ctx context.Context, doc *domdoc.Document) (created bool, err error)
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context, f filter.Filter) ([]domdoc.Document, error)
	CountUnembedded(ctx context.Context) (int, error)
}

// Indexer receives every stored document, e.g. an in-memory lexical index.
type Indexer interface {
	Index(doc domdoc.Document) error
}
