package search

import (
	"context"

	"github.com/kailas-cloud/linkdex/internal/domain"
	domdoc "github.com/kailas-cloud/linkdex/internal/domain/document"
	"github.com/kailas-cloud/linkdex/internal/domain/search/filter"
	"github.com/kailas-cloud/linkdex/internal/domain/search/request"
	"github.com/kailas-cloud/linkdex/internal/domain/search/result"
)

// TextSearcher runs the substring scan over stored documents, newest first.
type TextSearcher interface {
	SearchText(ctx context.Context, query string, f filter.Filter, limit int) ([]domdoc.Document, error)
}

// DocumentLister lists documents matching a filter, newest first.
type DocumentLister interface {
	List(ctx context.Context, f filter.Filter) ([]domdoc.Document, error)
}

// EmbeddedLister lists documents that carry a vector.
type EmbeddedLister interface {
	ListEmbedded(ctx context.Context, f filter.Filter) ([]domdoc.Document, error)
}

// QueryEmbedder embeds a query through the cost ledger and returns the billed cost.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) (domain.EmbeddingResult, float64, error)
}

// LexicalEngine ranks documents by text match. It never calls the embedding model.
type LexicalEngine interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
}

// SemanticEngine ranks documents by cosine similarity to the embedded query.
type SemanticEngine interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, float64, error)
}
