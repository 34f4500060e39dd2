package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/linkdex/internal/domain/search/request"
	"github.com/kailas-cloud/linkdex/internal/domain/search/result"
)

// SubstringEngine matches the query case-insensitively against title, summary and body.
// Hits are ordered newest first; archived documents are skipped unless asked for.
type SubstringEngine struct {
	docs TextSearcher
}

// NewSubstringEngine creates the default lexical engine.
func NewSubstringEngine(docs TextSearcher) *SubstringEngine {
	return &SubstringEngine{docs: docs}
}

// Search returns up to req.Limit() hits with 1-based ranks.
// The score is the position proxy (n-i)/n, 1.0 for the first hit.
func (e *SubstringEngine) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	f := req.Filter().WithArchivedDefault(false)

	docs, err := e.docs.SearchText(ctx, req.Query(), f, req.Limit())
	if err != nil {
		return nil, fmt.Errorf("substring search: %w", err)
	}

	n := len(docs)
	out := make([]result.Result, n)
	for i, d := range docs {
		out[i] = result.NewLexical(d, i+1, float64(n-i)/float64(n))
	}
	return out, nil
}
