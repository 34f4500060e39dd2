package linkdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/linkdex/internal/domain/search/mode"
	"github.com/kailas-cloud/linkdex/internal/domain/search/request"
	"github.com/kailas-cloud/linkdex/internal/domain/search/result"
)

// SearchService runs lexical, semantic and hybrid queries.
type SearchService struct {
	svc      searchUseCase
	defaults request.Defaults
	obs      *observer
}

// SearchOptions are the optional knobs of a query. Zero values use the defaults:
// limit 20, threshold 0.7 (0.3 inside hybrid), weights 0.6/0.4, RRF k 60.
type SearchOptions struct {
	Filter              Filter
	Limit               int
	SimilarityThreshold *float64
	BM25Weight          *float64
	SemanticWeight      *float64
	RRFK                *int
}

// Hybrid fuses lexical and semantic rankings with reciprocal rank fusion.
func (s *SearchService) Hybrid(ctx context.Context, query string, opts ...SearchOptions) (SearchResponse, error) {
	return s.Query(ctx, ModeHybrid, query, opts...)
}

// Lexical ranks by text match and never calls the embedding model.
func (s *SearchService) Lexical(ctx context.Context, query string, opts ...SearchOptions) (SearchResponse, error) {
	return s.Query(ctx, ModeLexical, query, opts...)
}

// Semantic ranks by cosine similarity to the embedded query.
func (s *SearchService) Semantic(ctx context.Context, query string, opts ...SearchOptions) (SearchResponse, error) {
	return s.Query(ctx, ModeSemantic, query, opts...)
}

// Query runs a search in the given mode. Only the first SearchOptions is used.
func (s *SearchService) Query(
	ctx context.Context, m SearchMode, query string, opts ...SearchOptions,
) (resp SearchResponse, err error) {
	start := time.Now()
	op := "search_" + string(m)
	defer func() { s.obs.observe(op, start, err) }()

	var o SearchOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	flt, err := toInternalFilter(o.Filter)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}
	req, err := request.New(request.Params{
		Query:               query,
		Mode:                mode.Mode(m),
		Filter:              flt,
		Limit:               o.Limit,
		SimilarityThreshold: o.SimilarityThreshold,
		BM25Weight:          o.BM25Weight,
		SemanticWeight:      o.SemanticWeight,
		RRFK:                o.RRFK,
	}, s.defaults)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}

	out, err := s.svc.Search(ctx, &req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}
	s.obs.spent(op, out.EmbeddingCostUSD)

	results := make([]SearchResult, len(out.Results))
	for i := range out.Results {
		results[i] = fromInternalResult(&out.Results[i], out.Mode)
	}
	return SearchResponse{
		Results:          results,
		Mode:             SearchMode(out.Mode),
		EmbeddingCostUSD: out.EmbeddingCostUSD,
		Degraded:         out.LexicalErr != nil || out.SemanticErr != nil,
	}, nil
}

func fromInternalResult(r *result.Result, m mode.Mode) SearchResult {
	sr := SearchResult{
		Document: fromInternalDocument(r.Document()),
		RRFScore: r.RRFScore(),
	}
	if rank, ok := r.LexicalRank(); ok {
		sr.LexicalRank = rank
	}
	if sim, ok := r.SemanticScore(); ok {
		sr.SemanticScore = &sim
	}

	switch m {
	case mode.Hybrid:
		sr.Score = r.FusedScore()
	case mode.Semantic:
		if sr.SemanticScore != nil {
			sr.Score = *sr.SemanticScore
		}
	default:
		sr.Score = r.LexicalScore()
	}
	return sr
}
