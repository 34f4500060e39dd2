package request

import (
	"strings"

	"github.com/kailas-cloud/linkdex/internal/domain"
	"github.com/kailas-cloud/linkdex/internal/domain/search/filter"
	"github.com/kailas-cloud/linkdex/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultLimit   = 20
	MaxLimit       = 100
)

// Defaults holds the values applied to omitted optional parameters.
type Defaults struct {
	Limit int
	// MaxLimit lowers the hard MaxLimit cap when positive.
	MaxLimit int
	// SimilarityThreshold applies to semantic-only queries.
	SimilarityThreshold float64
	// HybridSimilarityThreshold applies to the semantic branch of hybrid queries.
	HybridSimilarityThreshold float64
	BM25Weight                float64
	SemanticWeight            float64
	RRFK                      int
}

// StandardDefaults returns the stock defaults: limit 20, threshold 0.7 (0.3 in hybrid),
// weights 0.6/0.4, rrf_k 60.
func StandardDefaults() Defaults {
	return Defaults{
		Limit:                     DefaultLimit,
		MaxLimit:                  MaxLimit,
		SimilarityThreshold:       0.7,
		HybridSimilarityThreshold: 0.3,
		BM25Weight:                0.6,
		SemanticWeight:            0.4,
		RRFK:                      60,
	}
}

// Params are the raw, optional search parameters as received at the boundary.
type Params struct {
	Query               string
	Mode                mode.Mode
	Filter              filter.Filter
	Limit               int
	SimilarityThreshold *float64
	BM25Weight          *float64
	SemanticWeight      *float64
	RRFK                *int
}

// Request is a validated search query.
type Request struct {
	query          string
	searchMode     mode.Mode
	filter         filter.Filter
	limit          int
	threshold      float64
	bm25Weight     float64
	semanticWeight float64
	rrfK           int
}

// New validates and normalizes search parameters.
// Empty query fails with domain.ErrMissingQuery; out-of-range values fail with
// domain.ErrInvalidRequest before any external call is made.
func New(p Params, d Defaults) (Request, error) {
	query := strings.TrimSpace(p.Query)
	if query == "" {
		return Request{}, domain.ErrMissingQuery
	}
	if len(query) > MaxQueryLength {
		return Request{}, domain.InvalidRequestf("query too long (max %d chars)", MaxQueryLength)
	}
	m := p.Mode
	if m == "" {
		m = mode.Hybrid
	}
	if !m.IsValid() {
		return Request{}, domain.InvalidRequestf("invalid search mode: %q", m)
	}

	maxLimit := MaxLimit
	if d.MaxLimit > 0 && d.MaxLimit < MaxLimit {
		maxLimit = d.MaxLimit
	}
	limit := p.Limit
	if limit < 0 || limit > maxLimit {
		return Request{}, domain.InvalidRequestf("limit must be between 1 and %d", maxLimit)
	}
	if limit == 0 {
		limit = d.Limit
	}

	threshold := d.SimilarityThreshold
	if m == mode.Hybrid {
		threshold = d.HybridSimilarityThreshold
	}
	if p.SimilarityThreshold != nil {
		threshold = *p.SimilarityThreshold
	}
	if threshold < -1 || threshold > 1 {
		return Request{}, domain.InvalidRequestf("similarity_threshold must be between -1 and 1")
	}

	bm25, sem := d.BM25Weight, d.SemanticWeight
	if p.BM25Weight != nil {
		bm25 = *p.BM25Weight
	}
	if p.SemanticWeight != nil {
		sem = *p.SemanticWeight
	}
	if bm25 < 0 || sem < 0 {
		return Request{}, domain.InvalidRequestf("weights must be non-negative")
	}
	if bm25 == 0 && sem == 0 {
		return Request{}, domain.InvalidRequestf("at least one weight must be positive")
	}

	k := d.RRFK
	if p.RRFK != nil {
		k = *p.RRFK
	}
	if k <= 0 {
		return Request{}, domain.InvalidRequestf("rrf_k must be positive")
	}

	return Request{
		query:          query,
		searchMode:     m,
		filter:         p.Filter,
		limit:          limit,
		threshold:      threshold,
		bm25Weight:     bm25,
		semanticWeight: sem,
		rrfK:           k,
	}, nil
}

// Query returns the trimmed search query text.
func (r *Request) Query() string { return r.query }

// Mode returns the search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Filter returns the label filter.
func (r *Request) Filter() filter.Filter { return r.filter }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// SimilarityThreshold returns the exclusive lower bound on cosine similarity.
func (r *Request) SimilarityThreshold() float64 { return r.threshold }

// BM25Weight returns the lexical weight in fusion.
func (r *Request) BM25Weight() float64 { return r.bm25Weight }

// SemanticWeight returns the semantic weight in fusion.
func (r *Request) SemanticWeight() float64 { return r.semanticWeight }

// RRFK returns the RRF rank discount constant.
func (r *Request) RRFK() int { return r.rrfK }

// Branch returns a copy for a single retrieval branch with the given candidate limit.
// The limit may exceed MaxLimit; hybrid queries fetch 2x candidates per branch.
func (r *Request) Branch(m mode.Mode, limit int) Request {
	c := *r
	c.searchMode = m
	c.limit = limit
	return c
}
