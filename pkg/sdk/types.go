package linkdex

import "time"

// SearchMode controls the retrieval strategy.
type SearchMode string

// Search mode constants.
const (
	ModeHybrid   SearchMode = "hybrid"
	ModeSemantic SearchMode = "semantic"
	ModeLexical  SearchMode = "lexical"
)

// Document is a saved URL with its extracted text.
type Document struct {
	ID         string
	URL        string
	Title      string
	Summary    string
	Body       string
	Category   string
	SourceType string
	Tags       []string
	Archived   bool
	// CreatedAt is set by the store and ignored on upsert.
	CreatedAt time.Time
	// HasEmbedding is read-only.
	HasEmbedding bool
}

// ListResult is one page of documents.
type ListResult struct {
	Documents []Document
	Total     int
	// Pending counts documents still waiting for an embedding.
	Pending int
}

// Filter narrows search and list results. Empty fields match everything.
type Filter struct {
	Category   string
	SourceType string
	// Archived selects archived (true) or active (false) documents; nil matches both
	// in listings and defaults to active-only in lexical search.
	Archived *bool
}

// SearchResult is a single search hit.
type SearchResult struct {
	Document Document
	// Score is the fused score in hybrid mode, otherwise the branch score.
	Score         float64
	LexicalRank   int
	SemanticScore *float64
	RRFScore      float64
}

// SearchResponse is the outcome of a search.
type SearchResponse struct {
	Results          []SearchResult
	Mode             SearchMode
	EmbeddingCostUSD float64
	// Degraded is set when one hybrid branch failed and results come from the other.
	Degraded bool
}

// BackfillReport summarizes one embedding backfill batch.
type BackfillReport struct {
	Processed  int
	Successful int
	Failed     int
	CostUSD    float64
	Remaining  int
	Errors     []string
}

// PeriodSpend is the spend of one daily or monthly window.
type PeriodSpend struct {
	Start        time.Time
	CostUSD      float64
	Requests     int
	LimitUSD     float64
	RemainingUSD float64
	PercentUsed  float64
}

// ModelSpend is the spend of one model and request type in the current month.
type ModelSpend struct {
	Model       string
	RequestType string
	Requests    int
	Tokens      int
	CostUSD     float64
}

// CostSummary reports spend against the caps.
type CostSummary struct {
	Daily      PeriodSpend
	Monthly    PeriodSpend
	ByModel    []ModelSpend
	CanProcess bool
}
