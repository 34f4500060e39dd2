package chi

import (
	"time"

	dombackfill "github.com/kailas-cloud/linkdex/internal/domain/backfill"
	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
	domdoc "github.com/kailas-cloud/linkdex/internal/domain/document"
	"github.com/kailas-cloud/linkdex/internal/domain/search/mode"
	"github.com/kailas-cloud/linkdex/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/linkdex/internal/usecase/search"
)

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Query               string   `json:"query"`
	Mode                string   `json:"mode,omitempty"`
	Limit               int      `json:"limit,omitempty"`
	SimilarityThreshold *float64 `json:"similarityThreshold,omitempty"`
	BM25Weight          *float64 `json:"bm25Weight,omitempty"`
	SemanticWeight      *float64 `json:"semanticWeight,omitempty"`
	RRFK                *int     `json:"rrfK,omitempty"`
	Category            string   `json:"category,omitempty"`
	SourceType          string   `json:"sourceType,omitempty"`
	Archived            *bool    `json:"archived,omitempty"`
}

// SearchResultItem is one hit. Score fields are present only for the modes that produce them.
type SearchResultItem struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	Summary         string    `json:"summary"`
	Category        string    `json:"category"`
	SourceType      string    `json:"sourceType"`
	Tags            []string  `json:"tags"`
	CreatedAt       time.Time `json:"createdAt"`
	Rank            *float64  `json:"rank,omitempty"`
	SimilarityScore *float64  `json:"similarityScore,omitempty"`
	HybridScore     *float64  `json:"hybridScore,omitempty"`
	RRFScore        *float64  `json:"rrfScore,omitempty"`
	BM25Rank        *int      `json:"bm25Rank,omitempty"`
	SemanticScore   *float64  `json:"semanticScore,omitempty"`
}

// SearchWeights echoes the fusion weights used.
type SearchWeights struct {
	BM25     float64 `json:"bm25"`
	Semantic float64 `json:"semantic"`
}

// SearchInfo describes how a hybrid result was assembled.
type SearchInfo struct {
	BM25ResultCount     int           `json:"bm25ResultCount"`
	SemanticResultCount int           `json:"semanticResultCount"`
	Weights             SearchWeights `json:"weights"`
	RRFK                int           `json:"rrfK"`
	// Degraded lists branches that failed and contributed nothing.
	Degraded []string `json:"degraded,omitempty"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Mode             mode.Mode          `json:"mode"`
	Results          []SearchResultItem `json:"results"`
	TotalResults     int                `json:"totalResults"`
	ProcessingTimeMs int64              `json:"processingTimeMs"`
	EmbeddingCostUSD *float64           `json:"embeddingCostUsd,omitempty"`
	SearchInfo       *SearchInfo        `json:"searchInfo,omitempty"`
}

// BackfillRequest is the body of POST /v1/embeddings/backfill.
type BackfillRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// BackfillResponse reports one backfill batch.
type BackfillResponse struct {
	Processed      int      `json:"processed"`
	Successful     int      `json:"successful"`
	Failed         int      `json:"failed"`
	TotalCostUSD   float64  `json:"totalCostUsd"`
	RemainingCount int      `json:"remainingCount"`
	Errors         []string `json:"errors"`
}

// GenerateRequest is the body of POST /v1/embeddings/generate.
type GenerateRequest struct {
	Text       string `json:"text"`
	DocumentID string `json:"documentId,omitempty"`
	Batch      bool   `json:"batch,omitempty"`
}

// GenerateResponse carries one embedding and its cost.
type GenerateResponse struct {
	Embedding  []float32 `json:"embedding"`
	Tokens     int       `json:"tokens"`
	CostUSD    float64   `json:"costUsd"`
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
}

// PeriodCost is the spend of one cap window.
type PeriodCost struct {
	Date           string  `json:"date,omitempty"`
	Month          string  `json:"month,omitempty"`
	TotalCostUSD   float64 `json:"totalCostUsd"`
	RequestCount   int     `json:"requestCount"`
	LimitUSD       float64 `json:"limitUsd"`
	RemainingUSD   float64 `json:"remainingUsd"`
	PercentageUsed float64 `json:"percentageUsed"`
}

// ModelCost is spend per model and request type in the current month.
type ModelCost struct {
	Model       string  `json:"model"`
	RequestType string  `json:"requestType"`
	Requests    int     `json:"requests"`
	Tokens      int     `json:"tokens"`
	CostUSD     float64 `json:"costUsd"`
}

// CostRecord is one ledger entry.
type CostRecord struct {
	ID           string    `json:"id"`
	Model        string    `json:"model"`
	RequestType  string    `json:"requestType"`
	TotalTokens  int       `json:"totalTokens"`
	CostUSD      float64   `json:"costUsd"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	DocumentID   string    `json:"documentId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CostLimits reports caps and whether they are reached.
type CostLimits struct {
	DailyLimitUSD   float64 `json:"dailyLimitUsd"`
	MonthlyLimitUSD float64 `json:"monthlyLimitUsd"`
	DailyReached    bool    `json:"dailyReached"`
	MonthlyReached  bool    `json:"monthlyReached"`
	CanProcess      bool    `json:"canProcess"`
}

// CostSummaryResponse is the body of GET /v1/costs.
type CostSummaryResponse struct {
	Daily            PeriodCost   `json:"daily"`
	Monthly          PeriodCost   `json:"monthly"`
	BreakdownByModel []ModelCost  `json:"breakdownByModel"`
	RecentRequests   []CostRecord `json:"recentRequests"`
	Limits           CostLimits   `json:"limits"`
}

// DocumentRequest is the body of PUT /v1/documents/{id}.
type DocumentRequest struct {
	URL        string   `json:"url"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Body       string   `json:"body"`
	Category   string   `json:"category"`
	SourceType string   `json:"sourceType"`
	Tags       []string `json:"tags"`
	Archived   bool     `json:"archived"`
}

// DocumentResponse is a stored document without its vector.
type DocumentResponse struct {
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	Summary        string    `json:"summary"`
	Category       string    `json:"category"`
	SourceType     string    `json:"sourceType"`
	Tags           []string  `json:"tags"`
	Archived       bool      `json:"archived"`
	CreatedAt      time.Time `json:"createdAt"`
	HasEmbedding   bool      `json:"hasEmbedding"`
	EmbeddingModel string    `json:"embeddingModel,omitempty"`
}

// DocumentListResponse is one page of documents.
type DocumentListResponse struct {
	Items   []DocumentResponse `json:"items"`
	Total   int                `json:"total"`
	Pending int                `json:"pending"`
	Limit   int                `json:"limit"`
	Offset  int                `json:"offset"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}

func (req *DocumentRequest) fields() domdoc.Fields {
	return domdoc.Fields{
		URL:        req.URL,
		Title:      req.Title,
		Summary:    req.Summary,
		Body:       req.Body,
		Category:   req.Category,
		SourceType: req.SourceType,
		Tags:       req.Tags,
		Archived:   req.Archived,
	}
}

func documentToResponse(d *domdoc.Document) DocumentResponse {
	tags := d.Tags()
	if tags == nil {
		tags = []string{}
	}
	return DocumentResponse{
		ID:             d.ID(),
		URL:            d.URL(),
		Title:          d.Title(),
		Summary:        d.Summary(),
		Category:       d.Category(),
		SourceType:     d.SourceType(),
		Tags:           tags,
		Archived:       d.Archived(),
		CreatedAt:      d.CreatedAt(),
		HasEmbedding:   d.HasVector(),
		EmbeddingModel: d.VectorModel(),
	}
}

func searchResultToItem(r *result.Result, m mode.Mode) SearchResultItem {
	d := r.Document()
	tags := d.Tags()
	if tags == nil {
		tags = []string{}
	}
	item := SearchResultItem{
		ID:         d.ID(),
		URL:        d.URL(),
		Title:      d.Title(),
		Summary:    d.Summary(),
		Category:   d.Category(),
		SourceType: d.SourceType(),
		Tags:       tags,
		CreatedAt:  d.CreatedAt(),
	}

	switch m {
	case mode.Lexical:
		rank := r.LexicalScore()
		item.Rank = &rank
	case mode.Semantic:
		if s, ok := r.SemanticScore(); ok {
			item.SimilarityScore = &s
		}
	case mode.Hybrid:
		fused, rrf := r.FusedScore(), r.RRFScore()
		item.HybridScore = &fused
		item.RRFScore = &rrf
		if rank, ok := r.LexicalRank(); ok {
			item.BM25Rank = &rank
		}
		if s, ok := r.SemanticScore(); ok {
			item.SemanticScore = &s
		}
	}
	return item
}

func outcomeToResponse(out *searchuc.Outcome, bm25W, semW float64, rrfK int, elapsed time.Duration) SearchResponse {
	items := make([]SearchResultItem, len(out.Results))
	for i := range out.Results {
		items[i] = searchResultToItem(&out.Results[i], out.Mode)
	}
	resp := SearchResponse{
		Mode:             out.Mode,
		Results:          items,
		TotalResults:     len(items),
		ProcessingTimeMs: elapsed.Milliseconds(),
	}
	if out.Mode != mode.Lexical {
		c := out.EmbeddingCostUSD
		resp.EmbeddingCostUSD = &c
	}
	if out.Mode == mode.Hybrid {
		info := &SearchInfo{
			BM25ResultCount:     out.LexicalCount,
			SemanticResultCount: out.SemanticCount,
			Weights:             SearchWeights{BM25: bm25W, Semantic: semW},
			RRFK:                rrfK,
		}
		if out.LexicalErr != nil {
			info.Degraded = append(info.Degraded, string(mode.Lexical))
		}
		if out.SemanticErr != nil {
			info.Degraded = append(info.Degraded, string(mode.Semantic))
		}
		resp.SearchInfo = info
	}
	return resp
}

func reportToResponse(r *dombackfill.Report) BackfillResponse {
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	return BackfillResponse{
		Processed:      r.Processed,
		Successful:     r.Successful,
		Failed:         r.Failed,
		TotalCostUSD:   r.CostUSD,
		RemainingCount: r.Remaining,
		Errors:         errs,
	}
}

func periodToResponse(p *domcost.PeriodSpend) PeriodCost {
	pc := PeriodCost{
		TotalCostUSD:   p.Totals.CostUSD,
		RequestCount:   p.Totals.Requests,
		LimitUSD:       p.LimitUSD,
		RemainingUSD:   p.RemainingUSD,
		PercentageUsed: p.PercentUsed,
	}
	if p.Scope == domcost.Monthly {
		pc.Month = p.Start.Format("2006-01")
	} else {
		pc.Date = p.Start.Format(time.DateOnly)
	}
	return pc
}

func summaryToResponse(s *domcost.Summary) CostSummaryResponse {
	byModel := make([]ModelCost, len(s.ByModel))
	for i, b := range s.ByModel {
		byModel[i] = ModelCost{
			Model:       b.Model,
			RequestType: string(b.RequestType),
			Requests:    b.Requests,
			Tokens:      b.Tokens,
			CostUSD:     b.CostUSD,
		}
	}
	recent := make([]CostRecord, len(s.Recent))
	for i, r := range s.Recent {
		recent[i] = CostRecord{
			ID:           r.ID,
			Model:        r.Model,
			RequestType:  string(r.RequestType),
			TotalTokens:  r.TotalTokens,
			CostUSD:      r.CostUSD,
			Success:      r.Success,
			ErrorMessage: r.ErrorMessage,
			DocumentID:   r.DocumentID,
			CreatedAt:    r.CreatedAt,
		}
	}
	return CostSummaryResponse{
		Daily:            periodToResponse(&s.Daily),
		Monthly:          periodToResponse(&s.Monthly),
		BreakdownByModel: byModel,
		RecentRequests:   recent,
		Limits: CostLimits{
			DailyLimitUSD:   s.Daily.LimitUSD,
			MonthlyLimitUSD: s.Monthly.LimitUSD,
			DailyReached:    s.Daily.Reached(),
			MonthlyReached:  s.Monthly.Reached(),
			CanProcess:      s.CanProcess,
		},
	}
}
