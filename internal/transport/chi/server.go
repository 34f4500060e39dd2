package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	dombackfill "github.com/kailas-cloud/linkdex/internal/domain/backfill"
	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
	domdoc "github.com/kailas-cloud/linkdex/internal/domain/document"
	"github.com/kailas-cloud/linkdex/internal/domain/search/filter"
	"github.com/kailas-cloud/linkdex/internal/domain/search/mode"
	"github.com/kailas-cloud/linkdex/internal/domain/search/request"
	"github.com/kailas-cloud/linkdex/internal/metrics"
	"github.com/kailas-cloud/linkdex/internal/version"
	documentuc "github.com/kailas-cloud/linkdex/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/linkdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/linkdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/linkdex/internal/usecase/search"
)

// maxBodyBytes bounds request bodies; documents carry up to 160KB of body text.
const maxBodyBytes = 1 << 20

// Searcher runs a validated search.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (searchuc.Outcome, error)
}

// Backfiller embeds one batch of pending documents.
type Backfiller interface {
	RunBatch(ctx context.Context, limit, offset int) (dombackfill.Report, error)
}

// Generator embeds one text.
type Generator interface {
	Generate(ctx context.Context, in embeddinguc.GenerateInput) (embeddinguc.GenerateOutput, error)
}

// CostReporter summarizes the cost ledger.
type CostReporter interface {
	Summary(ctx context.Context, recent int) (domcost.Summary, error)
}

// Documents stores and reads saved URLs.
type Documents interface {
	Upsert(ctx context.Context, id string, f domdoc.Fields) (domdoc.Document, bool, error)
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context, f filter.Filter, limit, offset int) (documentuc.Page, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Services are the use cases the API exposes.
type Services struct {
	Search    Searcher
	Backfill  Backfiller
	Generate  Generator
	Costs     CostReporter
	Documents Documents
	Health    HealthChecker
}

// Options tune request handling.
type Options struct {
	SearchDefaults request.Defaults
	RecentRequests int
	APIKeys        []string
}

// Server is the HTTP API.
type Server struct {
	svc    Services
	opts   Options
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, opts Options, logger *zap.Logger) *Server {
	if opts.SearchDefaults.Limit == 0 {
		opts.SearchDefaults = request.StandardDefaults()
	}
	if opts.RecentRequests <= 0 {
		opts.RecentRequests = 10
	}
	return &Server{svc: svc, opts: opts, logger: logger}
}

// Handler builds the router with the full middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(s.opts.APIKeys))
	r.Use(metrics.Middleware("/metrics"))

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.SearchDocuments)
		r.Post("/search/{mode}", s.SearchDocuments)
		r.Post("/embeddings/backfill", s.RunBackfill)
		r.Post("/embeddings/generate", s.GenerateEmbedding)
		r.Get("/costs", s.GetCosts)
		r.Get("/documents", s.ListDocuments)
		r.Put("/documents/{id}", s.UpsertDocument)
		r.Get("/documents/{id}", s.GetDocument)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}

// SearchDocuments handles POST /v1/search and POST /v1/search/{mode}.
// A mode in the path overrides the body.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if chi.URLParam(r, "mode") != "" {
		var m string
		if !bindPath(w, r, "mode", &m) {
			return
		}
		req.Mode = m
	}

	f, err := filter.New(req.Category, req.SourceType, req.Archived)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	searchReq, err := request.New(request.Params{
		Query:               req.Query,
		Mode:                mode.Mode(strings.ToLower(req.Mode)),
		Filter:              f,
		Limit:               req.Limit,
		SimilarityThreshold: req.SimilarityThreshold,
		BM25Weight:          req.BM25Weight,
		SemanticWeight:      req.SemanticWeight,
		RRFK:                req.RRFK,
	}, s.opts.SearchDefaults)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	annotate(r.Context(),
		zap.String("search_mode", string(searchReq.Mode())),
		zap.Int("search_limit", searchReq.Limit()),
	)

	out, err := s.svc.Search.Search(r.Context(), &searchReq)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	annotate(r.Context(),
		zap.Int("result_count", len(out.Results)),
		zap.Float64("embedding_cost_usd", out.EmbeddingCostUSD),
	)

	writeJSON(w, http.StatusOK, outcomeToResponse(&out,
		searchReq.BM25Weight(), searchReq.SemanticWeight(), searchReq.RRFK(), time.Since(start)))
}

// RunBackfill handles POST /v1/embeddings/backfill. An empty body runs the default batch.
func (s *Server) RunBackfill(w http.ResponseWriter, r *http.Request) {
	var req BackfillRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	report, err := s.svc.Backfill.RunBatch(r.Context(), req.Limit, req.Offset)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	annotate(r.Context(),
		zap.Int("backfill_processed", report.Processed),
		zap.Int("backfill_failed", report.Failed),
	)
	writeJSON(w, http.StatusOK, reportToResponse(&report))
}

// GenerateEmbedding handles POST /v1/embeddings/generate.
func (s *Server) GenerateEmbedding(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := s.svc.Generate.Generate(r.Context(), embeddinguc.GenerateInput{
		Text:       req.Text,
		DocumentID: req.DocumentID,
		Batch:      req.Batch,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	annotate(r.Context(), zap.Int("tokens", out.Tokens), zap.Float64("cost_usd", out.CostUSD))
	writeJSON(w, http.StatusOK, GenerateResponse{
		Embedding:  out.Embedding,
		Tokens:     out.Tokens,
		CostUSD:    out.CostUSD,
		Model:      out.Model,
		Dimensions: out.Dimensions,
	})
}

// GetCosts handles GET /v1/costs?recent=N.
func (s *Server) GetCosts(w http.ResponseWriter, r *http.Request) {
	var recent *int
	if !bindQuery(w, r, "recent", &recent) {
		return
	}
	n := s.opts.RecentRequests
	if recent != nil {
		if *recent < 0 || *recent > 100 {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "recent must be between 0 and 100")
			return
		}
		n = *recent
	}

	summary, err := s.svc.Costs.Summary(r.Context(), n)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryToResponse(&summary))
}

// ListDocuments handles GET /v1/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	var (
		category, sourceType *string
		archived             *bool
		limit, offset        *int
	)
	if !bindQuery(w, r, "category", &category) ||
		!bindQuery(w, r, "sourceType", &sourceType) ||
		!bindQuery(w, r, "archived", &archived) ||
		!bindQuery(w, r, "limit", &limit) ||
		!bindQuery(w, r, "offset", &offset) {
		return
	}

	f, err := filter.New(deref(category), deref(sourceType), archived)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	page, err := s.svc.Documents.List(r.Context(), f, deref(limit), deref(offset))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	items := make([]DocumentResponse, len(page.Documents))
	for i := range page.Documents {
		items[i] = documentToResponse(&page.Documents[i])
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{
		Items:   items,
		Total:   page.Total,
		Pending: page.Pending,
		Limit:   len(items),
		Offset:  deref(offset),
	})
}

// UpsertDocument handles PUT /v1/documents/{id}.
func (s *Server) UpsertDocument(w http.ResponseWriter, r *http.Request) {
	var id string
	if !bindPath(w, r, "id", &id) {
		return
	}
	var req DocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	doc, created, err := s.svc.Documents.Upsert(r.Context(), id, req.fields())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", "/v1/documents/"+id)
	}
	annotate(r.Context(), zap.String("document_id", id), zap.Bool("created", created))
	writeJSON(w, status, documentToResponse(&doc))
}

// GetDocument handles GET /v1/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	var id string
	if !bindPath(w, r, "id", &id) {
		return
	}
	doc, err := s.svc.Documents.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(&doc))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func bindQuery(w http.ResponseWriter, r *http.Request, name string, dst any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid query parameter "+name+": "+err.Error())
		return false
	}
	return true
}

func bindPath(w http.ResponseWriter, r *http.Request, name string, dst any) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dst,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid path parameter "+name+": "+err.Error())
		return false
	}
	return true
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
