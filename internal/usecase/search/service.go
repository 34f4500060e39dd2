package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/linkdex/internal/domain"
	"github.com/kailas-cloud/linkdex/internal/domain/search/mode"
	"github.com/kailas-cloud/linkdex/internal/domain/search/request"
	"github.com/kailas-cloud/linkdex/internal/domain/search/result"
	"github.com/kailas-cloud/linkdex/internal/logger"
	"github.com/kailas-cloud/linkdex/internal/metrics"
)

// Outcome is a completed search with per-branch bookkeeping.
type Outcome struct {
	Results          []result.Result
	Mode             mode.Mode
	EmbeddingCostUSD float64
	LexicalCount     int
	SemanticCount    int
	// LexicalErr and SemanticErr are set when a hybrid branch degraded to empty.
	LexicalErr  error
	SemanticErr error
}

// Service coordinates lexical, semantic and hybrid search.
type Service struct {
	lexical  LexicalEngine
	semantic SemanticEngine
	logger   *zap.Logger
}

// New creates a search service.
func New(lexical LexicalEngine, semantic SemanticEngine, logger *zap.Logger) *Service {
	return &Service{lexical: lexical, semantic: semantic, logger: logger}
}

// Search executes req in its mode.
func (s *Service) Search(ctx context.Context, req *request.Request) (Outcome, error) {
	start := time.Now()
	defer func() {
		metrics.SearchDuration.WithLabelValues(string(req.Mode())).Observe(time.Since(start).Seconds())
	}()

	switch req.Mode() {
	case mode.Lexical:
		return s.searchLexical(ctx, req)
	case mode.Semantic:
		return s.searchSemantic(ctx, req)
	case mode.Hybrid:
		return s.searchHybrid(ctx, req)
	default:
		return Outcome{}, domain.InvalidRequestf("unsupported search mode: %s", req.Mode())
	}
}

func (s *Service) searchLexical(ctx context.Context, req *request.Request) (Outcome, error) {
	results, err := s.lexical.Search(ctx, req)
	observeBranch(mode.Lexical, err)
	if err != nil {
		return Outcome{}, fmt.Errorf("lexical search: %w", err)
	}
	return Outcome{Results: results, Mode: mode.Lexical, LexicalCount: len(results)}, nil
}

func (s *Service) searchSemantic(ctx context.Context, req *request.Request) (Outcome, error) {
	results, costUSD, err := s.semantic.Search(ctx, req)
	observeBranch(mode.Semantic, err)
	if err != nil {
		return Outcome{}, fmt.Errorf("semantic search: %w", err)
	}
	return Outcome{
		Results:          results,
		Mode:             mode.Semantic,
		EmbeddingCostUSD: costUSD,
		SemanticCount:    len(results),
	}, nil
}

type semanticHits struct {
	results []result.Result
	costUSD float64
}

// searchHybrid runs both branches with 2x candidates, settles both, then fuses via RRF.
// A failed branch contributes nothing; both failing is ErrSearchUnavailable.
func (s *Service) searchHybrid(ctx context.Context, req *request.Request) (Outcome, error) {
	candidates := 2 * req.Limit()
	lexReq := req.Branch(mode.Lexical, candidates)
	semReq := req.Branch(mode.Semantic, candidates)

	lex, sem := settle(
		func() ([]result.Result, error) { return s.lexical.Search(ctx, &lexReq) },
		func() (semanticHits, error) {
			rs, c, err := s.semantic.Search(ctx, &semReq)
			return semanticHits{results: rs, costUSD: c}, err
		},
	)
	observeBranch(mode.Lexical, lex.err)
	observeBranch(mode.Semantic, sem.err)

	if lex.err != nil && sem.err != nil {
		return Outcome{}, fmt.Errorf("%w: lexical: %v; semantic: %v", domain.ErrSearchUnavailable, lex.err, sem.err)
	}

	log := logger.FromContextOr(ctx, s.logger)
	if lex.err != nil {
		log.Warn("Lexical branch failed, continuing with semantic results", zap.Error(lex.err))
	}
	if sem.err != nil {
		log.Warn("Semantic branch failed, continuing with lexical results", zap.Error(sem.err))
	}

	fused := FuseRRF(lex.value, sem.value.results, req.RRFK(),
		Weights{Lexical: req.BM25Weight(), Semantic: req.SemanticWeight()}, req.Limit())

	return Outcome{
		Results:          fused,
		Mode:             mode.Hybrid,
		EmbeddingCostUSD: sem.value.costUSD,
		LexicalCount:     len(lex.value),
		SemanticCount:    len(sem.value.results),
		LexicalErr:       lex.err,
		SemanticErr:      sem.err,
	}, nil
}

func observeBranch(branch mode.Mode, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchBranchTotal.WithLabelValues(string(branch), status).Inc()
}
