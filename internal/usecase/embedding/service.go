package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/linkdex/internal/domain"
	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
)

// GenerateInput is a single-text embedding request.
type GenerateInput struct {
	Text       string
	DocumentID string
	// Batch skips the cost check; the caller already checked for the whole batch.
	Batch bool
}

// GenerateOutput is the result of Generate.
type GenerateOutput struct {
	Embedding  []float32
	Tokens     int
	CostUSD    float64
	Model      string
	Dimensions int
}

// Option configures a Service.
type Option func(*Service)

// WithQueryEmbedder sets the embedder used for search queries, typically cache-wrapped.
func WithQueryEmbedder(e domain.Embedder) Option {
	return func(s *Service) { s.query = e }
}

// Service runs embedding calls through the cost ledger.
// Every call that reaches the provider leaves exactly one cost record.
type Service struct {
	embedder domain.Embedder
	query    domain.Embedder
	ledger   Ledger
	vectors  VectorWriter
	model    string
	logger   *zap.Logger
}

// New creates a Service. vectors can be nil when documentId persistence is unused.
func New(
	embedder domain.Embedder, ledger Ledger, vectors VectorWriter,
	model string, logger *zap.Logger, opts ...Option,
) *Service {
	s := &Service{
		embedder: embedder,
		query:    embedder,
		ledger:   ledger,
		vectors:  vectors,
		model:    model,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Model returns the embedding model name.
func (s *Service) Model() string { return s.model }

// EmbedQuery embeds a search query and records a search_embedding cost.
// A cache hit is recorded as a zero-cost success.
func (s *Service) EmbedQuery(ctx context.Context, text string) (domain.EmbeddingResult, float64, error) {
	if err := s.ledger.Check(ctx, s.projected(text)); err != nil {
		return domain.EmbeddingResult{}, 0, fmt.Errorf("query embedding: %w", err)
	}

	start := time.Now()
	res, err := s.query.Embed(domcost.ContextWithRequestType(ctx, domcost.RequestSearchEmbedding), text)
	if err != nil {
		s.record(ctx, s.ledger.Failure(domcost.RequestSearchEmbedding, err, ""))
		return domain.EmbeddingResult{}, 0, fmt.Errorf("query embedding: %w", err)
	}

	rec := s.ledger.Success(domcost.RequestSearchEmbedding, res.PromptTokens, res.TotalTokens, "")
	s.record(ctx, rec)

	s.logger.Debug("Query embedded",
		zap.Bool("cached", res.Cached),
		zap.Int("total_tokens", res.TotalTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return res, rec.CostUSD, nil
}

// Generate embeds one text, optionally persisting the vector on a document.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (GenerateOutput, error) {
	if strings.TrimSpace(in.Text) == "" {
		return GenerateOutput{}, domain.InvalidRequestf("text is required")
	}

	if !in.Batch {
		if err := s.ledger.Check(ctx, s.projected(in.Text)); err != nil {
			return GenerateOutput{}, fmt.Errorf("generate embedding: %w", err)
		}
	}

	res, err := s.embedder.Embed(domcost.ContextWithRequestType(ctx, domcost.RequestEmbedding), in.Text)
	if err != nil {
		s.record(ctx, s.ledger.Failure(domcost.RequestEmbedding, err, in.DocumentID))
		return GenerateOutput{}, fmt.Errorf("generate embedding: %w", err)
	}

	rec := s.ledger.Success(domcost.RequestEmbedding, res.PromptTokens, res.TotalTokens, in.DocumentID)
	s.record(ctx, rec)

	if in.DocumentID != "" {
		if s.vectors == nil {
			return GenerateOutput{}, errors.New("generate embedding: no vector writer configured")
		}
		if err := s.vectors.SetVector(ctx, in.DocumentID, res.Embedding, s.model); err != nil {
			return GenerateOutput{}, fmt.Errorf("persist vector for %s: %w", in.DocumentID, err)
		}
	}

	return GenerateOutput{
		Embedding:  res.Embedding,
		Tokens:     res.TotalTokens,
		CostUSD:    rec.CostUSD,
		Model:      s.model,
		Dimensions: len(res.Embedding),
	}, nil
}

// EmbedBatch checks the caps once, embeds all texts in one provider call and
// records one embedding_batch cost. A cost-limit rejection writes no record.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, float64, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, 0, nil
	}

	if err := s.ledger.Check(ctx, s.projected(texts...)); err != nil {
		return domain.BatchEmbeddingResult{}, 0, fmt.Errorf("batch embedding: %w", err)
	}

	start := time.Now()
	res, err := s.embedInner(domcost.ContextWithRequestType(ctx, domcost.RequestEmbeddingBatch), texts)
	if err == nil && len(res.Embeddings) != len(texts) {
		err = fmt.Errorf("got %d embeddings for %d texts: %w", len(res.Embeddings), len(texts), domain.ErrModelUnavailable)
	}
	if err != nil {
		s.logger.Error("Batch embedding request failed",
			zap.String("model", s.model),
			zap.Int("batch_size", len(texts)),
			zap.Error(err),
		)
		s.record(ctx, s.ledger.Failure(domcost.RequestEmbeddingBatch, err, ""))
		return domain.BatchEmbeddingResult{}, 0, fmt.Errorf("batch embedding: %w", err)
	}

	rec := s.ledger.Success(domcost.RequestEmbeddingBatch, res.PromptTokens, res.TotalTokens, "")
	s.record(ctx, rec)

	s.logger.Debug("Batch embedding completed",
		zap.String("model", s.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", res.TotalTokens),
		zap.Float64("cost_usd", rec.CostUSD),
	)
	return res, rec.CostUSD, nil
}

func (s *Service) embedInner(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := s.embedder.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("inner batch embed: %w", err)
		}
		return res, nil
	}
	res, err := domain.BatchFallback(ctx, s.embedder, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("inner batch fallback: %w", err)
	}
	return res, nil
}

// projected estimates the cost of embedding texts before the call.
func (s *Service) projected(texts ...string) float64 {
	return s.ledger.Pricing().Cost(domcost.EstimateTokens(texts...))
}

// record appends to the ledger; a failed append is logged, never surfaced.
func (s *Service) record(ctx context.Context, rec domcost.Record) {
	if err := s.ledger.Record(ctx, rec); err != nil {
		s.logger.Error("Failed to record cost",
			zap.String("request_type", string(rec.RequestType)),
			zap.Float64("cost_usd", rec.CostUSD),
			zap.Error(err),
		)
	}
}
