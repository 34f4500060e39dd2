package backfill

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/linkdex/internal/domain"
	dombackfill "github.com/kailas-cloud/linkdex/internal/domain/backfill"
	"github.com/kailas-cloud/linkdex/internal/metrics"
)

// Batch size limits.
const (
	DefaultLimit = 10
	MaxLimit     = 50
	// DefaultBodyPrefix is how many body runes go into the embedding text.
	DefaultBodyPrefix = 1000
)

// Service embeds documents that have no vector yet.
type Service struct {
	docs         PendingStore
	embed        BatchEmbedder
	logger       *zap.Logger
	defaultLimit int
	maxLimit     int
	bodyPrefix   int
}

// New creates a backfill service.
func New(docs PendingStore, embed BatchEmbedder, logger *zap.Logger) *Service {
	return &Service{
		docs:         docs,
		embed:        embed,
		logger:       logger,
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
		bodyPrefix:   DefaultBodyPrefix,
	}
}

// WithLimits configures the default and maximum batch size. MaxLimit stays the hard cap.
func (s *Service) WithLimits(defaultLimit, maxLimit int) *Service {
	if maxLimit > 0 && maxLimit <= MaxLimit {
		s.maxLimit = maxLimit
	}
	if defaultLimit > 0 && defaultLimit <= s.maxLimit {
		s.defaultLimit = defaultLimit
	}
	return s
}

// WithBodyPrefix configures how much of the body is embedded.
func (s *Service) WithBodyPrefix(n int) *Service {
	if n > 0 {
		s.bodyPrefix = n
	}
	return s
}

// RunBatch embeds up to limit pending documents, skipping the first offset.
// A zero limit means the default. Cost-limit rejections and store failures abort the
// batch with an error; a model failure fails every item but still returns a report.
// Per-item persistence errors are collected in the report.
func (s *Service) RunBatch(ctx context.Context, limit, offset int) (dombackfill.Report, error) {
	if limit == 0 {
		limit = s.defaultLimit
	}
	if limit < 0 || limit > s.maxLimit {
		return dombackfill.Report{}, domain.InvalidRequestf("limit must be between 1 and %d", s.maxLimit)
	}
	if offset < 0 {
		return dombackfill.Report{}, domain.InvalidRequestf("offset must be non-negative")
	}

	docs, err := s.docs.ListUnembedded(ctx, limit, offset)
	if err != nil {
		return dombackfill.Report{}, fmt.Errorf("list unembedded: %w", err)
	}
	if len(docs) == 0 {
		return s.report(ctx, nil, 0), nil
	}

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].EmbeddingText(s.bodyPrefix)
	}

	res, costUSD, err := s.embed.EmbedBatch(ctx, texts)
	if errors.Is(err, domain.ErrCostLimitReached) {
		return dombackfill.Report{}, err //nolint:wrapcheck // already wrapped by the embedding service
	}
	if err != nil {
		s.logger.Warn("Backfill batch embedding failed",
			zap.Int("batch_size", len(docs)),
			zap.Error(err),
		)
		items := make([]dombackfill.Result, len(docs))
		for i := range docs {
			items[i] = dombackfill.NewError(docs[i].ID(), err)
		}
		return s.report(ctx, items, 0), nil
	}

	model := s.embed.Model()
	items := make([]dombackfill.Result, len(docs))
	for i := range docs {
		if err := s.docs.SetVector(ctx, docs[i].ID(), res.Embeddings[i], model); err != nil {
			s.logger.Warn("Failed to persist backfilled vector",
				zap.String("document_id", docs[i].ID()),
				zap.Error(err),
			)
			items[i] = dombackfill.NewError(docs[i].ID(), fmt.Errorf("set vector: %w", err))
			continue
		}
		items[i] = dombackfill.NewOK(docs[i].ID())
	}
	return s.report(ctx, items, costUSD), nil
}

// RunAll repeats RunBatch from offset 0 until nothing is pending, a batch makes no
// progress, or an error stops it. Reports of completed batches are returned.
func (s *Service) RunAll(ctx context.Context, limit int) ([]dombackfill.Report, error) {
	var reports []dombackfill.Report
	for {
		if err := ctx.Err(); err != nil {
			return reports, err //nolint:wrapcheck // context cancellation
		}
		r, err := s.RunBatch(ctx, limit, 0)
		if err != nil {
			return reports, err
		}
		reports = append(reports, r)
		if r.Remaining == 0 || r.Successful == 0 {
			return reports, nil
		}
	}
}

func (s *Service) report(ctx context.Context, items []dombackfill.Result, costUSD float64) dombackfill.Report {
	remaining, err := s.docs.CountUnembedded(ctx)
	if err != nil {
		s.logger.Warn("Failed to count pending documents", zap.Error(err))
		remaining = 0
	}
	r := dombackfill.NewReport(items, costUSD, remaining)
	metrics.BackfillDocumentsTotal.WithLabelValues(string(dombackfill.StatusOK)).Add(float64(r.Successful))
	metrics.BackfillDocumentsTotal.WithLabelValues(string(dombackfill.StatusError)).Add(float64(r.Failed))

	s.logger.Info("Backfill batch completed",
		zap.Int("processed", r.Processed),
		zap.Int("successful", r.Successful),
		zap.Int("failed", r.Failed),
		zap.Float64("cost_usd", r.CostUSD),
		zap.Int("remaining", r.Remaining),
	)
	return r
}
