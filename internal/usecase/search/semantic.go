package search

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/linkdex/internal/domain/search/request"
	"github.com/kailas-cloud/linkdex/internal/domain/search/result"
	"github.com/kailas-cloud/linkdex/internal/domain/vector"
)

// LinearEngine scores every embedded document against the query vector.
// Intended for corpora in the low thousands; there is no ANN index.
type LinearEngine struct {
	docs     EmbeddedLister
	embedder QueryEmbedder
	logger   *zap.Logger
}

// NewLinearEngine creates the semantic engine.
func NewLinearEngine(docs EmbeddedLister, embedder QueryEmbedder, logger *zap.Logger) *LinearEngine {
	return &LinearEngine{docs: docs, embedder: embedder, logger: logger}
}

// Search embeds the query, keeps documents scoring strictly above the threshold and
// orders them by score desc, createdAt desc. The returned cost is the query embedding's.
func (e *LinearEngine) Search(ctx context.Context, req *request.Request) ([]result.Result, float64, error) {
	emb, costUSD, err := e.embedder.EmbedQuery(ctx, req.Query())
	if err != nil {
		return nil, 0, err //nolint:wrapcheck // already wrapped by the embedding service
	}

	docs, err := e.docs.ListEmbedded(ctx, req.Filter())
	if err != nil {
		return nil, costUSD, fmt.Errorf("list embedded documents: %w", err)
	}

	threshold := req.SimilarityThreshold()
	out := make([]result.Result, 0, len(docs))
	for i := range docs {
		score, mismatch := vector.Cosine(emb.Embedding, docs[i].Vector())
		if mismatch {
			e.logger.Warn("Vector dimension mismatch",
				zap.String("document_id", docs[i].ID()),
				zap.Int("query_dims", len(emb.Embedding)),
				zap.Int("document_dims", len(docs[i].Vector())),
				zap.String("document_model", docs[i].VectorModel()),
			)
		}
		if score > threshold {
			out = append(out, result.NewSemantic(docs[i], score))
		}
	}

	sortSemantic(out)
	if len(out) > req.Limit() {
		out = out[:req.Limit()]
	}
	return out, costUSD, nil
}

func sortSemantic(rs []result.Result) {
	sort.SliceStable(rs, func(i, j int) bool {
		si, _ := rs[i].SemanticScore()
		sj, _ := rs[j].SemanticScore()
		if si != sj {
			return si > sj
		}
		return rs[i].Document().CreatedAt().After(rs[j].Document().CreatedAt())
	})
}
