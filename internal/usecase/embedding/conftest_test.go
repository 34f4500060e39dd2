package embedding

import (
	"context"
	"errors"

	"github.com/kailas-cloud/linkdex/internal/domain"
	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
)

type mockEmbedder struct {
	result      domain.EmbeddingResult
	err         error
	batchResult domain.BatchEmbeddingResult
	batchErr    error
	calls       int
	batchCalls  int
	// types holds the request type tagged on each call's context.
	types       []domcost.RequestType
}

func (m *mockEmbedder) Embed(ctx context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	m.types = append(m.types, domcost.RequestTypeFrom(ctx, ""))
	return m.result, m.err
}

func (m *mockEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	m.types = append(m.types, domcost.RequestTypeFrom(ctx, ""))
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	if m.batchResult.Embeddings != nil {
		return m.batchResult, nil
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = m.result.Embedding
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: m.result.PromptTokens * len(texts),
		TotalTokens:  m.result.TotalTokens * len(texts),
	}, nil
}

// singleEmbedder has no batch endpoint.
type singleEmbedder struct{ inner *mockEmbedder }

func (s *singleEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return s.inner.Embed(ctx, text)
}

type mockLedger struct {
	checkErr  error
	recordErr error
	checks    int
	records   []domcost.Record
	pricing   domcost.Pricing
}

func newMockLedger() *mockLedger { return &mockLedger{pricing: domcost.DefaultPricing()} }

func (m *mockLedger) Pricing() domcost.Pricing { return m.pricing }

func (m *mockLedger) Check(_ context.Context, _ float64) error {
	m.checks++
	return m.checkErr
}

func (m *mockLedger) Record(_ context.Context, rec domcost.Record) error {
	m.records = append(m.records, rec)
	return m.recordErr
}

func (m *mockLedger) Success(typ domcost.RequestType, prompt, total int, docID string) domcost.Record {
	return domcost.Record{
		Model: m.pricing.Model, PromptTokens: prompt, TotalTokens: total,
		CostUSD: m.pricing.Cost(total), RequestType: typ, Success: true, DocumentID: docID,
	}
}

func (m *mockLedger) Failure(typ domcost.RequestType, cause error, docID string) domcost.Record {
	return domcost.Record{
		Model: m.pricing.Model, RequestType: typ, ErrorMessage: cause.Error(), DocumentID: docID,
	}
}

type mockVectors struct {
	err   error
	calls map[string][]float32
}

func (m *mockVectors) SetVector(_ context.Context, id string, vec []float32, _ string) error {
	if m.err != nil {
		return m.err
	}
	if m.calls == nil {
		m.calls = map[string][]float32{}
	}
	m.calls[id] = vec
	return nil
}

var errInner = errors.New("upstream exploded")
