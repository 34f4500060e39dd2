package linkdex

import (
	"context"

	dombackfill "github.com/kailas-cloud/linkdex/internal/domain/backfill"
	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
	domdoc "github.com/kailas-cloud/linkdex/internal/domain/document"
	"github.com/kailas-cloud/linkdex/internal/domain/search/filter"
	"github.com/kailas-cloud/linkdex/internal/domain/search/request"
	documentuc "github.com/kailas-cloud/linkdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/linkdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/linkdex/internal/usecase/search"
)

// --- documentUseCase mock ---

type mockDocumentUC struct {
	upsertFn func(ctx context.Context, id string, f domdoc.Fields) (domdoc.Document, bool, error)
	getFn    func(ctx context.Context, id string) (domdoc.Document, error)
	listFn   func(ctx context.Context, f filter.Filter, limit, offset int) (documentuc.Page, error)
}

func (m *mockDocumentUC) Upsert(ctx context.Context, id string, f domdoc.Fields) (domdoc.Document, bool, error) {
	return m.upsertFn(ctx, id, f)
}

func (m *mockDocumentUC) Get(ctx context.Context, id string) (domdoc.Document, error) {
	return m.getFn(ctx, id)
}

func (m *mockDocumentUC) List(ctx context.Context, f filter.Filter, limit, offset int) (documentuc.Page, error) {
	return m.listFn(ctx, f, limit, offset)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, req *request.Request) (searchuc.Outcome, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) (searchuc.Outcome, error) {
	return m.searchFn(ctx, req)
}

// --- backfillUseCase mock ---

type mockBackfillUC struct {
	runBatchFn func(ctx context.Context, limit, offset int) (dombackfill.Report, error)
	runAllFn   func(ctx context.Context, limit int) ([]dombackfill.Report, error)
}

func (m *mockBackfillUC) RunBatch(ctx context.Context, limit, offset int) (dombackfill.Report, error) {
	return m.runBatchFn(ctx, limit, offset)
}

func (m *mockBackfillUC) RunAll(ctx context.Context, limit int) ([]dombackfill.Report, error) {
	return m.runAllFn(ctx, limit)
}

// --- costUseCase mock ---

type mockCostUC struct {
	summaryFn func(ctx context.Context, recent int) (domcost.Summary, error)
}

func (m *mockCostUC) Summary(ctx context.Context, recent int) (domcost.Summary, error) {
	return m.summaryFn(ctx, recent)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- embedder mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchFn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}
