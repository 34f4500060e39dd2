package search

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/blevesearch/bleve"
	"go.uber.org/zap"

	domdoc "github.com/kailas-cloud/linkdex/internal/domain/document"
	"github.com/kailas-cloud/linkdex/internal/domain/search/filter"
	"github.com/kailas-cloud/linkdex/internal/domain/search/request"
	"github.com/kailas-cloud/linkdex/internal/domain/search/result"
)

// bleveDoc is the indexed projection of a document.
type bleveDoc struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Body    string `json:"body"`
}

// BleveEngine ranks documents by BM25-style relevance from an in-memory bleve index.
// Ties on relevance fall back to recency.
type BleveEngine struct {
	mu     sync.RWMutex
	index  bleve.Index
	docs   map[string]domdoc.Document
	source DocumentLister
	logger *zap.Logger
}

// NewBleveEngine creates an empty engine. Call Sync to load the corpus.
func NewBleveEngine(source DocumentLister, logger *zap.Logger) (*BleveEngine, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}
	return &BleveEngine{
		index:  index,
		docs:   make(map[string]domdoc.Document),
		source: source,
		logger: logger,
	}, nil
}

// Sync rebuilds the index from the document store.
func (e *BleveEngine) Sync(ctx context.Context) error {
	docs, err := e.source.List(ctx, filter.Filter{})
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return fmt.Errorf("create bleve index: %w", err)
	}
	batch := index.NewBatch()
	byID := make(map[string]domdoc.Document, len(docs))
	for i := range docs {
		if err := batch.Index(docs[i].ID(), project(&docs[i])); err != nil {
			return fmt.Errorf("index %s: %w", docs[i].ID(), err)
		}
		byID[docs[i].ID()] = docs[i]
	}
	if err := index.Batch(batch); err != nil {
		return fmt.Errorf("apply bleve batch: %w", err)
	}

	e.mu.Lock()
	old := e.index
	e.index, e.docs = index, byID
	e.mu.Unlock()

	if err := old.Close(); err != nil {
		e.logger.Warn("Failed to close previous bleve index", zap.Error(err))
	}
	e.logger.Info("Lexical index synced", zap.Int("documents", len(byID)))
	return nil
}

// Index adds or replaces one document.
func (e *BleveEngine) Index(doc domdoc.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.index.Index(doc.ID(), project(&doc)); err != nil {
		return fmt.Errorf("index %s: %w", doc.ID(), err)
	}
	e.docs[doc.ID()] = doc
	return nil
}

// Close releases the index.
func (e *BleveEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.Close() //nolint:wrapcheck // close on shutdown
}

// Search returns up to req.Limit() hits ordered by relevance desc, createdAt desc.
// The score is relevance normalized by the best hit.
func (e *BleveEngine) Search(_ context.Context, req *request.Request) ([]result.Result, error) {
	f := req.Filter().WithArchivedDefault(false)

	e.mu.RLock()
	defer e.mu.RUnlock()

	q := bleve.NewMatchQuery(req.Query())
	sr := bleve.NewSearchRequestOptions(q, len(e.docs)+1, 0, false)
	res, err := e.index.Search(sr)
	if err != nil {
		return nil, fmt.Errorf("bleve search: %w", err)
	}

	type hit struct {
		doc   domdoc.Document
		score float64
	}
	hits := make([]hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		doc, ok := e.docs[h.ID]
		if !ok || !f.Matches(&doc) {
			continue
		}
		hits = append(hits, hit{doc: doc, score: h.Score})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].doc.CreatedAt().After(hits[j].doc.CreatedAt())
	})
	if len(hits) > req.Limit() {
		hits = hits[:req.Limit()]
	}

	out := make([]result.Result, len(hits))
	for i, h := range hits {
		score := 0.0
		if top := hits[0].score; top > 0 {
			score = h.score / top
		}
		out[i] = result.NewLexical(h.doc, i+1, score)
	}
	return out, nil
}

func project(d *domdoc.Document) bleveDoc {
	return bleveDoc{Title: d.Title(), Summary: d.Summary(), Body: d.Body()}
}
