package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/linkdex/internal/domain"
	domdoc "github.com/kailas-cloud/linkdex/internal/domain/document"
	"github.com/kailas-cloud/linkdex/internal/domain/search/filter"
)

// Service handles document intake. Vectors are produced later by backfill.
type Service struct {
	repo            Repository
	indexers        []Indexer
	logger          *zap.Logger
	now             func() time.Time
	defaultPageSize int
	maxPageSize     int
}

// New creates a document service. Indexers are notified after each upsert.
func New(repo Repository, logger *zap.Logger, indexers ...Indexer) *Service {
	return &Service{
		repo:            repo,
		indexers:        indexers,
		logger:          logger,
		now:             time.Now,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Upsert creates or replaces a document without a vector, queueing it for backfill.
// An existing document keeps its original createdAt.
// Returns true if the document was created.
func (s *Service) Upsert(ctx context.Context, id string, f domdoc.Fields) (domdoc.Document, bool, error) {
	createdAt := s.now()
	existing, err := s.repo.Get(ctx, id)
	switch {
	case err == nil:
		createdAt = existing.CreatedAt()
	case !errors.Is(err, domain.ErrDocumentNotFound):
		return domdoc.Document{}, false, fmt.Errorf("get document: %w", err)
	}

	doc, err := domdoc.New(id, f, createdAt)
	if err != nil {
		return domdoc.Document{}, false, fmt.Errorf("%w: %v", domain.ErrDocumentInvalid, err)
	}

	created, err := s.repo.Upsert(ctx, &doc)
	if err != nil {
		return domdoc.Document{}, false, fmt.Errorf("upsert document: %w", err)
	}

	for _, ix := range s.indexers {
		if err := ix.Index(doc); err != nil {
			s.logger.Warn("Failed to index document",
				zap.String("document_id", doc.ID()),
				zap.Error(err),
			)
		}
	}
	return doc, created, nil
}

// Get retrieves a document by ID.
func (s *Service) Get(ctx context.Context, id string) (domdoc.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Page is one slice of a filtered document listing.
type Page struct {
	Documents []domdoc.Document
	Total     int
	Pending   int
}

// List returns documents matching f, newest first, paginated by limit and offset.
func (s *Service) List(ctx context.Context, f filter.Filter, limit, offset int) (Page, error) {
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	if offset < 0 {
		return Page{}, domain.InvalidRequestf("offset must be non-negative")
	}

	docs, err := s.repo.List(ctx, f)
	if err != nil {
		return Page{}, fmt.Errorf("list documents: %w", err)
	}
	pending, err := s.repo.CountUnembedded(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("count pending: %w", err)
	}

	page := Page{Total: len(docs), Pending: pending}
	if offset < len(docs) {
		end := offset + limit
		if end > len(docs) {
			end = len(docs)
		}
		page.Documents = docs[offset:end]
	}
	return page, nil
}
