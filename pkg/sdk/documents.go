package linkdex

import (
	"context"
	"fmt"
	"time"

	domdoc "github.com/kailas-cloud/linkdex/internal/domain/document"
	"github.com/kailas-cloud/linkdex/internal/domain/search/filter"
)

// DocumentService stores and reads saved URLs.
type DocumentService struct {
	svc documentUseCase
	obs *observer
}

// Upsert creates or replaces a document and queues it for embedding.
// Returns true if created.
func (s *DocumentService) Upsert(ctx context.Context, doc Document) (created bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_upsert", start, err) }()

	_, created, err = s.svc.Upsert(ctx, doc.ID, toInternalFields(doc))
	if err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}
	return created, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (doc Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_get", start, err) }()

	d, err := s.svc.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(&d), nil
}

// List returns one page of documents, newest first.
// A zero limit uses the default page size.
func (s *DocumentService) List(ctx context.Context, f Filter, limit, offset int) (res ListResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_list", start, err) }()

	flt, err := toInternalFilter(f)
	if err != nil {
		return ListResult{}, fmt.Errorf("list documents: %w", err)
	}
	page, err := s.svc.List(ctx, flt, limit, offset)
	if err != nil {
		return ListResult{}, fmt.Errorf("list documents: %w", err)
	}
	out := make([]Document, len(page.Documents))
	for i := range page.Documents {
		out[i] = fromInternalDocument(&page.Documents[i])
	}
	return ListResult{Documents: out, Total: page.Total, Pending: page.Pending}, nil
}

func toInternalFields(d Document) domdoc.Fields {
	return domdoc.Fields{
		URL:        d.URL,
		Title:      d.Title,
		Summary:    d.Summary,
		Body:       d.Body,
		Category:   d.Category,
		SourceType: d.SourceType,
		Tags:       d.Tags,
		Archived:   d.Archived,
	}
}

func fromInternalDocument(d *domdoc.Document) Document {
	return Document{
		ID:           d.ID(),
		URL:          d.URL(),
		Title:        d.Title(),
		Summary:      d.Summary(),
		Body:         d.Body(),
		Category:     d.Category(),
		SourceType:   d.SourceType(),
		Tags:         d.Tags(),
		Archived:     d.Archived(),
		CreatedAt:    d.CreatedAt(),
		HasEmbedding: d.HasVector(),
	}
}

func toInternalFilter(f Filter) (filter.Filter, error) {
	flt, err := filter.New(f.Category, f.SourceType, f.Archived)
	if err != nil {
		return filter.Filter{}, fmt.Errorf("filter: %w", err)
	}
	return flt, nil
}
