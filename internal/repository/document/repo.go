package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/linkdex/internal/domain"
	domdoc "github.com/kailas-cloud/linkdex/internal/domain/document"
	"github.com/kailas-cloud/linkdex/internal/domain/search/filter"
	"github.com/kailas-cloud/linkdex/internal/domain/vector"
)

// fetchChunk bounds the number of HGETALLs per pipelined round-trip.
const fetchChunk = 256

// store is the consumer interface for documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HDel(ctx context.Context, key string, fields ...string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRange(ctx context.Context, key string, start, stop int64, rev bool) ([]string, error)
	ZCard(ctx context.Context, key string) (int64, error)
}

// Repo stores documents as Redis hashes.
//
// Layout: {prefix}doc:{id} holds the fields, {prefix}docs orders every id by
// created_at, {prefix}docs:pending orders ids that still need a vector.
type Repo struct {
	store  store
	prefix string
}

// New creates a document repository. An empty prefix falls back to domain.KeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Upsert creates or replaces a document and queues it for embedding.
// Any previous vector is dropped since it no longer describes the content.
// Returns true if created.
func (r *Repo) Upsert(ctx context.Context, doc *domdoc.Document) (bool, error) {
	key := r.docKey(doc.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}
	if exists {
		if err := r.store.HDel(ctx, key, fieldVector, fieldVectorModel); err != nil {
			return false, fmt.Errorf("hdel vector %s: %w", key, err)
		}
	}
	if err := r.store.HSet(ctx, key, buildHashFields(doc)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}

	score := float64(doc.CreatedAt().UnixMilli())
	if err := r.store.ZAdd(ctx, r.allKey(), score, doc.ID()); err != nil {
		return false, fmt.Errorf("zadd %s: %w", r.allKey(), err)
	}
	if err := r.store.ZAdd(ctx, r.pendingKey(), score, doc.ID()); err != nil {
		return false, fmt.Errorf("zadd %s: %w", r.pendingKey(), err)
	}
	return !exists, nil
}

// Get returns a document by ID.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	key := r.docKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return parseHashFields(id, m), nil
}

// List returns every document matching f, newest first.
func (r *Repo) List(ctx context.Context, f filter.Filter) ([]domdoc.Document, error) {
	ids, err := r.store.ZRange(ctx, r.allKey(), 0, -1, true)
	if err != nil {
		return nil, fmt.Errorf("zrange %s: %w", r.allKey(), err)
	}
	docs, _, err := r.fetch(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := docs[:0]
	for i := range docs {
		if f.Matches(&docs[i]) {
			out = append(out, docs[i])
		}
	}
	return out, nil
}

// ListEmbedded returns documents matching f that have a vector, newest first.
func (r *Repo) ListEmbedded(ctx context.Context, f filter.Filter) ([]domdoc.Document, error) {
	docs, err := r.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := docs[:0]
	for i := range docs {
		if docs[i].HasVector() {
			out = append(out, docs[i])
		}
	}
	return out, nil
}

// SearchText returns up to limit documents matching f whose title, summary or body
// contains query case-insensitively, newest first.
func (r *Repo) SearchText(ctx context.Context, query string, f filter.Filter, limit int) ([]domdoc.Document, error) {
	docs, err := r.List(ctx, f)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := make([]domdoc.Document, 0, limit)
	for i := range docs {
		if len(out) == limit {
			break
		}
		if docs[i].ContainsText(q) {
			out = append(out, docs[i])
		}
	}
	return out, nil
}

// ListUnembedded returns up to limit documents without a vector, oldest first,
// skipping the first offset queued ids.
func (r *Repo) ListUnembedded(ctx context.Context, limit, offset int) ([]domdoc.Document, error) {
	if limit <= 0 {
		return nil, nil
	}
	ids, err := r.store.ZRange(ctx, r.pendingKey(), int64(offset), int64(offset+limit-1), false)
	if err != nil {
		return nil, fmt.Errorf("zrange %s: %w", r.pendingKey(), err)
	}
	docs, stale, err := r.fetch(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := docs[:0]
	for i := range docs {
		if docs[i].HasVector() {
			stale = append(stale, docs[i].ID())
			continue
		}
		out = append(out, docs[i])
	}
	// Queue entries for deleted or already embedded documents are dropped lazily.
	if len(stale) > 0 {
		if err := r.store.ZRem(ctx, r.pendingKey(), stale...); err != nil {
			return nil, fmt.Errorf("zrem stale %s: %w", r.pendingKey(), err)
		}
	}
	return out, nil
}

// CountUnembedded returns the number of documents queued for embedding.
func (r *Repo) CountUnembedded(ctx context.Context) (int, error) {
	n, err := r.store.ZCard(ctx, r.pendingKey())
	if err != nil {
		return 0, fmt.Errorf("zcard %s: %w", r.pendingKey(), err)
	}
	return int(n), nil
}

// SetVector attaches an embedding to an existing document and dequeues it.
func (r *Repo) SetVector(ctx context.Context, id string, vec []float32, model string) error {
	key := r.docKey(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}

	fields := map[string]string{
		fieldVector:      string(vector.Encode(vec)),
		fieldVectorModel: model,
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset vector %s: %w", key, err)
	}
	if err := r.store.ZRem(ctx, r.pendingKey(), id); err != nil {
		return fmt.Errorf("zrem %s: %w", r.pendingKey(), err)
	}
	return nil
}

// fetch hydrates ids in pipelined chunks, preserving order.
// Ids whose hash is gone are returned as missing.
func (r *Repo) fetch(ctx context.Context, ids []string) ([]domdoc.Document, []string, error) {
	docs := make([]domdoc.Document, 0, len(ids))
	var missing []string

	for start := 0; start < len(ids); start += fetchChunk {
		end := min(start+fetchChunk, len(ids))
		chunk := ids[start:end]

		keys := make([]string, len(chunk))
		for i, id := range chunk {
			keys[i] = r.docKey(id)
		}
		maps, err := r.store.HGetAllMulti(ctx, keys)
		if err != nil {
			return nil, nil, fmt.Errorf("hgetall multi: %w", err)
		}
		for i, m := range maps {
			if len(m) == 0 {
				missing = append(missing, chunk[i])
				continue
			}
			docs = append(docs, parseHashFields(chunk[i], m))
		}
	}
	return docs, missing, nil
}

func (r *Repo) docKey(id string) string { return r.prefix + "doc:" + id }
func (r *Repo) allKey() string          { return r.prefix + "docs" }
func (r *Repo) pendingKey() string      { return r.prefix + "docs:pending" }
