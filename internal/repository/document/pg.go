package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/kailas-cloud/linkdex/internal/db"
	"github.com/kailas-cloud/linkdex/internal/domain"
	domdoc "github.com/kailas-cloud/linkdex/internal/domain/document"
	"github.com/kailas-cloud/linkdex/internal/domain/search/filter"
)

// querier is the consumer interface over a pgx pool (ISP).
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const selectColumns = `id, url, title, summary, body, category, source_type, tags, archived,
	created_at, embedding, embedding_model`

// filterClause matches filter.Filter; empty strings and a NULL archived flag match all.
const filterClause = `($1 = '' OR category = $1)
	AND ($2 = '' OR source_type = $2)
	AND ($3::boolean IS NULL OR archived = $3)`

// PGRepo stores documents in the documents table with a pgvector column.
type PGRepo struct {
	db querier
}

// NewPG creates a Postgres document repository.
func NewPG(q querier) *PGRepo {
	return &PGRepo{db: q}
}

// Upsert creates or replaces a document and clears its vector. Returns true if created.
func (r *PGRepo) Upsert(ctx context.Context, doc *domdoc.Document) (bool, error) {
	const q = `INSERT INTO documents
		(id, url, title, summary, body, category, source_type, tags, archived, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			url = EXCLUDED.url, title = EXCLUDED.title, summary = EXCLUDED.summary,
			body = EXCLUDED.body, category = EXCLUDED.category,
			source_type = EXCLUDED.source_type, tags = EXCLUDED.tags,
			archived = EXCLUDED.archived, created_at = EXCLUDED.created_at,
			embedding = NULL, embedding_model = NULL
		RETURNING (xmax = 0)`

	var created bool
	err := r.db.QueryRow(ctx, q,
		doc.ID(), doc.URL(), doc.Title(), doc.Summary(), doc.Body(),
		doc.Category(), doc.SourceType(), nonNilTags(doc.Tags()), doc.Archived(), doc.CreatedAt(),
	).Scan(&created)
	if err != nil {
		return false, &db.Error{Op: db.OpExec, Err: fmt.Errorf("upsert document %s: %w", doc.ID(), err)}
	}
	return created, nil
}

// Get returns a document by ID.
func (r *PGRepo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	row := r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("get document %s: %w", id, err)}
	}
	return doc, nil
}

// List returns every document matching f, newest first.
func (r *PGRepo) List(ctx context.Context, f filter.Filter) ([]domdoc.Document, error) {
	q := `SELECT ` + selectColumns + ` FROM documents WHERE ` + filterClause +
		` ORDER BY created_at DESC, id`
	return r.query(ctx, q, filterArgs(f)...)
}

// ListEmbedded returns documents matching f that have a vector, newest first.
func (r *PGRepo) ListEmbedded(ctx context.Context, f filter.Filter) ([]domdoc.Document, error) {
	q := `SELECT ` + selectColumns + ` FROM documents WHERE ` + filterClause +
		` AND embedding IS NOT NULL ORDER BY created_at DESC, id`
	return r.query(ctx, q, filterArgs(f)...)
}

// SearchText returns up to limit documents matching f whose title, summary or body
// contains query case-insensitively, newest first.
func (r *PGRepo) SearchText(ctx context.Context, query string, f filter.Filter, limit int) ([]domdoc.Document, error) {
	q := `SELECT ` + selectColumns + ` FROM documents WHERE ` + filterClause +
		` AND (title ILIKE $4 OR summary ILIKE $4 OR body ILIKE $4)
		ORDER BY created_at DESC, id LIMIT $5`
	args := append(filterArgs(f), "%"+escapeLike(query)+"%", limit)
	return r.query(ctx, q, args...)
}

// ListUnembedded returns up to limit documents without a vector, oldest first.
func (r *PGRepo) ListUnembedded(ctx context.Context, limit, offset int) ([]domdoc.Document, error) {
	q := `SELECT ` + selectColumns + ` FROM documents WHERE embedding IS NULL
		ORDER BY created_at, id LIMIT $1 OFFSET $2`
	return r.query(ctx, q, limit, offset)
}

// CountUnembedded returns the number of documents without a vector.
func (r *PGRepo) CountUnembedded(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM documents WHERE embedding IS NULL`).Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("count unembedded: %w", err)}
	}
	return n, nil
}

// SetVector attaches an embedding to an existing document.
func (r *PGRepo) SetVector(ctx context.Context, id string, vec []float32, model string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE documents SET embedding = $2, embedding_model = $3 WHERE id = $1`,
		id, pgvector.NewVector(vec), model,
	)
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("set vector %s: %w", id, err)}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *PGRepo) query(ctx context.Context, q string, args ...any) ([]domdoc.Document, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	var docs []domdoc.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("scan document: %w", err)}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return docs, nil
}

func scanDocument(row pgx.Row) (domdoc.Document, error) {
	var (
		id        string
		f         domdoc.Fields
		createdAt time.Time
		emb       *pgvector.Vector
		model     *string
	)
	err := row.Scan(&id, &f.URL, &f.Title, &f.Summary, &f.Body, &f.Category, &f.SourceType,
		&f.Tags, &f.Archived, &createdAt, &emb, &model)
	if err != nil {
		return domdoc.Document{}, err
	}

	var vec []float32
	if emb != nil {
		vec = emb.Slice()
	}
	var m string
	if model != nil {
		m = *model
	}
	return domdoc.Reconstruct(id, f, createdAt.UTC(), vec, m), nil
}

func filterArgs(f filter.Filter) []any {
	var archived *bool
	if a := f.Archived(); a != nil {
		v := *a
		archived = &v
	}
	return []any{f.Category(), f.SourceType(), archived}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards so the query matches as a literal substring.
func escapeLike(s string) string { return likeEscaper.Replace(s) }
