package cost

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kailas-cloud/linkdex/internal/db"
	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
)

// querier is the consumer interface over a pgx pool (ISP).
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGRepo is an append-only cost ledger in the cost_records table.
// It only ever issues INSERT and SELECT statements.
type PGRepo struct {
	db querier
}

// NewPG creates a Postgres cost repository.
func NewPG(q querier) *PGRepo {
	return &PGRepo{db: q}
}

// Append validates and inserts a record. A missing ID is generated.
func (r *PGRepo) Append(ctx context.Context, rec domcost.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid cost record: %w", err)
	}
	_, err := r.db.Exec(ctx, `INSERT INTO cost_records
		(id, model, prompt_tokens, completion_tokens, total_tokens, cost_usd,
		 request_type, success, error_message, document_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, rec.Model, rec.PromptTokens, rec.CompletionTokens, rec.TotalTokens, rec.CostUSD,
		string(rec.RequestType), rec.Success, rec.ErrorMessage, rec.DocumentID, rec.CreatedAt,
	)
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: fmt.Errorf("insert cost record: %w", err)}
	}
	return nil
}

// Totals sums records created in [from, to).
func (r *PGRepo) Totals(ctx context.Context, from, to time.Time) (domcost.Totals, error) {
	var t domcost.Totals
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(cost_usd), 0), COUNT(*), COALESCE(SUM(total_tokens), 0)
		FROM cost_records WHERE created_at >= $1 AND created_at < $2`, from, to,
	).Scan(&t.CostUSD, &t.Requests, &t.Tokens)
	if err != nil {
		return domcost.Totals{}, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("sum cost records: %w", err)}
	}
	return t, nil
}

// Breakdown groups records created in [from, to) by model and request type.
func (r *PGRepo) Breakdown(ctx context.Context, from, to time.Time) ([]domcost.ModelBreakdown, error) {
	rows, err := r.db.Query(ctx, `SELECT model, request_type, COUNT(*), COALESCE(SUM(total_tokens), 0),
			COALESCE(SUM(cost_usd), 0)
		FROM cost_records WHERE created_at >= $1 AND created_at < $2
		GROUP BY model, request_type
		ORDER BY 5 DESC, model, request_type`, from, to)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	out := []domcost.ModelBreakdown{}
	for rows.Next() {
		var b domcost.ModelBreakdown
		var typ string
		if err := rows.Scan(&b.Model, &typ, &b.Requests, &b.Tokens, &b.CostUSD); err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("scan breakdown: %w", err)}
		}
		b.RequestType = domcost.RequestType(typ)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return out, nil
}

// Recent returns the n newest records, newest first.
func (r *PGRepo) Recent(ctx context.Context, n int) ([]domcost.Record, error) {
	rows, err := r.db.Query(ctx, `SELECT id::text, model, prompt_tokens, completion_tokens, total_tokens,
			cost_usd, request_type, success, error_message, document_id, created_at
		FROM cost_records ORDER BY created_at DESC, id LIMIT $1`, n)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer rows.Close()

	out := []domcost.Record{}
	for rows.Next() {
		var rec domcost.Record
		var typ string
		if err := rows.Scan(&rec.ID, &rec.Model, &rec.PromptTokens, &rec.CompletionTokens, &rec.TotalTokens,
			&rec.CostUSD, &typ, &rec.Success, &rec.ErrorMessage, &rec.DocumentID, &rec.CreatedAt); err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("scan cost record: %w", err)}
		}
		rec.RequestType = domcost.RequestType(typ)
		rec.CreatedAt = rec.CreatedAt.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return out, nil
}
