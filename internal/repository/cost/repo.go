package cost

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/linkdex/internal/domain"
	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
)

// store is the consumer interface for the cost ledger (ISP).
type store interface {
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRange(ctx context.Context, key string, start, stop int64, rev bool) ([]string, error)
	ZRangeByScore(ctx context.Context, key string, minScore, maxScore float64) ([]string, error)
}

// Repo is an append-only cost ledger in a Redis sorted set.
// Members are JSON records scored by created_at (unix millis); nothing is ever removed.
type Repo struct {
	store store
	key   string
}

// New creates a cost repository. An empty prefix falls back to domain.KeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, key: prefix + "costs"}
}

// Append validates and stores a record. A missing ID is generated.
func (r *Repo) Append(ctx context.Context, rec domcost.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid cost record: %w", err)
	}
	data, err := json.Marshal(toDTO(&rec))
	if err != nil {
		return fmt.Errorf("marshal cost record: %w", err)
	}
	if err := r.store.ZAdd(ctx, r.key, float64(rec.CreatedAt.UnixMilli()), string(data)); err != nil {
		return fmt.Errorf("zadd %s: %w", r.key, err)
	}
	return nil
}

// Totals sums records created in [from, to).
func (r *Repo) Totals(ctx context.Context, from, to time.Time) (domcost.Totals, error) {
	records, err := r.between(ctx, from, to)
	if err != nil {
		return domcost.Totals{}, err
	}
	return sumRecords(records), nil
}

// Breakdown groups records created in [from, to) by model and request type.
func (r *Repo) Breakdown(ctx context.Context, from, to time.Time) ([]domcost.ModelBreakdown, error) {
	records, err := r.between(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return breakdownRecords(records), nil
}

// Recent returns the n newest records, newest first.
func (r *Repo) Recent(ctx context.Context, n int) ([]domcost.Record, error) {
	if n <= 0 {
		return []domcost.Record{}, nil
	}
	members, err := r.store.ZRange(ctx, r.key, 0, int64(n-1), true)
	if err != nil {
		return nil, fmt.Errorf("zrange %s: %w", r.key, err)
	}
	return decode(members)
}

func (r *Repo) between(ctx context.Context, from, to time.Time) ([]domcost.Record, error) {
	members, err := r.store.ZRangeByScore(ctx, r.key,
		float64(from.UnixMilli()), float64(to.UnixMilli()-1))
	if err != nil {
		return nil, fmt.Errorf("zrangebyscore %s: %w", r.key, err)
	}
	return decode(members)
}

func decode(members []string) ([]domcost.Record, error) {
	out := make([]domcost.Record, 0, len(members))
	for _, m := range members {
		var d recordDTO
		if err := json.Unmarshal([]byte(m), &d); err != nil {
			return nil, fmt.Errorf("unmarshal cost record: %w", err)
		}
		out = append(out, d.toDomain())
	}
	return out, nil
}
