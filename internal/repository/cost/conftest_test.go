package cost

import (
	"context"
	"sort"
	"strconv"
	"time"

	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
)

// mockZSet is an in-memory sorted set implementing the consumer interface.
type mockZSet struct {
	members map[string]float64
	zaddErr error
}

func newMockZSet() *mockZSet { return &mockZSet{members: map[string]float64{}} }

func (m *mockZSet) ZAdd(_ context.Context, _ string, score float64, member string) error {
	if m.zaddErr != nil {
		return m.zaddErr
	}
	m.members[member] = score
	return nil
}

func (m *mockZSet) sorted() []string {
	out := make([]string, 0, len(m.members))
	for k := range m.members {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if m.members[out[i]] != m.members[out[j]] {
			return m.members[out[i]] < m.members[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

func (m *mockZSet) ZRange(_ context.Context, _ string, start, stop int64, rev bool) ([]string, error) {
	all := m.sorted()
	if rev {
		for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
			all[i], all[j] = all[j], all[i]
		}
	}
	n := int64(len(all))
	if stop < 0 || stop >= n {
		stop = n - 1
	}
	if start >= n || start > stop {
		return []string{}, nil
	}
	return all[start : stop+1], nil
}

func (m *mockZSet) ZRangeByScore(_ context.Context, _ string, minScore, maxScore float64) ([]string, error) {
	var out []string
	for _, k := range m.sorted() {
		if s := m.members[k]; s >= minScore && s <= maxScore {
			out = append(out, k)
		}
	}
	return out, nil
}

var seq int

func rec(costUSD float64, typ domcost.RequestType, at time.Time) domcost.Record {
	seq++
	return domcost.Record{
		ID:          "r" + strconv.Itoa(seq),
		Model:       "text-embedding-3-small",
		TotalTokens: int(costUSD * 50_000_000),
		CostUSD:     costUSD,
		RequestType: typ,
		Success:     true,
		CreatedAt:   at,
	}
}
