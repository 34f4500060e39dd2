package document

import (
	"context"
	"sort"
	"testing"
	"time"

	domdoc "github.com/kailas-cloud/linkdex/internal/domain/document"
)

// mockStore is an in-memory implementation of the consumer interface.
type mockStore struct {
	hashes map[string]map[string]string
	zsets  map[string]map[string]float64

	hsetErr error
	zremErr error
	calls   []string
}

func newMockStore() *mockStore {
	return &mockStore{
		hashes: map[string]map[string]string{},
		zsets:  map[string]map[string]float64{},
	}
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	m.calls = append(m.calls, "HSET "+key)
	if m.hsetErr != nil {
		return m.hsetErr
	}
	h, ok := m.hashes[key]
	if !ok {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *mockStore) HDel(_ context.Context, key string, fields ...string) error {
	m.calls = append(m.calls, "HDEL "+key)
	for _, f := range fields {
		delete(m.hashes[key], f)
	}
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	h := m.hashes[key]
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i], _ = m.HGetAll(ctx, k)
	}
	return out, nil
}

func (m *mockStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.hashes[key]
	return ok, nil
}

func (m *mockStore) ZAdd(_ context.Context, key string, score float64, member string) error {
	z, ok := m.zsets[key]
	if !ok {
		z = map[string]float64{}
		m.zsets[key] = z
	}
	z[member] = score
	return nil
}

func (m *mockStore) ZRem(_ context.Context, key string, members ...string) error {
	m.calls = append(m.calls, "ZREM "+key)
	if m.zremErr != nil {
		return m.zremErr
	}
	for _, mem := range members {
		delete(m.zsets[key], mem)
	}
	return nil
}

func (m *mockStore) ZRange(_ context.Context, key string, start, stop int64, rev bool) ([]string, error) {
	z := m.zsets[key]
	members := make([]string, 0, len(z))
	for mem := range z {
		members = append(members, mem)
	}
	sort.Slice(members, func(i, j int) bool {
		if z[members[i]] != z[members[j]] {
			return z[members[i]] < z[members[j]]
		}
		return members[i] < members[j]
	})
	if rev {
		for i, j := 0, len(members)-1; i < j; i, j = i+1, j-1 {
			members[i], members[j] = members[j], members[i]
		}
	}
	n := int64(len(members))
	if stop < 0 {
		stop = n + stop
	}
	if stop >= n {
		stop = n - 1
	}
	if start >= n || start > stop {
		return []string{}, nil
	}
	return members[start : stop+1], nil
}

func (m *mockStore) ZCard(_ context.Context, key string) (int64, error) {
	return int64(len(m.zsets[key])), nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := newMockStore()
	return New(ms, "t:"), ms
}

func testDocument(t *testing.T, id, title string, created time.Time) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New(id, domdoc.Fields{
		URL:        "https://example.com/" + id,
		Title:      title,
		Summary:    "summary of " + title,
		Category:   "dev",
		SourceType: "article",
		Tags:       []string{"go"},
	}, created)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

func testVector(dim int) []float32 {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32(i) * 0.001
	}
	return vec
}
