package search

import (
	"sort"

	"github.com/kailas-cloud/linkdex/internal/domain/search/result"
)

// Weights are the per-branch multipliers applied to RRF contributions.
type Weights struct {
	Lexical  float64
	Semantic float64
}

// FuseRRF merges lexical and semantic rankings via weighted Reciprocal Rank Fusion.
// A document at 1-based rank r contributes 1/(k+r) per branch; rrfScore is the plain
// sum and fusedScore = w.Lexical*rrfLex + w.Semantic*rrfSem.
// Ordering is fused desc, then rrf desc, createdAt desc and id asc, so equal inputs
// always produce the same output.
func FuseRRF(lexical, semantic []result.Result, k int, w Weights, limit int) []result.Result {
	type scored struct {
		res    result.Result
		rrfLex float64
		rrfSem float64
	}

	merged := make(map[string]*scored, len(lexical)+len(semantic))
	order := make([]string, 0, len(lexical)+len(semantic))

	for i, r := range lexical {
		id := r.ID()
		if _, dup := merged[id]; dup {
			continue
		}
		merged[id] = &scored{res: r, rrfLex: 1.0 / float64(k+i+1)}
		order = append(order, id)
	}

	for i, r := range semantic {
		id := r.ID()
		sim, _ := r.SemanticScore()
		contrib := 1.0 / float64(k+i+1)
		if existing, ok := merged[id]; ok {
			if existing.rrfSem == 0 {
				existing.rrfSem = contrib
				existing.res = existing.res.WithSemantic(sim)
			}
			continue
		}
		merged[id] = &scored{res: r, rrfSem: contrib}
		order = append(order, id)
	}

	out := make([]result.Result, 0, len(order))
	for _, id := range order {
		s := merged[id]
		fused := w.Lexical*s.rrfLex + w.Semantic*s.rrfSem
		out = append(out, s.res.WithFusion(s.rrfLex+s.rrfSem, fused))
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if a.FusedScore() != b.FusedScore() {
			return a.FusedScore() > b.FusedScore()
		}
		if a.RRFScore() != b.RRFScore() {
			return a.RRFScore() > b.RRFScore()
		}
		ta, tb := a.Document().CreatedAt(), b.Document().CreatedAt()
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return a.ID() < b.ID()
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
