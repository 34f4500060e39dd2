package result

import "github.com/kailas-cloud/linkdex/internal/domain/document"

// Result is a single ranked search hit with per-branch scores.
type Result struct {
	doc           document.Document
	lexicalRank   int
	lexicalScore  float64
	semanticScore float64
	hasSemantic   bool
	rrfScore      float64
	fusedScore    float64
}

// NewLexical creates a lexical hit at 1-based rank with a normalized [0,1] score.
func NewLexical(doc document.Document, rank int, score float64) Result {
	return Result{doc: doc, lexicalRank: rank, lexicalScore: score}
}

// NewSemantic creates a semantic hit with its cosine similarity.
func NewSemantic(doc document.Document, similarity float64) Result {
	return Result{doc: doc, semanticScore: similarity, hasSemantic: true}
}

// WithSemantic returns a copy carrying the given cosine similarity.
func (r Result) WithSemantic(similarity float64) Result {
	r.semanticScore = similarity
	r.hasSemantic = true
	return r
}

// WithFusion returns a copy carrying the RRF sum and the weighted fused score.
func (r Result) WithFusion(rrf, fused float64) Result {
	r.rrfScore = rrf
	r.fusedScore = fused
	return r
}

// ID returns the document identifier.
func (r *Result) ID() string { return r.doc.ID() }

// Document returns the matched document.
func (r *Result) Document() *document.Document { return &r.doc }

// LexicalRank returns the 1-based lexical position and whether the lexical branch matched.
func (r *Result) LexicalRank() (int, bool) { return r.lexicalRank, r.lexicalRank > 0 }

// LexicalScore returns the normalized lexical rank proxy in [0,1].
func (r *Result) LexicalScore() float64 { return r.lexicalScore }

// SemanticScore returns the cosine similarity and whether the semantic branch matched.
func (r *Result) SemanticScore() (float64, bool) { return r.semanticScore, r.hasSemantic }

// RRFScore returns the unweighted sum of per-branch RRF contributions.
func (r *Result) RRFScore() float64 { return r.rrfScore }

// FusedScore returns the weighted RRF score used for hybrid ordering.
func (r *Result) FusedScore() float64 { return r.fusedScore }
