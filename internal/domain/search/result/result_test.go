package result

import (
	"testing"
	"time"

	"github.com/kailas-cloud/linkdex/internal/domain/document"
)

func testDoc() document.Document {
	return document.Reconstruct("doc-1", document.Fields{URL: "https://x", Title: "t"}, time.Now(), nil, "")
}

func TestNewLexical(t *testing.T) {
	r := NewLexical(testDoc(), 2, 0.5)
	if r.ID() != "doc-1" {
		t.Errorf("ID() = %q", r.ID())
	}
	if rank, ok := r.LexicalRank(); !ok || rank != 2 {
		t.Errorf("LexicalRank() = %d, %v", rank, ok)
	}
	if _, ok := r.SemanticScore(); ok {
		t.Error("lexical hit must not carry a semantic score")
	}
}

func TestNewSemantic(t *testing.T) {
	r := NewSemantic(testDoc(), 0.82)
	if s, ok := r.SemanticScore(); !ok || s != 0.82 {
		t.Errorf("SemanticScore() = %f, %v", s, ok)
	}
	if _, ok := r.LexicalRank(); ok {
		t.Error("semantic hit must not carry a lexical rank")
	}
}

func TestWithSemanticAndFusion(t *testing.T) {
	base := NewLexical(testDoc(), 1, 1)
	r := base.WithSemantic(0.9).WithFusion(0.03, 0.016)

	if s, ok := r.SemanticScore(); !ok || s != 0.9 {
		t.Errorf("SemanticScore() = %f, %v", s, ok)
	}
	if r.RRFScore() != 0.03 || r.FusedScore() != 0.016 {
		t.Errorf("scores = %f/%f", r.RRFScore(), r.FusedScore())
	}
	if _, ok := base.SemanticScore(); ok {
		t.Error("WithSemantic must not mutate the receiver")
	}
}
