package cost

import (
	"fmt"
	"time"
)

// RequestType classifies a metered model call.
type RequestType string

// Request type values.
const (
	RequestEmbedding       RequestType = "embedding"
	RequestEmbeddingBatch  RequestType = "embedding_batch"
	RequestSearchEmbedding RequestType = "search_embedding"
	RequestChat            RequestType = "chat"
)

// IsValid checks if the request type is one of the supported values.
func (t RequestType) IsValid() bool {
	switch t {
	case RequestEmbedding, RequestEmbeddingBatch, RequestSearchEmbedding, RequestChat:
		return true
	}
	return false
}

// Record is one append-only ledger entry for a metered model call.
// Records are never mutated after they are appended.
type Record struct {
	ID               string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CostUSD          float64
	RequestType      RequestType
	Success          bool
	ErrorMessage     string
	// DocumentID links single-document embeddings to their document, empty otherwise.
	DocumentID string
	CreatedAt  time.Time
}

// Validate checks the invariants every appended record must hold.
func (r *Record) Validate() error {
	if r.Model == "" {
		return fmt.Errorf("model is required")
	}
	if !r.RequestType.IsValid() {
		return fmt.Errorf("invalid request type %q", r.RequestType)
	}
	if r.PromptTokens < 0 || r.CompletionTokens < 0 || r.TotalTokens < 0 {
		return fmt.Errorf("token counts must be non-negative")
	}
	if r.CostUSD < 0 {
		return fmt.Errorf("cost must be non-negative")
	}
	if r.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	return nil
}
