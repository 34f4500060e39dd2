package cost

import (
	"time"

	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
)

// recordDTO is the JSON member stored in the cost sorted set.
type recordDTO struct {
	ID               string  `json:"id"`
	Model            string  `json:"model"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`
	RequestType      string  `json:"request_type"`
	Success          bool    `json:"success"`
	ErrorMessage     string  `json:"error_message,omitempty"`
	DocumentID       string  `json:"document_id,omitempty"`
	CreatedAtMs      int64   `json:"created_at"`
}

func toDTO(r *domcost.Record) recordDTO {
	return recordDTO{
		ID:               r.ID,
		Model:            r.Model,
		PromptTokens:     r.PromptTokens,
		CompletionTokens: r.CompletionTokens,
		TotalTokens:      r.TotalTokens,
		CostUSD:          r.CostUSD,
		RequestType:      string(r.RequestType),
		Success:          r.Success,
		ErrorMessage:     r.ErrorMessage,
		DocumentID:       r.DocumentID,
		CreatedAtMs:      r.CreatedAt.UnixMilli(),
	}
}

func (d recordDTO) toDomain() domcost.Record {
	return domcost.Record{
		ID:               d.ID,
		Model:            d.Model,
		PromptTokens:     d.PromptTokens,
		CompletionTokens: d.CompletionTokens,
		TotalTokens:      d.TotalTokens,
		CostUSD:          d.CostUSD,
		RequestType:      domcost.RequestType(d.RequestType),
		Success:          d.Success,
		ErrorMessage:     d.ErrorMessage,
		DocumentID:       d.DocumentID,
		CreatedAt:        time.UnixMilli(d.CreatedAtMs).UTC(),
	}
}
