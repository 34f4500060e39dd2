package cost

import "unicode/utf8"

// Pricing converts token usage into USD for one model.
type Pricing struct {
	Model                 string
	PricePerMillionTokens float64
}

// DefaultPricing is text-embedding-3-small at $0.02 per 1M tokens.
func DefaultPricing() Pricing {
	return Pricing{Model: "text-embedding-3-small", PricePerMillionTokens: 0.02}
}

// Cost returns the USD cost of the given token count.
func (p Pricing) Cost(tokens int) float64 {
	if tokens <= 0 {
		return 0
	}
	return float64(tokens) * p.PricePerMillionTokens / 1_000_000
}

// EstimateTokens approximates the billed tokens of texts at four characters per token.
func EstimateTokens(texts ...string) int {
	n := 0
	for _, t := range texts {
		n += (utf8.RuneCountInString(t) + 3) / 4
	}
	return n
}
