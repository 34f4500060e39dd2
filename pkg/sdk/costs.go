package linkdex

import (
	"context"
	"fmt"
	"time"

	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
)

// Costs reports embedding spend against the daily and monthly caps.
func (c *Client) Costs(ctx context.Context) (summary CostSummary, err error) {
	start := time.Now()
	defer func() { c.obs.observe("costs", start, err) }()

	s, err := c.costSvc.Summary(ctx, 0)
	if err != nil {
		return CostSummary{}, fmt.Errorf("costs: %w", err)
	}

	byModel := make([]ModelSpend, len(s.ByModel))
	for i, m := range s.ByModel {
		byModel[i] = ModelSpend{
			Model:       m.Model,
			RequestType: string(m.RequestType),
			Requests:    m.Requests,
			Tokens:      m.Tokens,
			CostUSD:     m.CostUSD,
		}
	}
	return CostSummary{
		Daily:      fromPeriodSpend(s.Daily),
		Monthly:    fromPeriodSpend(s.Monthly),
		ByModel:    byModel,
		CanProcess: s.CanProcess,
	}, nil
}

func fromPeriodSpend(p domcost.PeriodSpend) PeriodSpend {
	return PeriodSpend{
		Start:        p.Start,
		CostUSD:      p.Totals.CostUSD,
		Requests:     p.Totals.Requests,
		LimitUSD:     p.LimitUSD,
		RemainingUSD: p.RemainingUSD,
		PercentUsed:  p.PercentUsed,
	}
}
