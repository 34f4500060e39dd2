package cost

import (
	"sort"

	domcost "github.com/kailas-cloud/linkdex/internal/domain/cost"
)

func sumRecords(records []domcost.Record) domcost.Totals {
	var t domcost.Totals
	for i := range records {
		t.CostUSD += records[i].CostUSD
		t.Tokens += records[i].TotalTokens
		t.Requests++
	}
	return t
}

// breakdownRecords groups by (model, request type), highest cost first.
func breakdownRecords(records []domcost.Record) []domcost.ModelBreakdown {
	type groupKey struct {
		model string
		typ   domcost.RequestType
	}
	groups := make(map[groupKey]*domcost.ModelBreakdown)
	for i := range records {
		r := &records[i]
		k := groupKey{r.Model, r.RequestType}
		g, ok := groups[k]
		if !ok {
			g = &domcost.ModelBreakdown{Model: r.Model, RequestType: r.RequestType}
			groups[k] = g
		}
		g.Requests++
		g.Tokens += r.TotalTokens
		g.CostUSD += r.CostUSD
	}

	out := make([]domcost.ModelBreakdown, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CostUSD != out[j].CostUSD {
			return out[i].CostUSD > out[j].CostUSD
		}
		if out[i].Model != out[j].Model {
			return out[i].Model < out[j].Model
		}
		return out[i].RequestType < out[j].RequestType
	})
	return out
}
