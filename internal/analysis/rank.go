package analysis

import (
	"sort"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
)

type RankedPortfolio struct {
	Name string `json:"name"`
	Rank int    `json:"rank"`
	Summary
}

// RankPortfolios summarizes each portfolio and sorts by median XIRR,
// descending. Ties go to the lower mean volatility, then the name.
func RankPortfolios(byName map[string][]model.WindowResult) []RankedPortfolio {
	out := make([]RankedPortfolio, 0, len(byName))
	for name, results := range byName {
		out = append(out, RankedPortfolio{Name: name, Summary: Summarize(results)})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.MedianXIRR != b.MedianXIRR {
			return a.MedianXIRR > b.MedianXIRR
		}
		if a.MeanVolatility != b.MeanVolatility {
			return a.MeanVolatility < b.MeanVolatility
		}
		return a.Name < b.Name
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
