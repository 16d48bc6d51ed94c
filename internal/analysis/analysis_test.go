package analysis

import (
	"testing"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func windows(xirrs ...float64) []model.WindowResult {
	out := make([]model.WindowResult, len(xirrs))
	for i, x := range xirrs {
		vol := float64(10 + i)
		out[i] = model.WindowResult{
			Anchor:            time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
			XIRR:              x,
			VolatilityPercent: &vol,
		}
	}
	return out
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize(windows(0.10, -0.05, 0.20, 0.15, 0.00))
	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, -5, s.MinXIRR, 1e-9)
	assert.InDelta(t, 20, s.MaxXIRR, 1e-9)
	assert.InDelta(t, 8, s.MeanXIRR, 1e-9)
	assert.InDelta(t, 10, s.MedianXIRR, 1e-9)
	assert.InDelta(t, 0, s.P25XIRR, 1e-9)
	assert.InDelta(t, 15, s.P75XIRR, 1e-9)
	assert.InDelta(t, -4, s.P05XIRR, 1e-9)
	assert.InDelta(t, 19, s.P95XIRR, 1e-9)
	assert.InDelta(t, 0.2, s.NegativeShare, 1e-12)
	assert.InDelta(t, 12, s.MeanVolatility, 1e-12)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), s.BestAnchor)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), s.WorstAnchor)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), s.FirstAnchor)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), s.LastAnchor)
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestRankPortfolios(t *testing.T) {
	t.Parallel()

	ranked := RankPortfolios(map[string][]model.WindowResult{
		"debt":     windows(0.06, 0.07, 0.065),
		"equity":   windows(0.12, -0.02, 0.15),
		"balanced": windows(0.09, 0.08, 0.10),
		"twin":     windows(0.06, 0.07, 0.065),
	})
	require.Len(t, ranked, 4)
	assert.Equal(t, "equity", ranked[0].Name)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "balanced", ranked[1].Name)
	// Equal medians and volatility fall back to the name.
	assert.Equal(t, "debt", ranked[2].Name)
	assert.Equal(t, "twin", ranked[3].Name)
	assert.Equal(t, 4, ranked[3].Rank)
}
