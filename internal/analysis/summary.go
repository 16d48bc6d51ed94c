// Package analysis condenses rolling-window results into distribution
// statistics.
package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
)

// Summary describes the spread of returns across every rolling window of a
// portfolio. Returns are in percent.
type Summary struct {
	Count int `json:"count"`

	FirstAnchor time.Time `json:"first_anchor"`
	LastAnchor  time.Time `json:"last_anchor"`

	MinXIRR    float64 `json:"min_xirr"`
	MaxXIRR    float64 `json:"max_xirr"`
	MeanXIRR   float64 `json:"mean_xirr"`
	MedianXIRR float64 `json:"median_xirr"`
	P05XIRR    float64 `json:"p05_xirr"`
	P25XIRR    float64 `json:"p25_xirr"`
	P75XIRR    float64 `json:"p75_xirr"`
	P95XIRR    float64 `json:"p95_xirr"`

	// NegativeShare is the fraction of windows that lost money, 0..1.
	NegativeShare float64 `json:"negative_share"`

	MeanVolatility float64 `json:"mean_volatility"`

	BestAnchor  time.Time `json:"best_anchor"`
	WorstAnchor time.Time `json:"worst_anchor"`
}

// Summarize computes a Summary; the zero Summary for no results.
func Summarize(results []model.WindowResult) Summary {
	s := Summary{}
	if len(results) == 0 {
		return s
	}
	s.Count = len(results)
	s.FirstAnchor = results[0].Anchor
	s.LastAnchor = results[len(results)-1].Anchor

	sum, volSum := 0.0, 0.0
	volCount, negative := 0, 0
	minv, maxv := math.Inf(1), math.Inf(-1)
	vals := make([]float64, 0, len(results))
	for _, r := range results {
		v := r.XIRR * 100
		vals = append(vals, v)
		sum += v
		if v < minv {
			minv = v
			s.WorstAnchor = r.Anchor
		}
		if v > maxv {
			maxv = v
			s.BestAnchor = r.Anchor
		}
		if v < 0 {
			negative++
		}
		if r.VolatilityPercent != nil {
			volSum += *r.VolatilityPercent
			volCount++
		}
		if r.Anchor.Before(s.FirstAnchor) {
			s.FirstAnchor = r.Anchor
		}
		if r.Anchor.After(s.LastAnchor) {
			s.LastAnchor = r.Anchor
		}
	}
	sort.Float64s(vals)

	s.MinXIRR = minv
	s.MaxXIRR = maxv
	s.MeanXIRR = sum / float64(len(vals))
	s.MedianXIRR = percentileSorted(vals, 0.50)
	s.P05XIRR = percentileSorted(vals, 0.05)
	s.P25XIRR = percentileSorted(vals, 0.25)
	s.P75XIRR = percentileSorted(vals, 0.75)
	s.P95XIRR = percentileSorted(vals, 0.95)
	s.NegativeShare = float64(negative) / float64(len(vals))
	if volCount > 0 {
		s.MeanVolatility = volSum / float64(volCount)
	}
	return s
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
