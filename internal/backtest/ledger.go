package backtest

import (
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
)

// Run is the outcome of a rolling simulation over every anchor date of the
// base instrument. Results are ordered by anchor date, ascending.
type Run struct {
	Mode      model.Mode     `json:"mode"`
	Exec      model.ExecMode `json:"exec"`
	FirstDate time.Time      `json:"first_date"`
	LastDate  time.Time      `json:"last_date"`

	Results []model.WindowResult `json:"results"`
	Metrics model.Metrics        `json:"metrics"`
}

// Anchors returns the anchor date of every computed window.
func (r *Run) Anchors() []time.Time {
	out := make([]time.Time, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.Anchor
	}
	return out
}

// Find returns the window ending on anchor, if it was computed.
func (r *Run) Find(anchor time.Time) (*model.WindowResult, bool) {
	anchor = model.Day(anchor)
	for i := range r.Results {
		if r.Results[i].Anchor.Equal(anchor) {
			return &r.Results[i], true
		}
	}
	return nil, false
}
