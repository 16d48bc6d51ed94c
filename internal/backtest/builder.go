package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/returns"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/series"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/strategy"
)

const (
	// Adjustment legs smaller than this are not worth a transaction.
	adjustmentMateriality = 0.01
	// Drift must exceed the threshold by more than float noise.
	driftEpsilon = 1e-9
)

// windowRun is everything one window computation produces before returns
// and volatility are derived from it.
type windowRun struct {
	Ledger     []model.LedgerEntry
	Valuations []returns.Valuation
	Invested   float64
	FinalValue float64
}

// builder replays one window day by day. It owns its state; nothing in it
// is shared with other windows.
type builder struct {
	prices []series.Series
	cfg    model.SimulationConfig
	window strategy.Window
	glide  strategy.GlidePath
	marks  bool

	state  *model.SimulationState
	ledger []model.LedgerEntry
	px     []float64
}

// buildWindow walks every calendar day in [window.Start, window.Anchor),
// applying contributions, glide-path adjustments and drift rebalances, then
// liquidates everything on the anchor. A valuation point is recorded for
// each day; mark entries only when recordMarks is set.
func buildWindow(prices []series.Series, cfg model.SimulationConfig, window strategy.Window, recordMarks bool) (windowRun, error) {
	b := &builder{
		prices: prices,
		cfg:    cfg,
		window: window,
		glide:  strategy.NewGlidePath(cfg, window.Start),
		marks:  recordMarks,
		state:  model.NewSimulationState(len(prices)),
		px:     make([]float64, len(prices)),
	}
	return b.run()
}

func (b *builder) run() (windowRun, error) {
	var out windowRun

	contributionDays := make(map[time.Time]bool, len(b.window.ContributionDates))
	for _, d := range b.window.ContributionDates {
		contributionDays[model.Day(d)] = true
	}
	first := model.Day(b.window.Start)
	anchor := model.Day(b.window.Anchor)

	days := model.DaysBetween(first, anchor)
	if days > 0 {
		out.Valuations = make([]returns.Valuation, 0, days)
	}

	for day := first; day.Before(anchor); day = day.AddDate(0, 0, 1) {
		if err := b.loadPrices(day); err != nil {
			return windowRun{}, err
		}

		cash := 0.0
		if contributionDays[day] {
			cash = b.contributionDay(day, first)
			out.Invested -= cash
		} else if b.marks {
			b.markAll(day, nil)
		}

		total, _ := b.state.Value(b.px)
		out.Valuations = append(out.Valuations, returns.Valuation{Date: day, Value: total, CashFlow: cash})
	}

	if err := b.loadPrices(anchor); err != nil {
		return windowRun{}, err
	}
	// Every instrument is liquidated, held or not, so each window ends with
	// one liquidate entry per instrument.
	for i, units := range b.state.Units {
		e := model.NewLiquidation(i, anchor, b.px[i], units)
		b.ledger = append(b.ledger, e)
		out.FinalValue += e.CashAmount
		b.state.Units[i] = 0
	}

	out.Ledger = b.ledger
	return out, nil
}

func (b *builder) loadPrices(day time.Time) error {
	for i, s := range b.prices {
		p, ok := s.PriceOn(day)
		if !ok {
			return fmt.Errorf("%w: instrument %d on %s", model.ErrMissingPrice, i, day.Format("2006-01-02"))
		}
		b.px[i] = p
	}
	return nil
}

// contributionDay runs one contribution date and returns the external cash
// that entered the portfolio (negative).
func (b *builder) contributionDay(day, first time.Time) float64 {
	target := b.glide.At(day)

	adjusted := false
	if b.glide.Due(day) {
		b.transfer(day, target, model.NewAdjustment, adjustmentMateriality)
		adjusted = true
	}

	amount := b.cfg.ContributionAmount
	if b.cfg.StepUpEnabled {
		amount = strategy.StepUpAmount(amount, b.cfg.StepUpAnnualPercent, strategy.InvestmentYear(first, day))
	}

	touched := make([]bool, len(b.px))
	from := len(b.ledger)
	cash := 0.0
	// A 0% leg still gets a zero-amount entry: every instrument carries one
	// contribute entry per contribution date.
	for i, pct := range target {
		a := amount * pct / 100
		b.state.Units[i] += a / b.px[i]
		b.state.ContributedUnits[i] += a / b.px[i]
		b.ledger = append(b.ledger, model.NewContribution(i, day, b.px[i], a, b.state.Units[i]))
		touched[i] = true
		cash -= a
	}

	total, vals := b.state.Value(b.px)
	if total > 0 {
		for j := from; j < len(b.ledger); j++ {
			if b.ledger[j].Kind != model.KindContribute {
				continue
			}
			alloc := vals[b.ledger[j].Instrument] / total * 100
			b.ledger[j].AllocationPercent = &alloc
		}
	}

	if b.cfg.RebalanceEnabled && !adjusted && b.drifted(target) {
		b.transfer(day, target, model.NewRebalance, 0)
		return cash
	}

	if b.marks {
		b.markAll(day, touched)
	}
	return cash
}

// drifted reports whether any instrument's share is further from its target
// than the rebalance threshold.
func (b *builder) drifted(target []float64) bool {
	total, vals := b.state.Value(b.px)
	if total <= 0 {
		return false
	}
	for i, v := range vals {
		if math.Abs(v/total*100-target[i]) > b.cfg.RebalanceThresholdPercent+driftEpsilon {
			return true
		}
	}
	return false
}

type transferFunc func(inst int, on time.Time, price, delta, unitsAfter, allocation float64) model.LedgerEntry

// transfer moves value between instruments until each sits at target. The
// legs net to zero cash. Legs smaller than minLeg are skipped.
func (b *builder) transfer(day time.Time, target []float64, entry transferFunc, minLeg float64) {
	total, vals := b.state.Value(b.px)
	if total <= 0 {
		return
	}
	for i := range vals {
		delta := total*target[i]/100 - vals[i]
		if minLeg > 0 && math.Abs(delta) < minLeg {
			continue
		}
		b.state.Units[i] += delta / b.px[i]
		alloc := b.state.Units[i] * b.px[i] / total * 100
		b.ledger = append(b.ledger, entry(i, day, b.px[i], delta, b.state.Units[i], alloc))
	}
}

// markAll records a valuation-only entry for every instrument not in skip.
func (b *builder) markAll(day time.Time, skip []bool) {
	total, vals := b.state.Value(b.px)
	for i := range b.px {
		if skip != nil && skip[i] {
			continue
		}
		var alloc *float64
		if total > 0 {
			a := vals[i] / total * 100
			alloc = &a
		}
		b.ledger = append(b.ledger, model.NewMark(i, day, b.px[i], b.state.Units[i], alloc))
	}
}
