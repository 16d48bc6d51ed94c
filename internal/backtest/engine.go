package backtest

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/logger"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/returns"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/series"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/strategy"
)

// Simulator computes rolling-window results for one portfolio.
type Simulator interface {
	Simulate(ctx context.Context, in model.Inputs, exec model.ExecMode) (*Run, error)
	SimulateOne(ctx context.Context, in model.Inputs, anchor time.Time) (*model.WindowResult, error)
}

var _ Simulator = (*Engine)(nil)

// Engine runs every anchor date through a bounded worker pool. Anchors are
// independent, so workers share only read-only inputs.
type Engine struct {
	// Workers bounds concurrent window computations; <= 0 means GOMAXPROCS.
	Workers int
}

func New() *Engine { return &Engine{} }

// prepared is the validated, normalized form of one portfolio's inputs.
type prepared struct {
	cfg       model.SimulationConfig
	prices    []series.Series
	strat     strategy.Strategy
	firstDate time.Time
}

func prepare(in model.Inputs) (*prepared, error) {
	cfg := in.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(in.Instruments) == 0 {
		return nil, fmt.Errorf("no instruments")
	}
	if len(in.Instruments) != len(cfg.StartAllocationPercent) {
		return nil, fmt.Errorf("start_allocation lists %d instruments, inputs have %d",
			len(cfg.StartAllocationPercent), len(in.Instruments))
	}

	prices, err := series.NormalizeAll(in.Instruments)
	if err != nil {
		return nil, err
	}
	strat, err := strategy.ForConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &prepared{
		cfg:       cfg,
		prices:    prices,
		strat:     strat,
		firstDate: series.CommonStart(prices),
	}, nil
}

// Simulate computes a WindowResult for every date of the base (first)
// instrument's normalized series. Anchors whose window cannot be computed
// are skipped and counted in Metrics; only bad configuration and
// insufficient price data fail the whole call.
func (e *Engine) Simulate(ctx context.Context, in model.Inputs, exec model.ExecMode) (*Run, error) {
	startWall := time.Now()

	p, err := prepare(in)
	if err != nil {
		return nil, err
	}

	anchors := p.prices[0].Dates()
	slots := make([]*model.WindowResult, len(anchors))
	recordMarks := exec == model.ExecDetailed

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(anchors) {
		workers = len(anchors)
	}

	jobs := make(chan int)
	perWorker := make([]model.Metrics, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(m *model.Metrics) {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					continue
				}
				res, reason, err := p.window(anchors[idx], recordMarks, m)
				if err != nil {
					m.Skipped[reason]++
					logger.WindowSkipped(ctx, anchors[idx], string(reason), err)
					continue
				}
				slots[idx] = res
			}
		}(initMetrics(&perWorker[w]))
	}

feed:
	for idx := range anchors {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("simulation cancelled: %w", err)
	}

	run := &Run{
		Mode:      p.cfg.EffectiveMode(),
		Exec:      exec,
		FirstDate: p.firstDate,
		LastDate:  p.prices[0].Last(),
		Results:   make([]model.WindowResult, 0, len(anchors)),
	}
	run.Metrics.Skipped = map[model.SkipReason]int{}
	for _, m := range perWorker {
		run.Metrics.Merge(m)
	}
	for _, res := range slots {
		if res != nil {
			run.Results = append(run.Results, *res)
		}
	}
	run.Metrics.Anchors = len(anchors)
	run.Metrics.Computed = len(run.Results)
	run.Metrics.WallTime = time.Since(startWall)
	return run, nil
}

func initMetrics(m *model.Metrics) *model.Metrics {
	m.Skipped = map[model.SkipReason]int{}
	return m
}

// SimulateOne computes a single window in detailed mode, mark entries
// included, for drill-down. Like Simulate it drops a window it cannot
// compute (history before the first common price date, a missing price, or
// a return that does not solve): the skip is logged and it returns nil, nil.
// Only invalid inputs and cancellation are errors.
func (e *Engine) SimulateOne(ctx context.Context, in model.Inputs, anchor time.Time) (*model.WindowResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := prepare(in)
	if err != nil {
		return nil, err
	}

	var m model.Metrics
	res, reason, err := p.window(model.Day(anchor), true, &m)
	if err != nil {
		logger.WindowSkipped(ctx, model.Day(anchor), string(reason), err)
		return nil, nil
	}
	return res, nil
}

// window runs the full per-anchor pipeline: schedule, ledger, return and
// volatility. On failure it reports which skip bucket the anchor belongs to.
func (p *prepared) window(anchor time.Time, recordMarks bool, m *model.Metrics) (*model.WindowResult, model.SkipReason, error) {
	w, ok := p.strat.Window(anchor, p.firstDate)
	if !ok {
		return nil, model.SkipNotComputable, model.ErrWindowNotComputable
	}

	t0 := time.Now()
	built, err := buildWindow(p.prices, p.cfg, w, recordMarks)
	m.BuildTime += time.Since(t0)
	if err != nil {
		return nil, model.SkipMissingPrice, err
	}

	t0 = time.Now()
	rate, err := returns.XIRR(returns.Aggregate(built.Ledger))
	m.SolveTime += time.Since(t0)
	if err != nil {
		return nil, model.SkipSolver, &returns.SolverError{Anchor: anchor, Err: err}
	}

	t0 = time.Now()
	vol := returns.Volatility(built.Valuations, p.cfg.EffectiveMode() == model.ModeSIP)
	m.VolatilityTime += time.Since(t0)

	return &model.WindowResult{
		Anchor:            w.Anchor,
		Start:             w.Start,
		XIRR:              rate,
		VolatilityPercent: &vol,
		Invested:          built.Invested,
		FinalValue:        built.FinalValue,
		Ledger:            built.Ledger,
	}, "", nil
}
