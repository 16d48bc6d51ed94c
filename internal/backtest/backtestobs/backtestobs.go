// Package backtestobs decorates a Simulator with spans and structured logs.
package backtestobs

import (
	"context"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/backtest"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/logger"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
)

type observableSimulator struct {
	sim backtest.Simulator
}

var _ backtest.Simulator = (*observableSimulator)(nil)

func Wrap(sim backtest.Simulator) backtest.Simulator {
	return &observableSimulator{sim: sim}
}

func (o *observableSimulator) Simulate(ctx context.Context, in model.Inputs, exec model.ExecMode) (*backtest.Run, error) {
	op := logger.StartOperation(ctx, "backtest.Simulate",
		"mode", string(in.Config.EffectiveMode()),
		"exec", string(exec),
		"instruments", len(in.Instruments),
		"window_years", in.Config.WindowYears,
	)

	run, err := o.sim.Simulate(op.Context(), in, exec)
	if err != nil {
		op.EndWithError(err)
		return nil, err
	}

	op.End(
		"anchors", run.Metrics.Anchors,
		"computed", run.Metrics.Computed,
		"skipped_not_computable", run.Metrics.Skipped[model.SkipNotComputable],
		"skipped_missing_price", run.Metrics.Skipped[model.SkipMissingPrice],
		"skipped_solver", run.Metrics.Skipped[model.SkipSolver],
		"build", run.Metrics.BuildTime,
		"solve", run.Metrics.SolveTime,
		"volatility", run.Metrics.VolatilityTime,
	)
	logger.Info(op.Context(), "simulation completed",
		"mode", string(run.Mode),
		"computed", run.Metrics.Computed,
		"anchors", run.Metrics.Anchors,
		"wall_ms", run.Metrics.WallTime.Milliseconds(),
	)
	return run, nil
}

func (o *observableSimulator) SimulateOne(ctx context.Context, in model.Inputs, anchor time.Time) (*model.WindowResult, error) {
	op := logger.StartOperation(ctx, "backtest.SimulateOne",
		"anchor", anchor.Format("2006-01-02"),
		"instruments", len(in.Instruments),
	)

	res, err := o.sim.SimulateOne(op.Context(), in, anchor)
	if err != nil {
		op.EndWithError(err)
		return nil, err
	}
	if res == nil {
		op.End("computable", false)
		return nil, nil
	}
	op.End("computable", true, "entries", len(res.Ledger), "xirr", res.XIRR)
	return res, nil
}
