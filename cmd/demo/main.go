package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/analysis"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/backtest"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/data"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
)

// Demo:
// - Generate two synthetic instruments: a fixed-return "equity" and an inflation index
// - Run a 60/40 SIP with rebalancing over every rolling window
// - Print the first few windows and the return distribution
func main() {
	years := flag.Int("years", 3, "Rolling window length in years")
	equity := flag.Float64("equity", 12, "Annual return of the synthetic equity instrument, in percent")
	inflation := flag.Float64("inflation", 6, "Yearly inflation rate, in percent")
	amount := flag.Float64("amount", 10000, "Monthly contribution")
	exec := flag.String("exec", "fast", "Execution mode: fast or detailed")
	outCSV := flag.String("out", "", "Optional path to write the results CSV (e.g. results/demo.csv)")
	flag.Parse()

	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	eq, err := data.FixedReturnSeries(start, end, *equity)
	if err != nil {
		panic(err)
	}
	rates := map[int]float64{}
	for y := start.Year(); y <= end.Year(); y++ {
		rates[y] = *inflation
	}
	infl, err := data.InflationSeries(start, end, rates)
	if err != nil {
		panic(err)
	}

	in := model.Inputs{
		Instruments: []model.Instrument{
			{Name: "equity", Prices: eq},
			{Name: "inflation", Prices: infl},
		},
		Config: model.SimulationConfig{
			Mode:                      model.ModeSIP,
			WindowYears:               *years,
			StartAllocationPercent:    []float64{60, 40},
			RebalanceEnabled:          true,
			RebalanceThresholdPercent: 5,
			ContributionAmount:        *amount,
		},
	}
	if err := in.Config.Validate(); err != nil {
		panic(err)
	}

	run, err := backtest.New().Simulate(context.Background(), in, model.ParseExecMode(*exec))
	if err != nil {
		panic(err)
	}

	fmt.Printf("Simulated %d windows (%s, %s) from %s to %s\n",
		len(run.Results), run.Mode, run.Exec,
		run.FirstDate.Format("2006-01-02"), run.LastDate.Format("2006-01-02"))
	fmt.Printf("Skipped=%v  wall=%s\n\n", run.Metrics.Skipped, run.Metrics.WallTime)

	for i := 0; i < min(8, len(run.Results)); i++ {
		r := run.Results[i]
		vol := "-"
		if r.VolatilityPercent != nil {
			vol = fmt.Sprintf("%.2f%%", *r.VolatilityPercent)
		}
		fmt.Printf("%s..%s  invested=%10.2f  final=%10.2f  xirr=%6.2f%%  vol=%s  entries=%d\n",
			r.Start.Format("2006-01-02"), r.Anchor.Format("2006-01-02"),
			r.Invested, r.FinalValue, r.XIRR*100, vol, len(r.Ledger))
	}

	s := analysis.Summarize(run.Results)
	fmt.Printf("\nxirr min=%.2f%%  p25=%.2f%%  median=%.2f%%  p75=%.2f%%  max=%.2f%%\n",
		s.MinXIRR, s.P25XIRR, s.MedianXIRR, s.P75XIRR, s.MaxXIRR)

	if *outCSV != "" {
		if err := backtest.WriteResultsCSV(*outCSV, run.Results); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}
}
