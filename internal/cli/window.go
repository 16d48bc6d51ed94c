package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/backtest"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/data"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/returns"

	"github.com/spf13/cobra"
)

func newWindowCmd() *cobra.Command {
	var (
		cfgPath   string
		portfolio string
		date      string
		outPath   string
	)
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Recompute one window in detail and write its ledger",
		Long: `Simulates the single window ending on --date with daily mark entries and
writes the full ledger as CSV.

Example:
  portfolio-sim window -c cfg.yaml -p equity -d 2024-01-01 -o ledger.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			anchor, err := data.ParseDate(date)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			cfg, jobs, err := loadJobs(ctx, cfgPath)
			if err != nil {
				return err
			}
			if portfolio == "" {
				portfolio = cfg.Portfolios[0].Name
			}
			idx := -1
			for i, j := range jobs {
				if j.Name == portfolio {
					idx = i
				}
			}
			if idx < 0 {
				return fmt.Errorf("portfolio %q not in %s", portfolio, cfgPath)
			}

			win, err := newSimulator().SimulateOne(ctx, jobs[idx].Inputs, anchor)
			if err != nil {
				return err
			}
			if win == nil {
				return fmt.Errorf("no window ends on %s: it starts before the common price history, misses a price or has no solvable return", fmtDate(anchor))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "portfolio %s  window %s .. %s\n", portfolio, fmtDate(win.Start), fmtDate(win.Anchor))
			fmt.Fprintf(out, "invested %.2f  final %.2f  xirr %.2f%%", win.Invested, win.FinalValue, win.XIRR*100)
			if win.VolatilityPercent != nil {
				fmt.Fprintf(out, "  volatility %.2f%%", *win.VolatilityPercent)
			}
			fmt.Fprintf(out, "\nledger entries %d, valuation days %d\n", len(win.Ledger), len(returns.ValuationsFromLedger(win.Ledger)))

			if outPath != "" {
				if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
					return err
				}
				if err := backtest.WriteLedgerCSV(outPath, win.Ledger); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %d rows to %s\n", len(win.Ledger), outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config (required)")
	cmd.Flags().StringVarP(&portfolio, "portfolio", "p", "", "portfolio name (default: the first)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "anchor (end) date, YYYY-MM-DD (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the ledger CSV here")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
