// Package cli implements the portfolio-sim command line.
package cli

import (
	"context"
	"os"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/backtest"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/backtest/backtestobs"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/config"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/data"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/runner"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "portfolio-sim",
		Short: "Rolling-window SIP and lumpsum portfolio simulator",
		Long: `Simulate SIP or lumpsum investing over every rolling window of a price
history and report the spread of returns (XIRR) and volatility.

Example:
  portfolio-sim simulate --config examples/nifty_vs_debt.yaml
  portfolio-sim window --config examples/nifty_vs_debt.yaml --portfolio equity --date 2024-01-01`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newSimulateCmd(),
		newWindowCmd(),
		newRankCmd(),
		newRunsCmd(),
		newModesCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI with ctx, typically cancelled on SIGINT.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func defaultDBPath() string {
	if p := os.Getenv("PORTFOLIO_DB"); p != "" {
		return p
	}
	return "./data/runs.sqlite"
}

func newSimulator() backtest.Simulator {
	return backtestobs.Wrap(backtest.New())
}

// loadJobs loads the config at path and resolves every portfolio in it.
func loadJobs(ctx context.Context, path string) (*config.Config, []runner.Job, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	resolver := data.NewResolver(cfg.Data.MFAPIBaseURL)
	jobs := make([]runner.Job, 0, len(cfg.Portfolios))
	for _, p := range cfg.Portfolios {
		in, err := resolver.Inputs(ctx, cfg, p)
		if err != nil {
			return nil, nil, err
		}
		jobs = append(jobs, runner.Job{Name: p.Name, Inputs: in})
	}
	return cfg, jobs, nil
}
