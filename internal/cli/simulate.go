package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/analysis"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/backtest"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/config"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/runner"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/store"

	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	var (
		cfgPath string
		exec    string
		outPath string
		dbPath  string
		label   string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate every rolling window of each configured portfolio",
		Long: `Runs the rolling simulation for each portfolio in the config and prints the
distribution of window returns. --out writes per-window results as CSV (one
file per portfolio when there are several); --db stores the run in SQLite.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			mode := model.ParseExecMode(exec)

			cfg, jobs, err := loadJobs(ctx, cfgPath)
			if err != nil {
				return err
			}
			results := runner.New(newSimulator()).Run(ctx, jobs, mode)

			var names []string
			var summaries []analysis.Summary
			var metrics []model.Metrics
			var failed error
			for _, res := range results {
				if res.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "portfolio %s failed: %v\n", res.Name, res.Err)
					failed = errors.Join(failed, fmt.Errorf("portfolio %s: %w", res.Name, res.Err))
					continue
				}
				names = append(names, res.Name)
				summaries = append(summaries, analysis.Summarize(res.Run.Results))
				metrics = append(metrics, res.Run.Metrics)
			}
			printSummaries(cmd.OutOrStdout(), names, summaries, metrics)

			if outPath != "" {
				if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
					return err
				}
				for _, res := range results {
					if res.Err != nil {
						continue
					}
					p := outputPath(outPath, res.Name, len(results) > 1)
					if err := backtest.WriteResultsCSV(p, res.Run.Results); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d windows to %s\n", len(res.Run.Results), p)
				}
			}

			if dbPath != "" {
				id, err := saveRun(cmd, dbPath, label, mode, cfg, jobs, results)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved run %s to %s\n", id, dbPath)
			}
			return failed
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to YAML, TOML or JSON config (required)")
	cmd.Flags().StringVarP(&exec, "exec", "e", string(model.ExecFast), "execution mode: fast or detailed")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write per-window results CSV here")
	cmd.Flags().StringVar(&dbPath, "db", "", "store the run in this SQLite database")
	cmd.Flags().StringVar(&label, "label", "", "label for the stored run")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

// saveRun stores the loaded config as the run request, so the API can
// recompute windows of CLI runs too.
func saveRun(cmd *cobra.Command, dbPath, label string, mode model.ExecMode, cfg *config.Config, jobs []runner.Job, results []runner.Result) (string, error) {
	s, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer s.Close()

	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	rec := &store.RunRecord{Label: label, Exec: mode, Request: raw}
	byName := map[string][]model.WindowResult{}
	for i, res := range results {
		if res.Err != nil {
			continue
		}
		rec.Portfolios = append(rec.Portfolios, store.PortfolioRecord{
			Name:    res.Name,
			Config:  jobs[i].Inputs.Config,
			Metrics: res.Run.Metrics,
		})
		byName[res.Name] = res.Run.Results
	}
	if err := s.SaveRun(cmd.Context(), rec, byName); err != nil {
		return "", err
	}
	return rec.ID, nil
}
