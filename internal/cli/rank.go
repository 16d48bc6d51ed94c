package cli

import (
	"fmt"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/analysis"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/runner"

	"github.com/spf13/cobra"
)

func newRankCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank portfolios by median rolling XIRR",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, jobs, err := loadJobs(ctx, cfgPath)
			if err != nil {
				return err
			}

			byName := map[string][]model.WindowResult{}
			for _, res := range runner.New(newSimulator()).Run(ctx, jobs, model.ExecFast) {
				if res.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "portfolio %s failed: %v\n", res.Name, res.Err)
					continue
				}
				byName[res.Name] = res.Run.Results
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "rank\tportfolio\twindows\tmedian%\tp05%\tp95%\tneg%\tvol%")
			for _, r := range analysis.RankPortfolios(byName) {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%.2f\t%.2f\t%.1f\t%.2f\n",
					r.Rank, r.Name, r.Count, r.MedianXIRR, r.P05XIRR, r.P95XIRR,
					r.NegativeShare*100, r.MeanVolatility)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config (required)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
