package cli

import (
	"fmt"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/analysis"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/store"

	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored runs",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath(), "SQLite database (env PORTFOLIO_DB)")

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "id\tcreated\texec\tportfolios\tlabel")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Exec, len(r.Portfolios), r.Label)
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to list")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the per-portfolio summary of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			rec, err := s.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s  created %s  exec %s  %s\n",
				rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Exec, rec.Label)

			names := make([]string, len(rec.Portfolios))
			summaries := make([]analysis.Summary, len(rec.Portfolios))
			metrics := make([]model.Metrics, len(rec.Portfolios))
			for i, p := range rec.Portfolios {
				windows, err := s.ListWindows(ctx, rec.ID, p.Name, false)
				if err != nil {
					return err
				}
				names[i], summaries[i], metrics[i] = p.Name, analysis.Summarize(windows), p.Metrics
			}
			printSummaries(cmd.OutOrStdout(), names, summaries, metrics)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.DeleteRun(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, show, del)
	return cmd
}
