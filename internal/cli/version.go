package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/strategy"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "portfolio-sim %s (%s)\n", Version, runtime.Version())
		},
	}
}

func newModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List investment modes and their parameters",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			for _, m := range strategy.Catalog() {
				fmt.Fprintf(out, "%s: %s\n", m.Name, m.Description)
				for _, p := range m.Parameters {
					def := ""
					if p.Default != nil {
						def = fmt.Sprintf(" (default %v)", p.Default)
					}
					fmt.Fprintf(out, "  %-20s %-6s %s%s\n", p.Name, p.Type, strings.TrimSpace(p.Description), def)
				}
			}
		},
	}
}
