package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newListCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the chart families of a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.loadReport()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range cfg.GetFamiliesSorted() {
				held := cfg.Dimensions[f.Held]
				fmt.Fprintf(out, "%s\tmetric=%s\tx=%s\tcharts=%d (per %s)\tstrategies=%s\tsource=%s\n",
					f.KeyName, f.Metric, f.Varying, len(held.Values), f.Held,
					strings.Join(cfg.StrategyIDs(f), ","), f.Source.Type)
			}
			return nil
		},
	}
}
