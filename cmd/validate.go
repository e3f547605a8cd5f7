package cmd

import (
	"fmt"

	"ipc-charts/internal/logging"
	"ipc-charts/internal/plot"

	"github.com/spf13/cobra"
)

func newValidateCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a report configuration",
		Long:  "Parse the report and compile the axis grid and chart templates of every family without reading any data",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger()

			cfg, _, err := root.loadReport()
			if err != nil {
				logger.WithField("config_file", root.configFile).WithError(err).Error("Configuration validation failed")
				return err
			}

			pm, err := plot.NewPlotManager(cfg, plot.Options{})
			if err != nil {
				return err
			}
			for _, f := range cfg.GetFamiliesSorted() {
				if _, err := pm.Grid(f); err != nil {
					return fmt.Errorf("family %s: %w", f.KeyName, err)
				}
				if _, err := pm.Spec(f); err != nil {
					return fmt.Errorf("family %s: %w", f.KeyName, err)
				}
			}

			logger.WithField("config_file", root.configFile).WithField("families", len(cfg.Families)).Info("Configuration is valid")
			return nil
		},
	}
}
