package cmd

import (
	"context"
	"fmt"

	"ipc-charts/internal/config"
	"ipc-charts/internal/database"
	"ipc-charts/internal/logging"
	"ipc-charts/internal/plot"

	"github.com/spf13/cobra"
)

func newImportCommand(root *rootOptions) *cobra.Command {
	var families []string
	var sqlitePath, spoolPath, measurement string
	var toInflux bool

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Copy inline report data into a sample store",
		Long:  "Write the inline datasets of a report into SQLite, a spool file or InfluxDB so later reports can read them from the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			targets := 0
			for _, set := range []bool{sqlitePath != "", spoolPath != "", toInflux} {
				if set {
					targets++
				}
			}
			if targets != 1 {
				return fmt.Errorf("exactly one of --sqlite, --spool or --influxdb is required")
			}

			cfg, _, err := root.loadReport()
			if err != nil {
				return err
			}
			root.applyReportLogLevel(cfg)

			var store database.SampleStore
			switch {
			case toInflux:
				store, err = database.NewInfluxDBStore(root.env.InfluxDB, measurement, logging.GetLogger())
			case spoolPath != "":
				store, err = database.OpenSpool(spoolPath)
			default:
				store, err = database.OpenSQLite(sqlitePath)
			}
			if err != nil {
				return err
			}
			defer store.Close()

			pm, err := plot.NewPlotManager(cfg, plot.Options{InfluxDB: root.env.InfluxDB})
			if err != nil {
				return err
			}
			n, err := pm.Import(context.Background(), store, families)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d samples\n", n)
			return nil
		},
	}

	importCmd.Flags().StringSliceVarP(&families, "family", "f", nil, "Chart families to import (default: all inline families)")
	importCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Path of the SQLite database to write")
	importCmd.Flags().StringVar(&spoolPath, "spool", "", "Path of the gzip JSON spool file to write")
	importCmd.Flags().BoolVar(&toInflux, "influxdb", false, "Write to InfluxDB (INFLUXDB_* environment variables)")
	importCmd.Flags().StringVar(&measurement, "measurement", config.DefaultMeasurement, "InfluxDB measurement name")

	return importCmd
}
